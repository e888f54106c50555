package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/cardkeeper-server/internal/logger"
	"github.com/dtroode/cardkeeper-server/internal/model"
	"github.com/dtroode/cardkeeper-server/internal/validate"
)

// UserResolver resolves the caller of a request to a signed-in user.
type UserResolver interface {
	CurrentUser(ctx context.Context) (model.User, bool, error)
}

// Identity owns accounts, credentials and sessions.
type Identity struct {
	users       model.UserStore
	credentials model.CredentialStore
	sessions    model.SessionStore
	tokens      model.TokenManager
	hasher      model.PasswordHasher
	ctxManager  model.ContextManager
	tx          model.Transactor
	adminEmail  string
	droppers    []model.PartitionDropper
	now         func() time.Time
	logger      *logger.Logger
}

func NewIdentity(
	users model.UserStore,
	credentials model.CredentialStore,
	sessions model.SessionStore,
	tokens model.TokenManager,
	hasher model.PasswordHasher,
	ctxManager model.ContextManager,
	tx model.Transactor,
	adminEmail string,
	logger *logger.Logger,
) *Identity {
	return &Identity{
		users:       users,
		credentials: credentials,
		sessions:    sessions,
		tokens:      tokens,
		hasher:      hasher,
		ctxManager:  ctxManager,
		tx:          tx,
		adminEmail:  strings.TrimSpace(adminEmail),
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger,
	}
}

// RegisterPartition adds a component whose per-user data is dropped with the account.
func (s *Identity) RegisterPartition(dropper model.PartitionDropper) {
	s.droppers = append(s.droppers, dropper)
}

// Register creates an account and signs it in.
func (s *Identity) Register(ctx context.Context, params model.RegisterParams) (model.User, model.Session, error) {
	email := strings.TrimSpace(params.Email)
	username := strings.TrimSpace(params.Username)
	plan := params.Plan
	if plan == "" {
		plan = model.PlanFree
	}

	s.logger.Debug("Identity service: starting registration", "email", email, "username", username)

	err := validate.New().
		Email("email", email).
		Username("username", username).
		Password("password", params.Password).
		Custom("plan", !plan.Valid(), "must be free or premium").
		Err()
	if err != nil {
		s.logger.Info("Identity service: registration rejected", "email", email, "error", err.Error())
		return model.User{}, model.Session{}, err
	}

	user, err := s.createAccount(ctx, email, username, params.Password, plan, false)
	if err != nil {
		return model.User{}, model.Session{}, err
	}

	session, err := s.openSession(ctx, user.ID)
	if err != nil {
		return model.User{}, model.Session{}, err
	}

	s.logger.Info("Identity service: user registered", "user_id", user.ID, "administrator", user.Administrator)

	return user, session, nil
}

// Login verifies the password and opens a session.
func (s *Identity) Login(ctx context.Context, email, password string) (model.User, model.Session, error) {
	email = strings.TrimSpace(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			s.logger.Info("Identity service: login for unknown email", "email", email)
			return model.User{}, model.Session{}, model.NewNotFoundError("user", email)
		}
		return model.User{}, model.Session{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	credential, err := s.credentials.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			s.logger.Warn("Identity service: user has no credential", "user_id", user.ID)
			return model.User{}, model.Session{}, model.NewAuthError("invalid email or password")
		}
		return model.User{}, model.Session{}, fmt.Errorf("failed to get credential: %w", err)
	}

	if !s.hasher.Verify(password, credential) {
		s.logger.Info("Identity service: wrong password", "user_id", user.ID)
		return model.User{}, model.Session{}, model.NewAuthError("invalid email or password")
	}

	session, err := s.openSession(ctx, user.ID)
	if err != nil {
		return model.User{}, model.Session{}, err
	}

	s.logger.Info("Identity service: user logged in", "user_id", user.ID)
	user.Administrator = s.isAdmin(user)

	return user, session, nil
}

// Logout closes the caller's session. It never fails for a missing or stale session.
func (s *Identity) Logout(ctx context.Context) error {
	token, ok := s.ctxManager.GetSessionTokenFromContext(ctx)
	if !ok {
		return nil
	}

	sessionID, _, err := s.tokens.ParseSessionToken(token)
	if err != nil {
		return nil
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.logger.Debug("Identity service: session closed", "session_id", sessionID)
	return nil
}

// CurrentUser resolves the caller's session. It reports false when there is no
// valid session or the session's user no longer exists.
func (s *Identity) CurrentUser(ctx context.Context) (model.User, bool, error) {
	session, ok, err := s.currentSession(ctx)
	if err != nil || !ok {
		return model.User{}, false, err
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, false, nil
		}
		return model.User{}, false, fmt.Errorf("failed to get user: %w", err)
	}
	user.Administrator = s.isAdmin(user)

	return user, true, nil
}

// IsAdministrator reports whether the caller is signed in as an administrator.
func (s *Identity) IsAdministrator(ctx context.Context) (bool, error) {
	user, ok, err := s.CurrentUser(ctx)
	if err != nil || !ok {
		return false, err
	}
	return s.isAdmin(user), nil
}

// UpdateProfile applies a partial profile change to the caller's account.
func (s *Identity) UpdateProfile(ctx context.Context, update model.ProfileUpdate) (model.User, error) {
	user, err := s.requireUser(ctx)
	if err != nil {
		return model.User{}, err
	}

	v := validate.New()
	email, username := user.Email, user.Username
	if update.Email != nil {
		email = strings.TrimSpace(*update.Email)
		v.Email("email", email)
	}
	if update.Username != nil {
		username = strings.TrimSpace(*update.Username)
		v.Username("username", username)
	}
	if update.Password != nil {
		v.Password("password", *update.Password)
	}
	if err := v.Err(); err != nil {
		return model.User{}, err
	}

	if err := s.ensureUnique(ctx, email, username, user.ID); err != nil {
		return model.User{}, err
	}

	if !strings.EqualFold(email, user.Email) {
		user.EmailConfirmed = false
		user.ConfirmationToken = uuid.NewString()
		user.Administrator = s.isAdminEmail(email)
	}
	user.Email = email
	user.Username = username
	user.UpdatedAt = s.now()

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		updated, err := s.users.Update(ctx, user)
		if err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		user = updated

		if update.Password != nil {
			return s.storeCredential(ctx, user.ID, *update.Password)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Identity service: failed to update profile", "user_id", user.ID, "error", err.Error())
		return model.User{}, err
	}

	s.logger.Info("Identity service: profile updated", "user_id", user.ID)
	return user, nil
}

// DeleteAccount removes the caller's account, credential and every partition, then logs out.
func (s *Identity) DeleteAccount(ctx context.Context) error {
	user, err := s.requireUser(ctx)
	if err != nil {
		return err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, dropper := range s.droppers {
			if err := dropper.DropPartition(ctx, user.ID); err != nil {
				return fmt.Errorf("failed to drop partition: %w", err)
			}
		}
		if err := s.credentials.Delete(ctx, user.ID); err != nil {
			return fmt.Errorf("failed to delete credential: %w", err)
		}
		if err := s.users.Delete(ctx, user.ID); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Identity service: failed to delete account", "user_id", user.ID, "error", err.Error())
		return err
	}

	s.logger.Info("Identity service: account deleted", "user_id", user.ID)

	return s.Logout(ctx)
}

// CreatePrivilegedAccount lets an administrator create a premium account
// with a confirmed email. No session is opened.
func (s *Identity) CreatePrivilegedAccount(ctx context.Context, params model.RegisterParams) (model.User, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return model.User{}, err
	}

	email := strings.TrimSpace(params.Email)
	username := strings.TrimSpace(params.Username)

	err := validate.New().
		Email("email", email).
		Username("username", username).
		Password("password", params.Password).
		Err()
	if err != nil {
		return model.User{}, err
	}

	user, err := s.createAccount(ctx, email, username, params.Password, model.PlanPremium, true)
	if err != nil {
		return model.User{}, err
	}

	s.logger.Info("Identity service: privileged account created", "user_id", user.ID)
	return user, nil
}

// SetPlan lets an administrator change any user's plan.
func (s *Identity) SetPlan(ctx context.Context, userID uuid.UUID, plan model.Plan) (model.User, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return model.User{}, err
	}
	return s.GrantPlan(ctx, userID, plan)
}

// GrantPlan changes a user's plan without checking the caller. It is the
// mutation point for trusted collaborators such as payment confirmations.
func (s *Identity) GrantPlan(ctx context.Context, userID uuid.UUID, plan model.Plan) (model.User, error) {
	if !plan.Valid() {
		return model.User{}, model.NewValidationError("plan", "must be free or premium")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, model.NewNotFoundError("user", userID)
		}
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	user.Plan = plan
	user.UpdatedAt = s.now()

	user, err = s.users.Update(ctx, user)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("Identity service: plan changed", "user_id", userID, "plan", plan)
	return user, nil
}

// ConfirmEmail marks the email owning token as confirmed.
func (s *Identity) ConfirmEmail(ctx context.Context, token string) (model.User, error) {
	user, err := s.users.GetByConfirmationToken(ctx, strings.TrimSpace(token))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, model.NewNotFoundError("confirmation token", token)
		}
		return model.User{}, fmt.Errorf("failed to get user by confirmation token: %w", err)
	}

	user.EmailConfirmed = true
	user.ConfirmationToken = ""
	user.UpdatedAt = s.now()

	user, err = s.users.Update(ctx, user)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("Identity service: email confirmed", "user_id", user.ID)
	return user, nil
}

func (s *Identity) createAccount(ctx context.Context, email, username, password string, plan model.Plan, confirmed bool) (model.User, error) {
	if err := s.ensureUnique(ctx, email, username, uuid.Nil); err != nil {
		return model.User{}, err
	}

	now := s.now()
	user := model.User{
		ID:             uuid.New(),
		Email:          email,
		Username:       username,
		Plan:           plan,
		Administrator:  s.isAdminEmail(email),
		EmailConfirmed: confirmed,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if !confirmed {
		user.ConfirmationToken = uuid.NewString()
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		created, err := s.users.Create(ctx, user)
		if err != nil {
			if errors.Is(err, model.ErrConflict) {
				return err
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		user = created
		return s.storeCredential(ctx, user.ID, password)
	})
	if err != nil {
		s.logger.Error("Identity service: failed to create account", "email", email, "error", err.Error())
		return model.User{}, err
	}

	return user, nil
}

// ensureUnique fails with a conflict when email or username belong to an
// account other than self.
func (s *Identity) ensureUnique(ctx context.Context, email, username string, self uuid.UUID) error {
	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != self:
		return model.NewConflictError("email %s is already registered", email)
	case err != nil && !errors.Is(err, model.ErrNotFound):
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	existing, err = s.users.GetByUsername(ctx, username)
	switch {
	case err == nil && existing.ID != self:
		return model.NewConflictError("username %s is already taken", username)
	case err != nil && !errors.Is(err, model.ErrNotFound):
		return fmt.Errorf("failed to get user by username: %w", err)
	}

	return nil
}

func (s *Identity) storeCredential(ctx context.Context, userID uuid.UUID, password string) error {
	salt, err := s.hasher.NewSalt()
	if err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	credential := model.Credential{
		UserID: userID,
		Hash:   s.hasher.Hash(password, salt),
		Salt:   salt,
	}
	if err := s.credentials.Upsert(ctx, credential); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

func (s *Identity) openSession(ctx context.Context, userID uuid.UUID) (model.Session, error) {
	sessionID := uuid.New()

	token, err := s.tokens.GenerateSessionToken(sessionID, userID)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to generate session token: %w", err)
	}

	session := model.Session{
		ID:        sessionID,
		UserID:    userID,
		Token:     token,
		CreatedAt: s.now(),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return model.Session{}, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// currentSession reports false unless the context carries a token whose
// session is still open.
func (s *Identity) currentSession(ctx context.Context) (model.Session, bool, error) {
	token, ok := s.ctxManager.GetSessionTokenFromContext(ctx)
	if !ok {
		return model.Session{}, false, nil
	}

	sessionID, userID, err := s.tokens.ParseSessionToken(token)
	if err != nil {
		return model.Session{}, false, nil
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Session{}, false, nil
		}
		return model.Session{}, false, fmt.Errorf("failed to get session: %w", err)
	}

	if session.UserID != userID || session.Token != token {
		return model.Session{}, false, nil
	}

	return session, true, nil
}

func (s *Identity) requireUser(ctx context.Context) (model.User, error) {
	user, ok, err := s.CurrentUser(ctx)
	if err != nil {
		return model.User{}, err
	}
	if !ok {
		return model.User{}, model.ErrNoSession
	}
	return user, nil
}

func (s *Identity) requireAdmin(ctx context.Context) (model.User, error) {
	user, ok, err := s.CurrentUser(ctx)
	if err != nil {
		return model.User{}, err
	}
	if !ok || !s.isAdmin(user) {
		return model.User{}, model.NewAuthorizationError("administrator privileges required")
	}
	return user, nil
}

func (s *Identity) isAdmin(user model.User) bool {
	return user.Administrator || s.isAdminEmail(user.Email)
}

func (s *Identity) isAdminEmail(email string) bool {
	return s.adminEmail != "" && strings.EqualFold(strings.TrimSpace(email), s.adminEmail)
}
