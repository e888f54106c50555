package handler

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"

	"github.com/dtroode/cardkeeper-server/internal/logger"
	"github.com/dtroode/cardkeeper-server/internal/model"
)

// IdentityServiceName is the gRPC service name of account operations.
const IdentityServiceName = "cardkeeper.Identity"

// IdentityService defines account and session operations.
type IdentityService interface {
	Register(ctx context.Context, params model.RegisterParams) (model.User, model.Session, error)
	Login(ctx context.Context, email, password string) (model.User, model.Session, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (model.User, bool, error)
	IsAdministrator(ctx context.Context) (bool, error)
	UpdateProfile(ctx context.Context, update model.ProfileUpdate) (model.User, error)
	DeleteAccount(ctx context.Context) error
	CreatePrivilegedAccount(ctx context.Context, params model.RegisterParams) (model.User, error)
	SetPlan(ctx context.Context, userID uuid.UUID, plan model.Plan) (model.User, error)
	ConfirmEmail(ctx context.Context, token string) (model.User, error)
}

// Identity handles gRPC endpoints for accounts.
type Identity struct {
	identityService IdentityService
	logger          *logger.Logger
}

// NewIdentity creates a new Identity handler.
func NewIdentity(identityService IdentityService, logger *logger.Logger) *Identity {
	return &Identity{identityService: identityService, logger: logger}
}

// IdentityServiceDesc describes cardkeeper.Identity. Methods are bound to
// *Identity through typed closures, so any handler type is accepted.
var IdentityServiceDesc = grpc.ServiceDesc{
	ServiceName: IdentityServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(IdentityServiceName, "Register", (*Identity).Register),
		unaryMethod(IdentityServiceName, "Login", (*Identity).Login),
		unaryMethod(IdentityServiceName, "Logout", (*Identity).Logout),
		unaryMethod(IdentityServiceName, "CurrentUser", (*Identity).CurrentUser),
		unaryMethod(IdentityServiceName, "IsAdministrator", (*Identity).IsAdministrator),
		unaryMethod(IdentityServiceName, "UpdateProfile", (*Identity).UpdateProfile),
		unaryMethod(IdentityServiceName, "DeleteAccount", (*Identity).DeleteAccount),
		unaryMethod(IdentityServiceName, "CreatePrivilegedAccount", (*Identity).CreatePrivilegedAccount),
		unaryMethod(IdentityServiceName, "SetPlan", (*Identity).SetPlan),
		unaryMethod(IdentityServiceName, "ConfirmEmail", (*Identity).ConfirmEmail),
	},
	Metadata: "cardkeeper/identity",
}

// Register creates an account on the free plan and returns its session.
func (h *Identity) Register(ctx context.Context, req *RegisterRequest) (*SessionResponse, error) {
	h.logger.Debug("Identity handler: processing register request", "email", req.Email)

	user, session, err := h.identityService.Register(ctx, model.RegisterParams{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Plan:     model.PlanFree,
	})
	if err != nil {
		h.logger.Info("Identity handler: register failed", "email", req.Email, "error", err.Error())
		return nil, handleError(err)
	}

	return &SessionResponse{
		User:              toUser(user),
		Token:             session.Token,
		ConfirmationToken: user.ConfirmationToken,
	}, nil
}

func (h *Identity) Login(ctx context.Context, req *LoginRequest) (*SessionResponse, error) {
	user, session, err := h.identityService.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.Info("Identity handler: login failed", "email", req.Email, "error", err.Error())
		return nil, handleError(err)
	}

	return &SessionResponse{User: toUser(user), Token: session.Token}, nil
}

func (h *Identity) Logout(ctx context.Context, _ *Empty) (*Empty, error) {
	if err := h.identityService.Logout(ctx); err != nil {
		h.logger.Error("Identity handler: logout failed", "error", err.Error())
		return nil, handleError(err)
	}
	return &Empty{}, nil
}

func (h *Identity) CurrentUser(ctx context.Context, _ *Empty) (*CurrentUserResponse, error) {
	user, ok, err := h.identityService.CurrentUser(ctx)
	if err != nil {
		h.logger.Error("Identity handler: current user failed", "error", err.Error())
		return nil, handleError(err)
	}
	if !ok {
		return &CurrentUserResponse{}, nil
	}

	u := toUser(user)
	return &CurrentUserResponse{User: &u, SignedIn: true}, nil
}

func (h *Identity) IsAdministrator(ctx context.Context, _ *Empty) (*IsAdministratorResponse, error) {
	admin, err := h.identityService.IsAdministrator(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	return &IsAdministratorResponse{Administrator: admin}, nil
}

func (h *Identity) UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*UserResponse, error) {
	user, err := h.identityService.UpdateProfile(ctx, model.ProfileUpdate{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return nil, handleError(err)
	}
	return &UserResponse{User: toUser(user)}, nil
}

func (h *Identity) DeleteAccount(ctx context.Context, _ *Empty) (*Empty, error) {
	if err := h.identityService.DeleteAccount(ctx); err != nil {
		h.logger.Error("Identity handler: delete account failed", "error", err.Error())
		return nil, handleError(err)
	}
	return &Empty{}, nil
}

func (h *Identity) CreatePrivilegedAccount(ctx context.Context, req *RegisterRequest) (*UserResponse, error) {
	user, err := h.identityService.CreatePrivilegedAccount(ctx, model.RegisterParams{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return nil, handleError(err)
	}
	return &UserResponse{User: toUser(user)}, nil
}

func (h *Identity) SetPlan(ctx context.Context, req *SetPlanRequest) (*UserResponse, error) {
	user, err := h.identityService.SetPlan(ctx, req.UserID, req.Plan)
	if err != nil {
		return nil, handleError(err)
	}
	return &UserResponse{User: toUser(user)}, nil
}

func (h *Identity) ConfirmEmail(ctx context.Context, req *ConfirmEmailRequest) (*UserResponse, error) {
	user, err := h.identityService.ConfirmEmail(ctx, req.Token)
	if err != nil {
		return nil, handleError(err)
	}
	return &UserResponse{User: toUser(user)}, nil
}
