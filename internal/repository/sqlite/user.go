package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/cardkeeper-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

const userColumns = `id, email, username, plan, administrator, email_confirmed, confirmation_token, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (` + userColumns + `, email_key, username_key)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.executor(ctx).ExecContext(ctx, query,
		user.ID, user.Email, user.Username, string(user.Plan), user.Administrator, user.EmailConfirmed,
		user.ConfirmationToken, formatTime(user.CreatedAt), formatTime(user.UpdatedAt),
		model.FoldKey(user.Email), model.FoldKey(user.Username),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, model.NewConflictError("email or username already registered")
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email_key = ?`, model.FoldKey(email))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username_key = ?`, model.FoldKey(username))
}

func (r *UserRepository) GetByConfirmationToken(ctx context.Context, token string) (model.User, error) {
	if token == "" {
		return model.User{}, model.ErrNotFound
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE confirmation_token = ?`, token)
}

func (r *UserRepository) Update(ctx context.Context, user model.User) (model.User, error) {
	query := `UPDATE users
			  SET email = ?, username = ?, email_key = ?, username_key = ?, plan = ?, administrator = ?,
			      email_confirmed = ?, confirmation_token = ?, updated_at = ?
			  WHERE id = ?`

	res, err := r.db.executor(ctx).ExecContext(ctx, query,
		user.Email, user.Username, model.FoldKey(user.Email), model.FoldKey(user.Username),
		string(user.Plan), user.Administrator, user.EmailConfirmed,
		user.ConfirmationToken, formatTime(user.UpdatedAt), user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, model.NewConflictError("email or username already registered")
		}
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.User{}, model.ErrNotFound
	}

	return user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.executor(ctx).ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (model.User, error) {
	var (
		user      model.User
		plan      string
		createdAt string
		updatedAt string
	)

	err := r.db.executor(ctx).QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.Username, &plan, &user.Administrator, &user.EmailConfirmed,
		&user.ConfirmationToken, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	user.Plan = model.Plan(plan)
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.User{}, err
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.User{}, err
	}

	return user, nil
}
