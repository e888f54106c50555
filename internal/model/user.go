package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	// GetByEmail and GetByUsername compare under FoldKey.
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByConfirmationToken(ctx context.Context, token string) (User, error)
	Update(ctx context.Context, user User) (User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Plan is a subscription tier.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// Valid reports whether p is a known plan.
func (p Plan) Valid() bool {
	return p == PlanFree || p == PlanPremium
}

// User represents a registered account.
type User struct {
	ID                uuid.UUID
	Email             string
	Username          string
	Plan              Plan
	Administrator     bool
	EmailConfirmed    bool
	ConfirmationToken string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// RegisterParams contains parameters to create an account.
type RegisterParams struct {
	Email    string
	Username string
	Password string
	Plan     Plan
}

// ProfileUpdate is a partial profile change. Nil fields are left untouched.
type ProfileUpdate struct {
	Email    *string
	Username *string
	Password *string
}

// Capabilities is the result of evaluating a plan against a collection.
type Capabilities struct {
	CanAddItem  bool
	CanAddPhoto bool
	Reason      string
}
