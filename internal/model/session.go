package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionStore holds active sessions.
type SessionStore interface {
	// Save opens the session, replacing whatever session it displaces.
	Save(ctx context.Context, session Session) error
	Get(ctx context.Context, id uuid.UUID) (Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Session binds a signed token to a user.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	CreatedAt time.Time
}

// TokenManager signs and verifies session tokens.
type TokenManager interface {
	GenerateSessionToken(sessionID, userID uuid.UUID) (string, error)
	ParseSessionToken(token string) (sessionID uuid.UUID, userID uuid.UUID, err error)
}
