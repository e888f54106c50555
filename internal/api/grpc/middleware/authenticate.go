package middleware

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/cardkeeper-server/internal/logger"
	"github.com/dtroode/cardkeeper-server/internal/model"
)

// SessionResolver reports whether the context belongs to an open session.
type SessionResolver interface {
	CurrentUser(ctx context.Context) (model.User, bool, error)
}

// Authenticate validates bearer session tokens and carries them into the
// request context.
type Authenticate struct {
	tokens         model.TokenManager
	sessions       SessionResolver
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokens model.TokenManager, sessions SessionResolver, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokens: tokens, sessions: sessions, contextManager: contextManager, logger: logger}
}

// AuthFunc reads the bearer token, checks its signature and that its session
// is still open, and returns a context carrying the token.
func (m *Authenticate) AuthFunc(ctx context.Context) (context.Context, error) {
	token, err := auth.AuthFromMD(ctx, "bearer")
	if err != nil {
		return nil, err
	}

	if _, _, err := m.tokens.ParseSessionToken(token); err != nil {
		m.logger.Debug("Authenticate middleware: invalid token", "error", err.Error())
		return nil, status.Error(codes.Unauthenticated, "invalid session token")
	}

	ctx = m.contextManager.SetSessionTokenToContext(ctx, token)

	_, ok, err := m.sessions.CurrentUser(ctx)
	if err != nil {
		m.logger.Error("Authenticate middleware: failed to resolve session", "error", err.Error())
		return nil, status.Error(codes.Internal, "internal server error")
	}
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "session is closed")
	}

	return ctx, nil
}
