package context

import (
	"context"

	"google.golang.org/grpc/metadata"

	"github.com/dtroode/cardkeeper-server/internal/model"
)

// sessionTokenKey is the metadata key used to carry the verified session token.
const (
	sessionTokenKey string = "x-session-token"
)

var _ model.ContextManager = (*Manager)(nil)

// Manager represents a gRPC context manager for session token operations.
// It stores the token in incoming metadata so it follows the request through
// interceptors and handlers.
type Manager struct{}

// NewManager creates a new gRPC context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetSessionTokenToContext returns a context whose incoming metadata carries token.
// Existing metadata is copied, not mutated.
func (m *Manager) SetSessionTokenToContext(ctx context.Context, token string) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		md = metadata.New(map[string]string{sessionTokenKey: token})
	} else {
		md = md.Copy()
		md.Set(sessionTokenKey, token)
	}

	return metadata.NewIncomingContext(ctx, md)
}

// GetSessionTokenFromContext retrieves the session token from incoming metadata.
func (m *Manager) GetSessionTokenFromContext(ctx context.Context) (string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false
	}

	tokens := md.Get(sessionTokenKey)
	if len(tokens) == 0 || tokens[0] == "" {
		return "", false
	}

	return tokens[0], true
}
