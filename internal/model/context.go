package model

import (
	"context"
)

// ContextManager carries the caller's session token through a request context.
type ContextManager interface {
	SetSessionTokenToContext(ctx context.Context, token string) context.Context
	GetSessionTokenFromContext(ctx context.Context) (string, bool)
}
