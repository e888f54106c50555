package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	grpccontext "github.com/dtroode/cardkeeper-server/internal/api/grpc/context"
	"github.com/dtroode/cardkeeper-server/internal/mocks"
	"github.com/dtroode/cardkeeper-server/internal/model"
	"github.com/dtroode/cardkeeper-server/internal/testutil"
)

type sessionFunc func(ctx context.Context) (model.User, bool, error)

func (f sessionFunc) CurrentUser(ctx context.Context) (model.User, bool, error) {
	return f(ctx)
}

func openSession(ctx context.Context) (model.User, bool, error) {
	return model.User{ID: uuid.New()}, true, nil
}

func TestAuthenticate_AuthFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		header    string
		parseErr  error
		parses    bool
		sessions  sessionFunc
		wantCode  codes.Code
		wantToken string
	}{
		{
			name:     "missing authorization header",
			wantCode: codes.Unauthenticated,
		},
		{
			name:     "wrong scheme",
			header:   "Basic dXNlcjpwYXNz",
			wantCode: codes.Unauthenticated,
		},
		{
			name:     "bad signature",
			header:   "Bearer forged",
			parses:   true,
			parseErr: errors.New("signature is invalid"),
			wantCode: codes.Unauthenticated,
		},
		{
			name:   "session closed",
			header: "Bearer tok",
			parses: true,
			sessions: func(ctx context.Context) (model.User, bool, error) {
				return model.User{}, false, nil
			},
			wantCode: codes.Unauthenticated,
		},
		{
			name:   "session store failure",
			header: "Bearer tok",
			parses: true,
			sessions: func(ctx context.Context) (model.User, bool, error) {
				return model.User{}, false, errors.New("redis down")
			},
			wantCode: codes.Internal,
		},
		{
			name:      "open session",
			header:    "Bearer tok",
			parses:    true,
			sessions:  openSession,
			wantCode:  codes.OK,
			wantToken: "tok",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tokens := mocks.NewTokenManager(t)
			if tt.parses {
				tokens.On("ParseSessionToken", mockToken(tt.header)).
					Return(uuid.New(), uuid.New(), tt.parseErr).Once()
			}

			ctxMgr := grpccontext.NewManager()
			sessions := tt.sessions
			if sessions == nil {
				sessions = func(ctx context.Context) (model.User, bool, error) {
					t.Fatal("session must not be resolved")
					return model.User{}, false, nil
				}
			}

			m := NewAuthenticate(tokens, sessions, ctxMgr, testutil.MakeNoopLogger())

			ctx := context.Background()
			if tt.header != "" {
				ctx = metadata.NewIncomingContext(ctx, metadata.Pairs("authorization", tt.header))
			}

			got, err := m.AuthFunc(ctx)

			if tt.wantCode != codes.OK {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, status.Code(err))
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			token, ok := ctxMgr.GetSessionTokenFromContext(got)
			assert.True(t, ok)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestAuthenticate_SessionSeesToken(t *testing.T) {
	t.Parallel()

	tokens := mocks.NewTokenManager(t)
	tokens.On("ParseSessionToken", "tok").Return(uuid.New(), uuid.New(), nil).Once()

	ctxMgr := grpccontext.NewManager()
	var seen string
	sessions := sessionFunc(func(ctx context.Context) (model.User, bool, error) {
		seen, _ = ctxMgr.GetSessionTokenFromContext(ctx)
		return model.User{ID: uuid.New()}, true, nil
	})

	m := NewAuthenticate(tokens, sessions, ctxMgr, testutil.MakeNoopLogger())
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer tok"))

	_, err := m.AuthFunc(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", seen)
}

func mockToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) {
		return header[len(prefix):]
	}
	return header
}
