package model

import (
	"context"

	"github.com/google/uuid"
)

// CredentialStore persists password credentials independently of users.
type CredentialStore interface {
	// Upsert replaces the credential of the user, keeping at most one per user.
	Upsert(ctx context.Context, credential Credential) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (Credential, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

// Credential is a salted one-way hash of a user's password.
type Credential struct {
	UserID uuid.UUID
	Hash   []byte
	Salt   []byte
}

// PasswordHasher derives credential hashes from plaintext passwords.
type PasswordHasher interface {
	NewSalt() ([]byte, error)
	Hash(password string, salt []byte) []byte
	Verify(password string, credential Credential) bool
}
