// Package hasher derives password credentials with argon2id.
package hasher

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/dtroode/cardkeeper-server/internal/model"
)

const (
	saltLen = 16
	keyLen  = 32
)

var _ model.PasswordHasher = (*Argon2)(nil)

// Argon2 hashes passwords with argon2id and a per-user random salt.
type Argon2 struct {
	time   uint32
	memKiB uint32
	par    uint8
}

// NewArgon2 creates a hasher with the given cost parameters.
func NewArgon2(time, memKiB uint32, par uint8) *Argon2 {
	if time == 0 {
		time = 1
	}
	if memKiB == 0 {
		memKiB = 64 * 1024
	}
	if par == 0 {
		par = 4
	}
	return &Argon2{time: time, memKiB: memKiB, par: par}
}

// NewSalt returns a fresh random salt.
func (a *Argon2) NewSalt() ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to read random salt: %w", err)
	}
	return salt, nil
}

// Hash derives the credential hash. The same password and salt always yield the same hash.
func (a *Argon2) Hash(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, a.time, a.memKiB, a.par, keyLen)
}

// Verify reports whether password matches the stored credential.
func (a *Argon2) Verify(password string, credential model.Credential) bool {
	if len(credential.Hash) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(a.Hash(password, credential.Salt), credential.Hash) == 1
}
