package hasher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/cardkeeper-server/internal/model"
)

func newTestHasher() *Argon2 {
	return NewArgon2(1, 1024, 1)
}

func TestArgon2_HashIsDeterministicPerSalt(t *testing.T) {
	h := newTestHasher()

	salt, err := h.NewSalt()
	require.NoError(t, err)
	assert.Len(t, salt, saltLen)

	assert.Equal(t, h.Hash("secret1", salt), h.Hash("secret1", salt))

	other, err := h.NewSalt()
	require.NoError(t, err)
	assert.NotEqual(t, h.Hash("secret1", salt), h.Hash("secret1", other))
}

func TestArgon2_Verify(t *testing.T) {
	h := newTestHasher()
	salt, err := h.NewSalt()
	require.NoError(t, err)

	cred := model.Credential{Hash: h.Hash("secret1", salt), Salt: salt}

	assert.True(t, h.Verify("secret1", cred))
	assert.False(t, h.Verify("secret2", cred))
	assert.False(t, h.Verify("secret1", model.Credential{}))
}

func TestNewArgon2_Defaults(t *testing.T) {
	h := NewArgon2(0, 0, 0)
	assert.Equal(t, uint32(1), h.time)
	assert.Equal(t, uint32(64*1024), h.memKiB)
	assert.Equal(t, uint8(4), h.par)
}
