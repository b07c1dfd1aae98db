package hasher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewBcrypt_ClampsCost(t *testing.T) {
	assert.Equal(t, MinCost, NewBcrypt(4).Cost())
	assert.Equal(t, 12, NewBcrypt(12).Cost())
	assert.Equal(t, bcrypt.MaxCost, NewBcrypt(99).Cost())
}

func TestBcrypt_HashAndVerify(t *testing.T) {
	h := NewBcrypt(MinCost)

	digest, err := h.Hash("Password1!")
	require.NoError(t, err)
	assert.NotEqual(t, "Password1!", digest)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cost, MinCost)

	assert.True(t, h.Verify("Password1!", digest))
	assert.False(t, h.Verify("Password2!", digest))
	assert.False(t, h.Verify("Password1!", "not-a-digest"))
}

func TestBcrypt_SaltsEachHash(t *testing.T) {
	h := NewBcrypt(MinCost)

	a, err := h.Hash("same-password")
	require.NoError(t, err)
	b, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestBcrypt_PasswordTooLong(t *testing.T) {
	h := NewBcrypt(MinCost)

	_, err := h.Hash(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
