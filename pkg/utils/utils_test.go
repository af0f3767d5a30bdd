package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	hashed, err := h.Hash("foobar")
	require.NoError(t, err)
	assert.NotEqual(t, "foobar", hashed)
	assert.True(t, h.Compare(hashed, "foobar"))
	assert.False(t, h.Compare(hashed, "foobaz"))
	assert.False(t, h.Compare("not-a-hash", "foobar"))
}

func TestNewBcryptHasher_ClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).Cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).Cost)
}

func TestNewRememberToken(t *testing.T) {
	urlSafe := regexp.MustCompile(`^[A-Za-z0-9_-]{22}$`)
	a, err := NewRememberToken()
	require.NoError(t, err)
	b, err := NewRememberToken()
	require.NoError(t, err)
	assert.Regexp(t, urlSafe, a)
	assert.NotEqual(t, a, b)
}
