package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, hasher.Check("secret123", hash))
	assert.False(t, hasher.Check("secret124", hash))
	assert.False(t, hasher.Check("secret123", "not-a-hash"))

	// Hashes are salted
	again, err := hasher.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again)
}

func TestBcryptHasherDefaultCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
}
