package auth

import (
	"testing"

	"telecare/config"

	"github.com/stretchr/testify/assert"
)

func newHasherConfig(cost int) *config.Config {
	return &config.Config{
		Auth: &config.AuthConfig{BcryptCost: cost},
	}
}

func TestBcryptHasher_HashAndCheck(t *testing.T) {
	hasher := NewBcryptHasher(newHasherConfig(4))

	password := "CorrectHorseBattery1!"
	hash, err := hasher.Hash(password)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)

	assert.True(t, hasher.Check(password, hash))
	assert.False(t, hasher.Check("wrong-password", hash))
}

func TestBcryptHasher_CheckWithInvalidHash(t *testing.T) {
	hasher := NewBcryptHasher(newHasherConfig(4))

	assert.False(t, hasher.Check("any-password", "not-a-bcrypt-hash"))
}

func TestBcryptHasher_HashesDiffer(t *testing.T) {
	hasher := NewBcryptHasher(newHasherConfig(4))

	first, err := hasher.Hash("SamePassword1!")
	assert.NoError(t, err)
	second, err := hasher.Hash("SamePassword1!")
	assert.NoError(t, err)

	// bcrypt salts every hash, so the same password never hashes identically.
	assert.NotEqual(t, first, second)
}
