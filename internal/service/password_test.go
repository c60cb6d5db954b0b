package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testArgon2Params keeps hashing fast in tests.
var testArgon2Params = Argon2idParams{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse", testArgon2Params)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))
	assert.NoError(t, VerifyPassword(hash, "correct horse"))
	assert.ErrorIs(t, VerifyPassword(hash, "battery staple"), ErrInvalidCredentials)
}

func TestHashPassword_SaltsDiffer(t *testing.T) {
	a, err := HashPassword("same", testArgon2Params)
	require.NoError(t, err)
	b, err := HashPassword("same", testArgon2Params)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
		want error
	}{
		{"plaintext", "hunter2", ErrInvalidPasswordHash},
		{"wrong algorithm", "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA", ErrInvalidPasswordHash},
		{"wrong version", "$argon2id$v=16$m=1024,t=1,p=1$c2FsdA$aGFzaA", ErrIncompatiblePasswordVersion},
		{"bad params", "$argon2id$v=19$memory$c2FsdA$aGFzaA", ErrInvalidPasswordHash},
		{"bad salt", "$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA", ErrInvalidPasswordHash},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, VerifyPassword(tt.hash, "pw"), tt.want)
		})
	}
}
