package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_RoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.NoError(t, h.Check(hash, "correct horse battery"))
	assert.ErrorIs(t, h.Check(hash, "wrong"), ErrPasswordMismatch)
}

func TestHasher_CheckRejectsGarbageHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	err := h.Check("not-a-hash", "whatever")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)
}
