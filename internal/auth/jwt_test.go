package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_AccessTokenRoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Minute)

	raw, err := m.GenerateAccessToken("u-1", "alice", true)
	require.NoError(t, err)

	claims, err := m.VerifyAccessToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.Staff)
	assert.NotEmpty(t, claims.JTI)
}

func TestManager_RejectsForeignSecret(t *testing.T) {
	raw, err := NewManager("other", time.Minute).GenerateAccessToken("u-1", "alice", false)
	require.NoError(t, err)

	_, err = NewManager("test-secret", time.Minute).VerifyAccessToken(raw)
	assert.Error(t, err)
}

func TestManager_RejectsExpired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	raw, err := m.GenerateAccessToken("u-1", "alice", false)
	require.NoError(t, err)

	_, err = m.VerifyAccessToken(raw)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestManager_RejectsWrongTokenType(t *testing.T) {
	m := NewManager("test-secret", time.Minute)

	claims := Claims{
		UserID:    "u-1",
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.VerifyAccessToken(raw)
	assert.EqualError(t, err, "invalid token type")
}
