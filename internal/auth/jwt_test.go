package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour, 7*24*time.Hour)

	token, err := m.GenerateAccessToken(42, "u@example.com", "drawer")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "u@example.com", claims.Email)
	assert.Equal(t, "drawer", claims.Nickname)
	assert.Equal(t, tokenIssuer, claims.Issuer)
	assert.Equal(t, "42", claims.Subject)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour, 7*24*time.Hour)

	token, err := m.GenerateRefreshToken(7)
	require.NoError(t, err)

	userID, err := m.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), userID)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTManager("secret-a", time.Hour, time.Hour)
	verifier := NewJWTManager("secret-b", time.Hour, time.Hour)

	token, err := issuer.GenerateAccessToken(1, "u@example.com", "drawer")
	require.NoError(t, err)

	_, err = verifier.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute, -time.Minute)

	access, err := m.GenerateAccessToken(1, "u@example.com", "drawer")
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(access)
	assert.ErrorIs(t, err, ErrExpiredToken)

	refresh, err := m.GenerateRefreshToken(1)
	require.NoError(t, err)
	_, err = m.ValidateRefreshToken(refresh)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour, time.Hour)

	_, err := m.ValidateAccessToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
