package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := NewAccessToken(42, "admin")
	require.NoError(t, err)

	claims, err := ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	refresh, err := NewRefreshToken(42, "user")
	require.NoError(t, err)

	// A refresh token must not pass as an access token, and vice versa.
	_, err = ParseAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	access, err := NewAccessToken(42, "user")
	require.NoError(t, err)
	_, err = ParseRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsTamperedToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := NewAccessToken(42, "user")
	require.NoError(t, err)

	_, err = ParseAccessToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := NewAccessToken(42, "user")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "rotated-secret")
	_, err = ParseAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenRevocation(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := NewRefreshToken(42, "user")
	require.NoError(t, err)

	assert.False(t, IsRefreshTokenRevoked(token))
	RevokeRefreshToken(token)
	assert.True(t, IsRefreshTokenRevoked(token))
}

func TestRandomTokenIsUnique(t *testing.T) {
	a, b := RandomToken(), RandomToken()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
