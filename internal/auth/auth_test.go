package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cure-password")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cure-password", hash)

	assert.True(t, CheckPassword(hash, "s3cure-password"))
	assert.False(t, CheckPassword(hash, "wrong-password"))
}

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateAccessToken(7, 3, "owner@gym.com", "gym_owner", testSecret)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, 3, claims.OrganizationID)
	assert.Equal(t, "owner@gym.com", claims.Email)
	assert.Equal(t, "gym_owner", claims.Role)
	assert.Equal(t, "access", claims.TokenType)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(1, 1, "member@gym.com", "member", testSecret)
	require.NoError(t, err)

	_, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateTokenEmptySecret(t *testing.T) {
	_, err := GenerateAccessToken(1, 1, "member@gym.com", "member", "")
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)

	_, err = ValidateToken("whatever", "")
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)
}

func TestValidateExpiredToken(t *testing.T) {
	claims := &JWTClaims{
		UserID:         1,
		OrganizationID: 1,
		Email:          "member@gym.com",
		Role:           "member",
		TokenType:      "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			Audience:  []string{jwtAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ValidateToken(signed, testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefreshAccessToken(t *testing.T) {
	_, refreshToken, err := GenerateTokens(5, 2, "staff@gym.com", "receptionist", testSecret)
	require.NoError(t, err)

	newAccess, claims, err := RefreshAccessToken(refreshToken, testSecret)
	require.NoError(t, err)
	assert.NotEmpty(t, newAccess)
	assert.Equal(t, 5, claims.UserID)
	assert.Equal(t, 2, claims.OrganizationID)

	newClaims, err := ValidateToken(newAccess, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "access", newClaims.TokenType)
}

func TestRefreshWithAccessTokenRejected(t *testing.T) {
	accessToken, err := GenerateAccessToken(5, 2, "staff@gym.com", "receptionist", testSecret)
	require.NoError(t, err)

	_, _, err = RefreshAccessToken(accessToken, testSecret)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}
