package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/medrent/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "medrent-test",
		MaxRefreshCount:        2,
	})
}

func newTestInput() GenerateTokenInput {
	location := uuid.New()
	return GenerateTokenInput{
		UserID:          uuid.New(),
		Email:           "tech@medrent.tn",
		Role:            "EMPLOYEE",
		StockLocationID: &location,
	}
}

func TestNewJWTService_UsesSecretForRefreshIfNotProvided(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "only-secret"})
	assert.Equal(t, []byte("only-secret"), svc.refreshSecret)
}

func TestGenerateTokenPair(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, input.UserID.String(), claims.UserID)
	assert.Equal(t, "EMPLOYEE", claims.Role)
	assert.Equal(t, input.Email, claims.Email)
	assert.Equal(t, input.StockLocationID, claims.GetStockLocationUUID())
	assert.NotEmpty(t, claims.ID)
	assert.True(t, claims.HasRole("ADMIN", "EMPLOYEE"))
	assert.False(t, claims.HasRole("ADMIN"))
}

func TestValidateToken_Errors(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GenerateTokenPair(newTestInput())
	require.NoError(t, err)

	t.Run("refresh token is not an access token", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(pair.RefreshToken)
		assert.Error(t, err)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := svc.ValidateRefreshToken(pair.AccessToken)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		short := NewJWTService(config.JWTConfig{
			Secret:                "test-secret-key-at-least-32-chars",
			AccessTokenExpiration: -time.Minute,
			Issuer:                "medrent-test",
		})
		expired, err := short.GenerateTokenPair(newTestInput())
		require.NoError(t, err)
		_, err = short.ValidateAccessToken(expired.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong type claim signed with the access secret", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: svc.registered(uuid.New(), time.Now(), time.Minute),
			UserID:           uuid.NewString(),
			TokenType:        TokenTypeRefresh,
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.accessSecret)
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(signed)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})

	t.Run("missing user id", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: svc.registered(uuid.New(), time.Now(), time.Minute),
			TokenType:        TokenTypeAccess,
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.accessSecret)
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(signed)
		assert.ErrorIs(t, err, ErrMissingUserID)
	})
}

func TestRefreshTokenPair(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()
	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	t.Run("picks up the current role", func(t *testing.T) {
		promoted := input
		promoted.Role = "MANAGER"
		next, err := svc.RefreshTokenPair(pair.RefreshToken, promoted)
		require.NoError(t, err)

		claims, err := svc.ValidateAccessToken(next.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "MANAGER", claims.Role)

		refresh, err := svc.ValidateRefreshToken(next.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, 1, refresh.RefreshCount)
	})

	t.Run("rejects another user's refresh token", func(t *testing.T) {
		other := newTestInput()
		_, err := svc.RefreshTokenPair(pair.RefreshToken, other)
		assert.ErrorIs(t, err, ErrInvalidClaims)
	})

	t.Run("stops after the maximum refresh count", func(t *testing.T) {
		token := pair.RefreshToken
		for i := 0; i < 2; i++ {
			next, err := svc.RefreshTokenPair(token, input)
			require.NoError(t, err)
			token = next.RefreshToken
		}
		_, err := svc.RefreshTokenPair(token, input)
		assert.ErrorIs(t, err, ErrMaxRefreshExceeded)
	})
}

func TestClaims_GetRemainingTTL(t *testing.T) {
	c := &Claims{}
	assert.Zero(t, c.GetRemainingTTL())

	c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Minute))
	assert.InDelta(t, time.Minute.Seconds(), c.GetRemainingTTL().Seconds(), 2)
}
