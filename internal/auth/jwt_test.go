package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchgraph/internal/config"
)

var testAuthConfig = config.AuthConfig{JWTSecretKey: "test-secret", JWTExpiry: time.Hour}

type stubBlacklist struct {
	revoked map[string]bool
	err     error
}

func (s *stubBlacklist) Add(_ context.Context, jti string, _ time.Time) error {
	if s.revoked == nil {
		s.revoked = map[string]bool{}
	}
	s.revoked[jti] = true
	return nil
}

func (s *stubBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.revoked[jti], nil
}

func TestGenerateAndValidateToken(t *testing.T) {
	userID := uuid.New()
	token, err := GenerateToken(userID, testAuthConfig)
	require.NoError(t, err)

	claims, err := ValidateToken(context.Background(), token, testAuthConfig.JWTSecretKey, &stubBlacklist{})
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, tokenIssuer, claims.Issuer)
}

func TestValidateTokenRejects(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("wrong key", func(t *testing.T) {
		token, err := GenerateToken(userID, testAuthConfig)
		require.NoError(t, err)
		_, err = ValidateToken(ctx, token, "other-secret", nil)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := GenerateToken(userID, config.AuthConfig{JWTSecretKey: "test-secret", JWTExpiry: -time.Minute})
		require.NoError(t, err)
		_, err = ValidateToken(ctx, token, testAuthConfig.JWTSecretKey, nil)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := ValidateToken(ctx, "not-a-jwt", testAuthConfig.JWTSecretKey, nil)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("missing user id", func(t *testing.T) {
		raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		token, err := raw.SignedString([]byte(testAuthConfig.JWTSecretKey))
		require.NoError(t, err)
		_, err = ValidateToken(ctx, token, testAuthConfig.JWTSecretKey, nil)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("revoked", func(t *testing.T) {
		token, err := GenerateToken(userID, testAuthConfig)
		require.NoError(t, err)
		bl := &stubBlacklist{}
		claims, err := ValidateToken(ctx, token, testAuthConfig.JWTSecretKey, bl)
		require.NoError(t, err)

		require.NoError(t, bl.Add(ctx, claims.ID, claims.ExpiresAt.Time))
		_, err = ValidateToken(ctx, token, testAuthConfig.JWTSecretKey, bl)
		assert.ErrorIs(t, err, ErrTokenRevoked)
	})

	t.Run("blacklist unavailable", func(t *testing.T) {
		token, err := GenerateToken(userID, testAuthConfig)
		require.NoError(t, err)
		_, err = ValidateToken(ctx, token, testAuthConfig.JWTSecretKey, &stubBlacklist{err: errors.New("redis down")})
		assert.Error(t, err)
	})
}
