package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchgraph/internal/auth"
	"matchgraph/internal/config"
)

var testAuthConfig = config.AuthConfig{JWTSecretKey: "middleware-secret", JWTExpiry: time.Hour}

type memoryBlacklist map[string]bool

func (m memoryBlacklist) Add(_ context.Context, jti string, _ time.Time) error {
	m[jti] = true
	return nil
}

func (m memoryBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return m[jti], nil
}

func newProtectedHandler(t *testing.T, blacklist auth.TokenBlacklist, seen *uuid.UUID) http.Handler {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserIDFromContext(r.Context())
		require.True(t, ok)
		claims, ok := GetClaimsFromContext(r.Context())
		require.True(t, ok)
		require.Equal(t, userID, claims.UserID)
		*seen = userID
		w.WriteHeader(http.StatusNoContent)
	})
	return AuthMiddleware(testAuthConfig, blacklist)(next)
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	token, err := auth.GenerateToken(userID, testAuthConfig)
	require.NoError(t, err)

	var seen uuid.UUID
	handler := newProtectedHandler(t, memoryBlacklist{}, &seen)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/endorsements/endorsed-by-me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, userID, seen)
}

func TestAuthMiddlewareRejects(t *testing.T) {
	token, err := auth.GenerateToken(uuid.New(), testAuthConfig)
	require.NoError(t, err)

	revokedToken, err := auth.GenerateToken(uuid.New(), testAuthConfig)
	require.NoError(t, err)
	blacklist := memoryBlacklist{}
	claims, err := auth.ValidateToken(context.Background(), revokedToken, testAuthConfig.JWTSecretKey, nil)
	require.NoError(t, err)
	blacklist[claims.ID] = true

	cases := map[string]string{
		"missing header":  "",
		"wrong scheme":    "Basic " + token,
		"no token":        "Bearer ",
		"malformed token": "Bearer abc.def.ghi",
		"revoked token":   "Bearer " + revokedToken,
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			var seen uuid.UUID
			handler := newProtectedHandler(t, blacklist, &seen)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/endorsements/endorsed-by-me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
			assert.Equal(t, uuid.Nil, seen)
		})
	}
}
