package auth

import (
	"context"
	"time"
)

// TokenBlacklist records revoked token ids (jti) until the token would have expired anyway.
type TokenBlacklist interface {
	Add(ctx context.Context, jti string, originalTokenExpTime time.Time) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}
