package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRevoker remembers signed-out token ids until the token would have
// expired on its own.
// Key format: revoked:<jti>
type TokenRevoker struct {
	client *redis.Client
	now    func() time.Time
}

// NewTokenRevoker creates a TokenRevoker wrapping the given Redis client.
func NewTokenRevoker(client *redis.Client) *TokenRevoker {
	return &TokenRevoker{client: client, now: time.Now}
}

// Revoke marks tokenID as revoked; the key expires at until.
func (r *TokenRevoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID was signed out.
func (r *TokenRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

func (r *TokenRevoker) key(tokenID string) string {
	return "revoked:" + tokenID
}
