package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/school-api/internal/domain"
)

// PrincipalCache fronts the per-request principal existence probe with a
// short-lived Redis entry. Only positive existence is cached; delete paths
// must call Invalidate so tokens for removed accounts stop working promptly.
type PrincipalCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPrincipalCache builds the cache. A nil client disables caching.
func NewPrincipalCache(client *redis.Client, ttlSeconds int) *PrincipalCache {
	if ttlSeconds <= 0 {
		ttlSeconds = 60
	}
	return &PrincipalCache{client: client, ttl: time.Duration(ttlSeconds) * time.Second}
}

func principalKey(role domain.Role, id int64) string {
	return fmt.Sprintf("principal:%s:%d", role, id)
}

// Get returns the cached email for an existing principal.
func (c *PrincipalCache) Get(ctx context.Context, role domain.Role, id int64) (string, bool) {
	if c == nil || c.client == nil {
		return "", false
	}
	email, err := c.client.Get(ctx, principalKey(role, id)).Result()
	if err != nil {
		return "", false
	}
	return email, true
}

// Mark records that the principal currently exists.
func (c *PrincipalCache) Mark(ctx context.Context, role domain.Role, id int64, email string) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Set(ctx, principalKey(role, id), email, c.ttl).Err()
}

// Invalidate drops a cached existence entry after the account is deleted.
func (c *PrincipalCache) Invalidate(ctx context.Context, role domain.Role, id int64) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, principalKey(role, id)).Err()
}
