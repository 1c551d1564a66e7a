package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// WhitelistCache implements ports.WhitelistCache using Redis. Membership
// is cached as "1"/"0" per principal so negative lookups are cached too.
type WhitelistCache struct {
	client *goredis.Client
	prefix string
}

// NewWhitelistCache creates a new Redis-backed whitelist cache.
func NewWhitelistCache(client *goredis.Client) *WhitelistCache {
	return &WhitelistCache{
		client: client,
		prefix: "whitelist:",
	}
}

// Get returns the cached membership flag for a principal.
// found is false on a cache miss.
func (c *WhitelistCache) Get(ctx context.Context, principal uuid.UUID) (member bool, found bool, err error) {
	val, err := c.client.Get(ctx, c.prefix+principal.String()).Result()
	if err != nil {
		if err == goredis.Nil {
			return false, false, nil
		}
		return false, false, fmt.Errorf("redis whitelist get: %w", err)
	}
	return val == "1", true, nil
}

// Set caches the membership flag for a principal with TTL.
func (c *WhitelistCache) Set(ctx context.Context, principal uuid.UUID, member bool, ttl time.Duration) error {
	val := "0"
	if member {
		val = "1"
	}
	if err := c.client.Set(ctx, c.prefix+principal.String(), val, ttl).Err(); err != nil {
		return fmt.Errorf("redis whitelist set: %w", err)
	}
	return nil
}

// Invalidate drops the cached entry for a principal.
func (c *WhitelistCache) Invalidate(ctx context.Context, principal uuid.UUID) error {
	if err := c.client.Del(ctx, c.prefix+principal.String()).Err(); err != nil {
		return fmt.Errorf("redis whitelist del: %w", err)
	}
	return nil
}
