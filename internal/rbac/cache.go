package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheVersionKey = "rbac:version"

// Cache keeps role permission sets in Redis. Roles and permissions are
// slowly-changing reference data, so reads go through a versioned cache and
// administrative writes bump the version instead of deleting keys.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper. A nil client disables caching and
// every fetch falls through to the loader.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// Invalidate bumps the version so every cached permission set goes stale.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}

// FetchCodes loads the permission codes for a role, populating the cache on
// miss via the loader.
func (c *Cache) FetchCodes(ctx context.Context, roleID int64, loader func(context.Context) ([]string, error)) ([]string, error) {
	if loader == nil {
		return nil, errors.New("rbac: cache loader required")
	}
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return loader(ctx)
	}
	key := fmt.Sprintf("rbac:role:%d:codes:%d", roleID, ver)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var codes []string
		if err := json.Unmarshal(raw, &codes); err == nil {
			return codes, nil
		}
	}

	codes, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(codes); err == nil {
		_ = c.client.Set(ctx, key, data, c.ttl).Err()
	}
	return codes, nil
}
