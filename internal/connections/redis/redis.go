package redis

import (
	"context"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"dinesplit/internal/config"
)

// Cache wraps a Redis client as a read-side cache. All methods are nil-safe:
// a nil *Cache behaves as a cache that never hits, so callers need no
// "is caching enabled" branches.
type Cache struct {
	client *goredis.Client
}

func Connect(ctx context.Context, cfg config.Redis) (*Cache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Cache{client: client}, nil
}

func (c *Cache) Close() {
	if c != nil && c.client != nil {
		_ = c.client.Close()
	}
}

// Get returns the cached payload, or ok=false on miss, nil receiver or error.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Set(ctx, key, value, ttl).Err()
}

func (c *Cache) Del(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}
	_ = c.client.Del(ctx, keys...).Err()
}
