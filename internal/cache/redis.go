// Package cache provides the Redis-backed tag cache, auth context cache and
// rate limiter.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTagTTL is how long the tag list stays cached when no TTL is configured.
const DefaultTagTTL = 10 * time.Minute

// Cache provides Redis cache access methods.
type Cache struct {
	client *redis.Client
	tagTTL time.Duration
}

// New creates a new Cache with a Redis client.
func New(ctx context.Context, redisURL string, tagTTL time.Duration) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return NewFromClient(client, tagTTL), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client, tagTTL time.Duration) *Cache {
	if tagTTL <= 0 {
		tagTTL = DefaultTagTTL
	}
	return &Cache{client: client, tagTTL: tagTTL}
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client returns the underlying Redis client.
// Use sparingly - prefer adding methods to Cache.
func (c *Cache) Client() *redis.Client {
	return c.client
}
