package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/foodgram/foodgram/internal/model"
)

const tagListKey = "foodgram:tags:all"

// ErrCacheMiss is returned when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

// GetTags returns the cached tag list or ErrCacheMiss.
func (c *Cache) GetTags(ctx context.Context) ([]*model.Tag, error) {
	data, err := c.client.Get(ctx, tagListKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var tags []*model.Tag
	if err := json.Unmarshal(data, &tags); err != nil {
		// Corrupted entry - treat as miss
		return nil, ErrCacheMiss
	}
	return tags, nil
}

// SetTags caches the full tag list.
func (c *Cache) SetTags(ctx context.Context, tags []*model.Tag) error {
	data, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	return c.client.Set(ctx, tagListKey, data, c.tagTTL).Err()
}

// InvalidateTags drops the cached tag list.
func (c *Cache) InvalidateTags(ctx context.Context) error {
	return c.client.Del(ctx, tagListKey).Err()
}
