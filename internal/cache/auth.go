package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/foodgram/foodgram/internal/model"
)

const (
	authCachePrefix    = "foodgram:auth:"
	authKeyIndexPrefix = "foodgram:auth-key:"
	authCacheTTL       = 5 * time.Minute
)

// cachedAuthContext is the Redis representation of model.AuthContext.
type cachedAuthContext struct {
	KeyID         string   `json:"key_id"`
	KeyPrefix     string   `json:"key_prefix"`
	UserID        int64    `json:"user_id"`
	Scopes        []string `json:"scopes"`
	RateLimitTier string   `json:"rate_limit_tier"`
}

// GetAuthContext retrieves a cached auth context by cache key.
// Returns nil if not found (cache miss).
func (c *Cache) GetAuthContext(ctx context.Context, cacheKey string) (*model.AuthContext, error) {
	data, err := c.client.Get(ctx, authCachePrefix+cacheKey).Bytes()
	if err != nil {
		return nil, nil //nolint:nilerr // miss
	}

	var cached cachedAuthContext
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, nil //nolint:nilerr // corrupted entry is a miss
	}

	return &model.AuthContext{
		KeyID:         cached.KeyID,
		KeyPrefix:     cached.KeyPrefix,
		UserID:        cached.UserID,
		Scopes:        cached.Scopes,
		RateLimitTier: cached.RateLimitTier,
	}, nil
}

// SetAuthContext caches an auth context.
func (c *Cache) SetAuthContext(ctx context.Context, cacheKey string, auth *model.AuthContext) error {
	data, err := json.Marshal(cachedAuthContext{
		KeyID:         auth.KeyID,
		KeyPrefix:     auth.KeyPrefix,
		UserID:        auth.UserID,
		Scopes:        auth.Scopes,
		RateLimitTier: auth.RateLimitTier,
	})
	if err != nil {
		return fmt.Errorf("marshal auth context: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, authCachePrefix+cacheKey, data, authCacheTTL)
	pipe.Set(ctx, authKeyIndexPrefix+auth.KeyID, cacheKey, authCacheTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// InvalidateAPIKey drops the cached auth context of a key by its ID.
// Called on revoke and rotate so the next request re-verifies against the database.
func (c *Cache) InvalidateAPIKey(ctx context.Context, keyID string) error {
	cacheKey, err := c.client.Get(ctx, authKeyIndexPrefix+keyID).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup auth index: %w", err)
	}
	return c.client.Del(ctx, authCachePrefix+cacheKey, authKeyIndexPrefix+keyID).Err()
}
