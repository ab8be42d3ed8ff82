package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	rateLimitKeyPrefix = "foodgram:rl:key:"
	rateLimitIPPrefix  = "foodgram:rl:ip:"
	rateLimitKeyTTL    = 120 * time.Second
	rateLimitIPTTL     = 10 * time.Second
)

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// bucket describes one token bucket in Redis.
type bucket struct {
	key   string
	rate  float64 // tokens per second
	burst int
	ttl   time.Duration
}

// tokenBucketScript refills and consumes a token atomically.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])
	local burst = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	local data = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(data[1]) or burst
	local last_update = tonumber(data[2]) or now

	tokens = math.min(burst, tokens + ((now - last_update) * rate))

	local allowed = 0
	local retry_after = 0
	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_update', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// CheckAPIRateLimit consumes one token from the bucket of an API key.
// A zero ratePerMinute means unlimited.
func (c *Cache) CheckAPIRateLimit(ctx context.Context, keyID string, ratePerMinute, burst int) (*RateLimitResult, error) {
	if ratePerMinute == 0 {
		return unlimited(burst), nil
	}
	return c.take(ctx, apiKeyBucket(keyID, ratePerMinute, burst))
}

// CheckIPRateLimit consumes one token from the bucket of a client IP.
func (c *Cache) CheckIPRateLimit(ctx context.Context, ip string, ratePerSecond, burst int) (*RateLimitResult, error) {
	return c.take(ctx, ipBucket(ip, ratePerSecond, burst))
}

func apiKeyBucket(keyID string, ratePerMinute, burst int) bucket {
	return bucket{
		key:   rateLimitKeyPrefix + keyID,
		rate:  float64(ratePerMinute) / 60.0,
		burst: burst,
		ttl:   rateLimitKeyTTL,
	}
}

// ipBucket keys on a hash so raw addresses are never stored.
func ipBucket(ip string, ratePerSecond, burst int) bucket {
	return bucket{
		key:   rateLimitIPPrefix + hashIP(ip),
		rate:  float64(ratePerSecond),
		burst: burst,
		ttl:   rateLimitIPTTL,
	}
}

func (c *Cache) take(ctx context.Context, b bucket) (*RateLimitResult, error) {
	result, err := tokenBucketScript.Run(ctx, c.client,
		[]string{b.key},
		b.rate, b.burst, time.Now().Unix(), int(b.ttl.Seconds()),
	).Int64Slice()

	if err != nil {
		// Fail open on Redis errors
		return unlimited(b.burst), nil
	}

	return &RateLimitResult{
		Allowed:    result[0] == 1,
		Remaining:  result[2],
		ResetAt:    time.Now().Add(time.Duration(float64(time.Second) / b.rate)),
		RetryAfter: time.Duration(result[1]) * time.Second,
	}, nil
}

func unlimited(burst int) *RateLimitResult {
	return &RateLimitResult{
		Allowed:   true,
		Remaining: int64(burst),
		ResetAt:   time.Now().Add(time.Minute),
	}
}

// hashIP creates a truncated SHA256 hash of an IP address.
func hashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(hash[:8])
}
