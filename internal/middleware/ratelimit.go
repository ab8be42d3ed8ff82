package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/foodgram/foodgram/internal/auth"
	"github.com/foodgram/foodgram/internal/cache"
	"github.com/foodgram/foodgram/internal/model"
)

// RateLimiter checks token buckets. *cache.Cache implements it.
type RateLimiter interface {
	CheckAPIRateLimit(ctx context.Context, keyID string, ratePerMinute, burst int) (*cache.RateLimitResult, error)
	CheckIPRateLimit(ctx context.Context, ip string, ratePerSecond, burst int) (*cache.RateLimitResult, error)
}

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter RateLimiter
	// Per API key, sized by the key's tier.
	APIEnabled bool
	// Per client IP, for anonymous requests.
	IPEnabled bool
	IPRPS     int
	IPBurst   int
}

// RateLimit limits authenticated requests per API key and anonymous
// requests per client IP. Limiter errors let the request through.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authCtx := auth.AuthFromContext(r.Context()); authCtx != nil {
				if cfg.APIEnabled && !cfg.allowKey(w, r, authCtx) {
					return
				}
			} else if cfg.IPEnabled && !cfg.allowIP(w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (cfg RateLimitConfig) allowKey(w http.ResponseWriter, r *http.Request, authCtx *model.AuthContext) bool {
	tierConfig, ok := model.TierConfigs[authCtx.RateLimitTier]
	if !ok {
		tierConfig = model.TierConfigs[model.TierFree]
	}
	if tierConfig.RequestsPerMinute == 0 {
		return true
	}

	result, err := cfg.Limiter.CheckAPIRateLimit(r.Context(), authCtx.KeyID, tierConfig.RequestsPerMinute, tierConfig.Burst)
	if err != nil {
		cfg.Logger.Error("rate limit check failed",
			slog.String("error", err.Error()),
			slog.String("key_id", authCtx.KeyID),
		)
		return true
	}

	setRateLimitHeaders(w, tierConfig.RequestsPerMinute, result.Remaining, result.ResetAt)
	if result.Allowed {
		return true
	}

	cfg.Logger.Warn("rate limit exceeded",
		slog.String("type", "api"),
		slog.String("key_id", authCtx.KeyID),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.Int64("retry_after_seconds", int64(result.RetryAfter.Seconds())),
		slog.String("request_id", GetRequestID(r.Context())),
	)
	writeRateLimitError(w, result.RetryAfter)
	return false
}

func (cfg RateLimitConfig) allowIP(w http.ResponseWriter, r *http.Request) bool {
	ip := getClientIP(r)

	result, err := cfg.Limiter.CheckIPRateLimit(r.Context(), ip, cfg.IPRPS, cfg.IPBurst)
	if err != nil {
		cfg.Logger.Error("IP rate limit check failed",
			slog.String("error", err.Error()),
			slog.String("ip", ip),
		)
		return true
	}
	if result.Allowed {
		return true
	}

	cfg.Logger.Warn("rate limit exceeded",
		slog.String("type", "ip"),
		slog.String("ip", ip),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.Int64("retry_after_seconds", int64(result.RetryAfter.Seconds())),
		slog.String("request_id", GetRequestID(r.Context())),
	)
	writeRateLimitError(w, result.RetryAfter)
	return false
}

// setRateLimitHeaders sets standard rate limit response headers.
func setRateLimitHeaders(w http.ResponseWriter, limit int, remaining int64, resetAt time.Time) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
}

// writeRateLimitError writes a 429 Too Many Requests response.
func writeRateLimitError(w http.ResponseWriter, retryAfter time.Duration) {
	seconds := max(int(retryAfter.Seconds()), 1)
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	writeError(w, http.StatusTooManyRequests, "RATE_LIMITED",
		fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", seconds))
}

// getClientIP extracts the client IP from the request.
// X-Forwarded-For and X-Real-IP are trusted for proxied requests.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
