package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/foodgram/foodgram/internal/auth"
	"github.com/foodgram/foodgram/internal/model"
)

// DefaultMinAuthDuration is the floor on time spent authenticating a
// request, so failures and successes take the same time.
const DefaultMinAuthDuration = 200 * time.Millisecond

const lastUsedTimeout = 5 * time.Second

// KeyLookup finds API keys for authentication.
type KeyLookup interface {
	GetAPIKeysByPrefix(ctx context.Context, prefix string) ([]*model.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id string) error
}

// AuthCache caches verified auth contexts. *cache.Cache implements it.
type AuthCache interface {
	GetAuthContext(ctx context.Context, cacheKey string) (*model.AuthContext, error)
	SetAuthContext(ctx context.Context, cacheKey string, auth *model.AuthContext) error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger *slog.Logger
	Keys   KeyLookup
	// Cache may be nil.
	Cache AuthCache
	// MinDuration pads every authentication attempt. Zero disables padding.
	MinDuration time.Duration
}

// Auth returns a middleware that requires a valid API key.
// The key is read from "Authorization: Bearer" or "X-API-Key".
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return authenticate(cfg, true)
}

// OptionalAuth authenticates the request when a key is present and lets
// anonymous requests through. A present but invalid key is still rejected.
func OptionalAuth(cfg AuthConfig) func(http.Handler) http.Handler {
	return authenticate(cfg, false)
}

func authenticate(cfg AuthConfig, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractAPIKey(r)
			if key == "" && !required {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			authCtx, reason, cacheHit := cfg.resolve(r.Context(), key)
			if elapsed := time.Since(start); !cacheHit && elapsed < cfg.MinDuration {
				time.Sleep(cfg.MinDuration - elapsed)
			}

			if authCtx == nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			cfg.Logger.Debug("authentication successful",
				slog.String("key_id", authCtx.KeyID),
				slog.Int64("user_id", authCtx.UserID),
				slog.Bool("cache_hit", cacheHit),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithAuth(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolve verifies key and returns its auth context, or nil and a reason.
func (cfg AuthConfig) resolve(ctx context.Context, key string) (*model.AuthContext, string, bool) {
	if key == "" {
		return nil, "missing_key", false
	}

	parsed, err := auth.ParseAPIKey(key)
	if err != nil {
		return nil, "invalid_format", false
	}

	cacheKey := auth.QuickHash(key)
	if cfg.Cache != nil {
		if cached, _ := cfg.Cache.GetAuthContext(ctx, cacheKey); cached != nil {
			return cached, "", true
		}
	}

	keys, err := cfg.Keys.GetAPIKeysByPrefix(ctx, parsed.Prefix)
	if err != nil {
		cfg.Logger.Error("database error during auth",
			slog.String("error", err.Error()),
			slog.String("request_id", GetRequestID(ctx)),
		)
		return nil, "lookup_failed", false
	}

	// Several keys can share a prefix.
	var matched *model.APIKey
	for _, k := range keys {
		if ok, err := auth.VerifySecret(key, k.KeyHash); err == nil && ok {
			matched = k
			break
		}
	}
	if matched == nil {
		return nil, "invalid_key", false
	}

	authCtx := &model.AuthContext{
		KeyID:         matched.ID,
		KeyPrefix:     matched.KeyPrefix,
		UserID:        matched.UserID,
		Scopes:        matched.Scopes,
		RateLimitTier: matched.RateLimitTier,
	}

	if cfg.Cache != nil {
		_ = cfg.Cache.SetAuthContext(ctx, cacheKey, authCtx)
	}

	go func() {
		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), lastUsedTimeout)
		defer cancel()
		if err := cfg.Keys.UpdateAPIKeyLastUsed(bg, matched.ID); err != nil {
			cfg.Logger.Warn("failed to update key last used", slog.String("error", err.Error()))
		}
	}()

	return authCtx, "", false
}

// extractAPIKey extracts the API key from the request.
// Supports both "Authorization: Bearer <key>" and "X-API-Key: <key>" headers.
func extractAPIKey(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
			return token
		}
	}
	return r.Header.Get("X-API-Key")
}

// writeAuthError writes a 401 response.
// Every failure gets the same message to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing API key")
}
