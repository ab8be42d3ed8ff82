package model

import (
	"slices"
	"time"
)

// Scopes granted to API keys. Admin implies every other scope and lets the
// holder modify recipes they do not own.
const (
	ScopeRead  = "read"
	ScopeWrite = "write"
	ScopeAdmin = "admin"
)

// ValidScopes contains all valid scope values.
var ValidScopes = []string{ScopeRead, ScopeWrite, ScopeAdmin}

// Rate limit tiers.
const (
	TierFree      = "free"
	TierPro       = "pro"
	TierUnlimited = "unlimited"
)

// RateLimitConfig defines rate limit parameters per tier.
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

// TierConfigs maps tier names to their rate limit configurations.
// Zero RequestsPerMinute means unlimited.
var TierConfigs = map[string]RateLimitConfig{
	TierFree:      {RequestsPerMinute: 120, Burst: 20},
	TierPro:       {RequestsPerMinute: 1200, Burst: 100},
	TierUnlimited: {RequestsPerMinute: 0, Burst: 0},
}

// APIKey is a bearer credential belonging to a user.
type APIKey struct {
	ID            string     `json:"id"`
	UserID        int64      `json:"user_id"`
	KeyHash       string     `json:"-"`
	KeyPrefix     string     `json:"key_prefix"`
	Scopes        []string   `json:"scopes"`
	RateLimitTier string     `json:"rate_limit_tier"`
	Name          string     `json:"name,omitempty"`
	RevokedAt     *time.Time `json:"revoked_at,omitempty"`
	LastUsedAt    *time.Time `json:"last_used_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// IsRevoked returns true if the key has been revoked.
func (k *APIKey) IsRevoked() bool {
	return k.RevokedAt != nil
}

// HasScope checks if the key has a specific scope.
func (k *APIKey) HasScope(scope string) bool {
	return hasScope(k.Scopes, scope)
}

// GetRateLimitConfig returns the rate limit configuration for this key.
func (k *APIKey) GetRateLimitConfig() RateLimitConfig {
	if config, ok := TierConfigs[k.RateLimitTier]; ok {
		return config
	}
	return TierConfigs[TierFree]
}

// AuthContext is the authenticated identity attached to a request.
type AuthContext struct {
	KeyID         string
	KeyPrefix     string
	UserID        int64
	Scopes        []string
	RateLimitTier string
}

// HasScope checks if the auth context has a specific scope.
func (a *AuthContext) HasScope(scope string) bool {
	return hasScope(a.Scopes, scope)
}

// Viewer converts the auth context into a read-side viewer.
func (a *AuthContext) Viewer() Viewer {
	if a == nil {
		return Anonymous
	}
	return Viewer{
		UserID:  a.UserID,
		IsAdmin: slices.Contains(a.Scopes, ScopeAdmin),
	}
}

func hasScope(scopes []string, scope string) bool {
	if slices.Contains(scopes, ScopeAdmin) {
		return true
	}
	return slices.Contains(scopes, scope)
}
