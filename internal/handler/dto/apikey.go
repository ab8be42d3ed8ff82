package dto

import (
	"time"

	"github.com/foodgram/foodgram/internal/model"
)

// CreateAPIKeyRequest represents the request body for creating an API key.
type CreateAPIKeyRequest struct {
	Name   string   `json:"name" validate:"max=100"`
	Scopes []string `json:"scopes" validate:"omitempty,dive,oneof=read write admin"`
}

// APIKeyResponse represents an API key in API responses. The secret is
// never included.
type APIKeyResponse struct {
	ID            string     `json:"id"`
	KeyPrefix     string     `json:"key_prefix"`
	Name          string     `json:"name,omitempty"`
	Scopes        []string   `json:"scopes"`
	RateLimitTier string     `json:"rate_limit_tier"`
	CreatedAt     time.Time  `json:"created_at"`
	LastUsedAt    *time.Time `json:"last_used_at,omitempty"`
	RevokedAt     *time.Time `json:"revoked_at,omitempty"`
}

// APIKeyCreatedResponse includes the plaintext key, shown only once.
type APIKeyCreatedResponse struct {
	APIKeyResponse
	Key string `json:"key"`
}

// ToAPIKeyResponse converts an APIKey model to APIKeyResponse DTO.
func ToAPIKeyResponse(k *model.APIKey) APIKeyResponse {
	return APIKeyResponse{
		ID:            k.ID,
		KeyPrefix:     k.KeyPrefix,
		Name:          k.Name,
		Scopes:        k.Scopes,
		RateLimitTier: k.RateLimitTier,
		CreatedAt:     k.CreatedAt,
		LastUsedAt:    k.LastUsedAt,
		RevokedAt:     k.RevokedAt,
	}
}

// ToAPIKeyCreatedResponse pairs a new key with its plaintext.
func ToAPIKeyCreatedResponse(k *model.APIKey, plaintext string) APIKeyCreatedResponse {
	return APIKeyCreatedResponse{APIKeyResponse: ToAPIKeyResponse(k), Key: plaintext}
}

// ToAPIKeyListResponse converts keys to responses.
func ToAPIKeyListResponse(keys []*model.APIKey) *APIKeyListResponse {
	return &APIKeyListResponse{Keys: mapSlice(keys, ToAPIKeyResponse)}
}

// APIKeyListResponse wraps a user's keys.
type APIKeyListResponse struct {
	Keys []APIKeyResponse `json:"keys"`
}

// APIKeyRotateResponse reports the revoked key and its replacement.
type APIKeyRotateResponse struct {
	OldKeyID string                `json:"old_key_id"`
	NewKey   APIKeyCreatedResponse `json:"new_key"`
}
