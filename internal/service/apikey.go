package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/foodgram/foodgram/internal/auth"
	"github.com/foodgram/foodgram/internal/model"
	"github.com/foodgram/foodgram/internal/repository"
)

// AuthInvalidator drops cached authentication for a key. *cache.Cache implements it.
type AuthInvalidator interface {
	InvalidateAPIKey(ctx context.Context, keyID string) error
}

// APIKeyService manages a user's API keys.
type APIKeyService struct {
	store       APIKeyStore
	issueKey    KeyIssuer
	invalidator AuthInvalidator
	logger      *slog.Logger
}

// NewAPIKeyService creates a new APIKeyService. A nil issuer issues live keys.
func NewAPIKeyService(store APIKeyStore, issuer KeyIssuer, logger *slog.Logger) *APIKeyService {
	if issuer == nil {
		issuer = func(userID int64, scopes []string, name string) (*model.APIKey, string, error) {
			return auth.IssueAPIKey(auth.EnvLive, userID, scopes, name)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &APIKeyService{store: store, issueKey: issuer, logger: logger}
}

// WithAuthInvalidator makes revoke and rotate evict the key's cached auth context.
func (s *APIKeyService) WithAuthInvalidator(inv AuthInvalidator) *APIKeyService {
	s.invalidator = inv
	return s
}

func (s *APIKeyService) invalidate(ctx context.Context, keyID string) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidateAPIKey(ctx, keyID); err != nil {
		s.logger.Warn("auth cache invalidation failed", slog.String("key_id", keyID), slog.String("error", err.Error()))
	}
}

// Create issues a new key for the caller. Only admins can grant admin scope.
func (s *APIKeyService) Create(ctx context.Context, caller *model.AuthContext, scopes []string, name string) (*model.APIKey, string, error) {
	if caller == nil {
		return nil, "", ErrUnauthenticated
	}
	if err := validateScopes(scopes); err != nil {
		return nil, "", err
	}
	if slices.Contains(scopes, model.ScopeAdmin) && !caller.HasScope(model.ScopeAdmin) {
		return nil, "", ErrForbidden
	}

	key, plaintext, err := s.issueKey(caller.UserID, scopes, name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue API key: %w", err)
	}
	if err := s.store.CreateAPIKey(ctx, key); err != nil {
		return nil, "", fmt.Errorf("failed to store API key: %w", err)
	}

	s.logger.Info("api_key_created", slog.String("key_id", key.ID), slog.Int64("user_id", key.UserID))
	return key, plaintext, nil
}

// List returns every key of the caller.
func (s *APIKeyService) List(ctx context.Context, userID int64) ([]*model.APIKey, error) {
	keys, err := s.store.ListAPIKeysByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list API keys: %w", err)
	}
	if keys == nil {
		keys = []*model.APIKey{}
	}
	return keys, nil
}

// Revoke disables one of the caller's keys.
func (s *APIKeyService) Revoke(ctx context.Context, userID int64, keyID string) error {
	if err := s.store.RevokeAPIKey(ctx, keyID, userID); err != nil {
		if errors.Is(err, repository.ErrAPIKeyNotFound) {
			return ErrAPIKeyNotFound
		}
		return fmt.Errorf("failed to revoke API key: %w", err)
	}
	s.invalidate(ctx, keyID)
	s.logger.Info("api_key_revoked", slog.String("key_id", keyID), slog.Int64("user_id", userID))
	return nil
}

// Rotate revokes a key and issues a replacement with the same scopes and name.
func (s *APIKeyService) Rotate(ctx context.Context, userID int64, keyID string) (*model.APIKey, string, error) {
	old, err := s.store.GetAPIKeyByID(ctx, keyID)
	if err != nil || old.UserID != userID || old.IsRevoked() {
		if err == nil || errors.Is(err, repository.ErrAPIKeyNotFound) {
			return nil, "", ErrAPIKeyNotFound
		}
		return nil, "", fmt.Errorf("failed to get API key: %w", err)
	}

	replacement, plaintext, err := s.issueKey(userID, old.Scopes, old.Name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue API key: %w", err)
	}
	replacement.RateLimitTier = old.RateLimitTier

	if err := s.store.RotateAPIKey(ctx, keyID, replacement); err != nil {
		if errors.Is(err, repository.ErrAPIKeyNotFound) {
			return nil, "", ErrAPIKeyNotFound
		}
		return nil, "", fmt.Errorf("failed to rotate API key: %w", err)
	}
	s.invalidate(ctx, keyID)

	s.logger.Info("api_key_rotated", slog.String("old_key_id", keyID), slog.String("key_id", replacement.ID))
	return replacement, plaintext, nil
}

func validateScopes(scopes []string) error {
	for _, scope := range scopes {
		if !slices.Contains(model.ValidScopes, scope) {
			return fmt.Errorf("%w: %s", ErrInvalidScope, scope)
		}
	}
	return nil
}
