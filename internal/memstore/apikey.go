package memstore

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/foodgram/foodgram/internal/model"
	"github.com/foodgram/foodgram/internal/repository"
)

// CreateAPIKey stores a copy of key for an existing user.
func (s *Store) CreateAPIKey(ctx context.Context, key *model.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createAPIKeyLocked(key)
}

func (s *Store) createAPIKeyLocked(key *model.APIKey) error {
	if _, ok := s.users[key.UserID]; !ok {
		return repository.ErrUserNotFound
	}
	stored := *key
	stored.Scopes = slices.Clone(key.Scopes)
	s.apiKeys[key.ID] = &stored
	return nil
}

// GetAPIKeyByID returns a copy of the key, revoked or not.
func (s *Store) GetAPIKeyByID(ctx context.Context, id string) (*model.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.apiKeys[id]
	if !ok {
		return nil, repository.ErrAPIKeyNotFound
	}
	out := *key
	return &out, nil
}

// GetAPIKeysByPrefix returns active keys with the given prefix.
func (s *Store) GetAPIKeysByPrefix(ctx context.Context, prefix string) ([]*model.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keysWhere(func(k *model.APIKey) bool {
		return k.KeyPrefix == prefix && !k.IsRevoked()
	}), nil
}

// ListAPIKeysByUserID returns a user's keys, newest first.
func (s *Store) ListAPIKeysByUserID(ctx context.Context, userID int64) ([]*model.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keysWhere(func(k *model.APIKey) bool { return k.UserID == userID }), nil
}

func (s *Store) keysWhere(keep func(*model.APIKey) bool) []*model.APIKey {
	out := []*model.APIKey{}
	for _, k := range s.apiKeys {
		if keep(k) {
			cp := *k
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *model.APIKey) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
	})
	return out
}

// RevokeAPIKey marks a live key owned by userID as revoked.
func (s *Store) RevokeAPIKey(ctx context.Context, id string, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revokeLocked(id, userID)
}

func (s *Store) revokeLocked(id string, userID int64) error {
	key, ok := s.apiKeys[id]
	if !ok || key.UserID != userID || key.IsRevoked() {
		return repository.ErrAPIKeyNotFound
	}
	now := time.Now()
	key.RevokedAt = &now
	return nil
}

// RotateAPIKey revokes oldID and stores its replacement under one lock.
func (s *Store) RotateAPIKey(ctx context.Context, oldID string, replacement *model.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.revokeLocked(oldID, replacement.UserID); err != nil {
		return err
	}
	return s.createAPIKeyLocked(replacement)
}

// UpdateAPIKeyLastUsed stamps the key as used now. Unknown IDs are ignored.
func (s *Store) UpdateAPIKeyLastUsed(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key, ok := s.apiKeys[id]; ok {
		now := time.Now()
		key.LastUsedAt = &now
	}
	return nil
}
