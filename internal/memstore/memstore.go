// Package memstore is an in-memory entity store with the same unique keys,
// cascades and errors as the PostgreSQL repository. Unit tests run the
// services and handlers against it.
package memstore

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/foodgram/foodgram/internal/model"
	"github.com/foodgram/foodgram/internal/repository"
)

type pair struct {
	userID   int64
	targetID int64
}

type recipeRow struct {
	recipe model.Recipe
	tags   []int64
	lines  []model.IngredientLine
}

// Store is a mutex guarded in-memory implementation of service.Store.
type Store struct {
	mu sync.RWMutex

	nextID      int64
	lastPubDate time.Time

	users       map[int64]*model.User
	tags        map[int64]*model.Tag
	ingredients map[int64]*model.Ingredient
	recipes     map[int64]*recipeRow
	relations   map[model.RelationKind]map[pair]time.Time
	apiKeys     map[string]*model.APIKey
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:       make(map[int64]*model.User),
		tags:        make(map[int64]*model.Tag),
		ingredients: make(map[int64]*model.Ingredient),
		recipes:     make(map[int64]*recipeRow),
		relations: map[model.RelationKind]map[pair]time.Time{
			model.RelationFavorite: {},
			model.RelationCart:     {},
			model.RelationFollow:   {},
		},
		apiKeys: make(map[string]*model.APIKey),
	}
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

func (s *Store) newID() int64 {
	s.nextID++
	return s.nextID
}

// pubDate returns a strictly increasing timestamp so ordering by pub_date
// is total even for recipes created in the same instant.
func (s *Store) pubDate() time.Time {
	now := time.Now().UTC()
	if !now.After(s.lastPubDate) {
		now = s.lastPubDate.Add(time.Microsecond)
	}
	s.lastPubDate = now
	return now
}

// page slices items by an offset cursor.
func page[T any](items []T, cursor string, limit int) ([]T, string, error) {
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return nil, "", repository.ErrInvalidCursor
		}
		offset = n
	}
	if offset >= len(items) {
		return []T{}, "", nil
	}

	if limit >= len(items)-offset {
		return items[offset:], "", nil
	}
	end := offset + limit
	return items[offset:end], strconv.Itoa(end), nil
}

// ============================================================================
// Users
// ============================================================================

// CreateUser assigns the next ID and stores the user.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createUserLocked(user)
}

func (s *Store) createUserLocked(user *model.User) error {
	for _, u := range s.users {
		if u.Username == user.Username {
			return repository.ErrUsernameExists
		}
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}

	user.ID = s.newID()
	user.CreatedAt = time.Now().UTC()
	stored := *user
	s.users[user.ID] = &stored
	return nil
}

// CreateUserWithAPIKey stores a user and their first key together.
func (s *Store) CreateUserWithAPIKey(ctx context.Context, user *model.User, key *model.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.createUserLocked(user); err != nil {
		return err
	}
	key.UserID = user.ID
	stored := *key
	s.apiKeys[key.ID] = &stored
	return nil
}

// GetUserByID returns a copy of the user.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

// GetUsersByIDs returns the users found among ids, keyed by ID.
func (s *Store) GetUsersByIDs(ctx context.Context, ids []int64) (map[int64]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64]*model.User, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			cp := *u
			out[id] = &cp
		}
	}
	return out, nil
}

// ListUsers pages users by username.
func (s *Store) ListUsers(ctx context.Context, cursor string, limit int) ([]*model.User, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return page(s.sortedUsers(func(*model.User) bool { return true }), cursor, limit)
}

// ListFollowedAuthors pages the authors followerID subscribes to.
func (s *Store) ListFollowedAuthors(ctx context.Context, followerID int64, cursor string, limit int) ([]*model.User, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	follows := s.relations[model.RelationFollow]
	return page(s.sortedUsers(func(u *model.User) bool {
		_, ok := follows[pair{followerID, u.ID}]
		return ok
	}), cursor, limit)
}

func (s *Store) sortedUsers(keep func(*model.User) bool) []*model.User {
	var out []*model.User
	for _, u := range s.users {
		if keep(u) {
			cp := *u
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *model.User) int {
		return cmp.Or(cmp.Compare(a.Username, b.Username), cmp.Compare(a.ID, b.ID))
	})
	return out
}

// CountRecipesByAuthors counts recipes per author. Authors without recipes are absent.
func (s *Store) CountRecipesByAuthors(ctx context.Context, authorIDs []int64) (map[int64]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64]int64)
	for _, row := range s.recipes {
		if slices.Contains(authorIDs, row.recipe.AuthorID) {
			out[row.recipe.AuthorID]++
		}
	}
	return out, nil
}

// DeleteUser removes a user with their recipes, relations and keys.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(s.users, id)

	for rid, row := range s.recipes {
		if row.recipe.AuthorID == id {
			s.deleteRecipeLocked(rid)
		}
	}
	for kind, rel := range s.relations {
		for p := range rel {
			if p.userID == id || (kind == model.RelationFollow && p.targetID == id) {
				delete(rel, p)
			}
		}
	}
	for kid, key := range s.apiKeys {
		if key.UserID == id {
			delete(s.apiKeys, kid)
		}
	}
	return nil
}
