// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/foodgram/foodgram/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// dbLockID keys the advisory lock that serializes packages sharing one database.
const dbLockID int64 = 0x466f6f64

// AcquireDBLock blocks until no other test package holds the database.
// The returned func releases the lock and its connection.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", dbLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	return func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", dbLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}, nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

var seq atomic.Int64

func next() int64 { return seq.Add(1) }

// NewTestUser returns an unsaved user. The email is unique per call.
func NewTestUser(t testing.TB, username string) *model.User {
	t.Helper()
	return &model.User{
		Username:  username,
		Email:     fmt.Sprintf("%s-%d@example.com", username, next()),
		FirstName: username,
		LastName:  "Tester",
	}
}

// NewTestTag returns an unsaved tag whose slug is the lowercased name.
func NewTestTag(t testing.TB, name, color string) *model.Tag {
	t.Helper()
	return &model.Tag{Name: name, Color: color, Slug: strings.ToLower(name)}
}

// NewTestIngredient returns an unsaved ingredient.
func NewTestIngredient(t testing.TB, name, unit string) *model.Ingredient {
	t.Helper()
	return &model.Ingredient{Name: name, MeasurementUnit: unit}
}

// NewTestRecipe returns an unsaved recipe owned by authorID.
func NewTestRecipe(t testing.TB, authorID int64, name string) *model.Recipe {
	t.Helper()
	return &model.Recipe{
		AuthorID:    authorID,
		Name:        name,
		Text:        "Mix everything and cook.",
		Image:       "recipes/images/" + strings.ReplaceAll(name, " ", "-") + ".png",
		CookingTime: 30,
	}
}

// NewTestAPIKey returns an unsaved read/write key. Its hash never verifies.
func NewTestAPIKey(t testing.TB, userID int64) *model.APIKey {
	t.Helper()
	return &model.APIKey{
		ID:            ulid.Make().String(),
		UserID:        userID,
		KeyHash:       fmt.Sprintf("hash-%d", next()),
		KeyPrefix:     "fg_test_abc123",
		Scopes:        []string{model.ScopeRead, model.ScopeWrite},
		RateLimitTier: model.TierFree,
		Name:          "Test Key",
		CreatedAt:     time.Now().UTC(),
	}
}
