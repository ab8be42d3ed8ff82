package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/foodgram/foodgram/internal/memstore"
	"github.com/foodgram/foodgram/internal/metrics"
	"github.com/foodgram/foodgram/internal/model"
)

type fixture struct {
	store    *memstore.Store
	recorder *metrics.InMemoryRecorder
	logger   *slog.Logger

	recipes   *RecipeService
	relations *RelationService
	shopping  *ShoppingService

	alice, bob               *model.User
	flour, salt, eggs        *model.Ingredient
	breakfast, lunch, dinner *model.Tag
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeIssuer builds keys without hashing so tests stay fast.
func fakeIssuer(userID int64, scopes []string, name string) (*model.APIKey, string, error) {
	if len(scopes) == 0 {
		scopes = []string{model.ScopeRead, model.ScopeWrite}
	}
	id := ulid.Make().String()
	return &model.APIKey{
		ID:            id,
		UserID:        userID,
		KeyHash:       "hash-" + id,
		KeyPrefix:     "abc123",
		Scopes:        scopes,
		RateLimitTier: model.TierFree,
		Name:          name,
		CreatedAt:     time.Now().UTC(),
	}, "fg_test_abc123_" + id, nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memstore.New()
	recorder := metrics.NewInMemory()
	logger := discardLogger()

	f := &fixture{
		store:     store,
		recorder:  recorder,
		logger:    logger,
		recipes:   NewRecipeService(store, logger, recorder),
		relations: NewRelationService(store, logger, recorder),
		shopping:  NewShoppingService(store, logger, recorder),
	}

	ctx := context.Background()
	f.alice = f.user(t, "alice")
	f.bob = f.user(t, "bob")

	f.flour = &model.Ingredient{Name: "flour", MeasurementUnit: "g"}
	f.salt = &model.Ingredient{Name: "salt", MeasurementUnit: "g"}
	f.eggs = &model.Ingredient{Name: "eggs", MeasurementUnit: "pcs"}
	for _, ing := range []*model.Ingredient{f.flour, f.salt, f.eggs} {
		if err := store.CreateIngredient(ctx, ing); err != nil {
			t.Fatalf("seed ingredient: %v", err)
		}
	}

	f.breakfast = &model.Tag{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"}
	f.lunch = &model.Tag{Name: "Lunch", Color: "#49B64E", Slug: "lunch"}
	f.dinner = &model.Tag{Name: "Dinner", Color: "#8775D2", Slug: "dinner"}
	for _, tag := range []*model.Tag{f.breakfast, f.lunch, f.dinner} {
		if err := store.CreateTag(ctx, tag); err != nil {
			t.Fatalf("seed tag: %v", err)
		}
	}

	return f
}

func (f *fixture) user(t *testing.T, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username, Email: username + "@example.com", FirstName: username}
	if err := f.store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func viewerOf(u *model.User) model.Viewer {
	return model.Viewer{UserID: u.ID}
}

func (f *fixture) recipe(t *testing.T, author *model.User, name string, lines ...model.IngredientLine) *model.RecipeDetail {
	t.Helper()
	if len(lines) == 0 {
		lines = []model.IngredientLine{{IngredientID: f.salt.ID, Amount: 1}}
	}
	detail, err := f.recipes.Create(context.Background(), viewerOf(author), CreateRecipeInput{
		Name:        name,
		Text:        "Mix and cook.",
		Image:       "recipes/images/" + name + ".png",
		CookingTime: 10,
		Tags:        []int64{f.lunch.ID},
		Ingredients: lines,
	})
	if err != nil {
		t.Fatalf("create recipe %q: %v", name, err)
	}
	return detail
}

func line(ing *model.Ingredient, amount int) model.IngredientLine {
	return model.IngredientLine{IngredientID: ing.ID, Amount: amount}
}
