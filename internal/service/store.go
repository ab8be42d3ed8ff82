// Package service implements recipe, relation and shopping list business logic
// on top of the entity store.
package service

import (
	"context"

	"github.com/foodgram/foodgram/internal/model"
)

// UserStore persists users.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	CreateUserWithAPIKey(ctx context.Context, user *model.User, key *model.APIKey) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUsersByIDs(ctx context.Context, ids []int64) (map[int64]*model.User, error)
	ListUsers(ctx context.Context, cursor string, limit int) ([]*model.User, string, error)
	ListFollowedAuthors(ctx context.Context, followerID int64, cursor string, limit int) ([]*model.User, string, error)
	CountRecipesByAuthors(ctx context.Context, authorIDs []int64) (map[int64]int64, error)
	DeleteUser(ctx context.Context, id int64) error
}

// ReferenceStore persists tags and ingredients.
type ReferenceStore interface {
	CreateTag(ctx context.Context, tag *model.Tag) error
	GetTagByID(ctx context.Context, id int64) (*model.Tag, error)
	ListTags(ctx context.Context) ([]*model.Tag, error)
	CreateIngredient(ctx context.Context, ing *model.Ingredient) error
	GetIngredientByID(ctx context.Context, id int64) (*model.Ingredient, error)
	ListIngredients(ctx context.Context, namePrefix string) ([]*model.Ingredient, error)
}

// RecipeStore persists recipes with their tags and ingredient lines.
type RecipeStore interface {
	CreateRecipe(ctx context.Context, recipe *model.Recipe, comp model.Composition) error
	UpdateRecipe(ctx context.Context, recipe *model.Recipe, comp model.Composition) error
	DeleteRecipe(ctx context.Context, id int64) error
	GetRecipeByID(ctx context.Context, id int64) (*model.Recipe, error)
	ListRecipes(ctx context.Context, filter model.RecipeFilter, cursor string, limit int) ([]*model.Recipe, string, error)
	LoadRecipeTags(ctx context.Context, recipeIDs []int64) (map[int64][]model.Tag, error)
	LoadRecipeIngredients(ctx context.Context, recipeIDs []int64) (map[int64][]model.RecipeIngredient, error)
	CountFavorites(ctx context.Context, recipeIDs []int64) (map[int64]int64, error)
}

// RelationStore persists favorite, cart and follow records.
type RelationStore interface {
	AddRelation(ctx context.Context, kind model.RelationKind, userID, targetID int64) error
	RemoveRelation(ctx context.Context, kind model.RelationKind, userID, targetID int64) error
	RelationExists(ctx context.Context, kind model.RelationKind, userID, targetID int64) (bool, error)
	RelatedAmong(ctx context.Context, kind model.RelationKind, userID int64, targetIDs []int64) (map[int64]bool, error)
}

// ShoppingStore reads the ingredient lines behind a user's cart.
type ShoppingStore interface {
	ListCartLines(ctx context.Context, userID int64) ([]model.CartLine, error)
}

// APIKeyStore persists API keys.
type APIKeyStore interface {
	CreateAPIKey(ctx context.Context, key *model.APIKey) error
	GetAPIKeyByID(ctx context.Context, id string) (*model.APIKey, error)
	ListAPIKeysByUserID(ctx context.Context, userID int64) ([]*model.APIKey, error)
	RevokeAPIKey(ctx context.Context, id string, userID int64) error
	RotateAPIKey(ctx context.Context, oldID string, replacement *model.APIKey) error
}

// Store is the full entity store. Both the PostgreSQL repository and the
// in-memory store implement it.
type Store interface {
	UserStore
	ReferenceStore
	RecipeStore
	RelationStore
	ShoppingStore
	APIKeyStore
}
