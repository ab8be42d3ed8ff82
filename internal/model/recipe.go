package model

import (
	"math"
	"time"
)

// Bounds for recipe numbers. Both columns are Postgres integers.
const (
	MinCookingTime = 1
	MaxCookingTime = math.MaxInt32
	MinAmount      = 1
	MaxAmount      = math.MaxInt32
)

// Recipe is the stored recipe row. PubDate is set once at creation.
type Recipe struct {
	ID          int64     `json:"id"`
	AuthorID    int64     `json:"author_id"`
	Name        string    `json:"name"`
	Text        string    `json:"text"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
	PubDate     time.Time `json:"pub_date"`
}

// Summary returns the short projection used by favorite and cart responses.
func (r *Recipe) Summary() RecipeSummary {
	return RecipeSummary{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

// RecipeSummary is the short projection of a recipe.
type RecipeSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// IngredientLine binds an ingredient to a recipe with an amount.
type IngredientLine struct {
	IngredientID int64 `json:"id"`
	Amount       int   `json:"amount"`
}

// Composition is the tag and ingredient part of a recipe write.
type Composition struct {
	Tags        []int64
	Ingredients []IngredientLine
}

// RecipeIngredient is an ingredient line joined with its ingredient.
type RecipeIngredient struct {
	Ingredient
	Amount int `json:"amount"`
}

// RecipeDetail is a recipe with its relations, as seen by a viewer.
type RecipeDetail struct {
	Recipe
	Author           UserProfile        `json:"author"`
	Tags             []Tag              `json:"tags"`
	Ingredients      []RecipeIngredient `json:"ingredients"`
	IsFavorited      bool               `json:"is_favorited"`
	IsInShoppingCart bool               `json:"is_in_shopping_cart"`
	FavoriteCount    int64              `json:"favorite_count"`
}

// RecipeFilter selects recipes for listing. Each non-zero field is a named
// predicate; Favorited and InShoppingCart are ignored for anonymous viewers.
type RecipeFilter struct {
	Tags           []string
	AuthorID       int64
	Favorited      bool
	InShoppingCart bool
	Viewer         Viewer
}

// Filter names accepted by RecipeFilter.
const (
	FilterTags           = "tags"
	FilterAuthor         = "author"
	FilterFavorited      = "is_favorited"
	FilterInShoppingCart = "is_in_shopping_cart"
)

// ActiveFilters returns the names of the predicates this filter applies,
// in a fixed order.
func (f RecipeFilter) ActiveFilters() []string {
	var names []string
	if len(f.Tags) > 0 {
		names = append(names, FilterTags)
	}
	if f.AuthorID != 0 {
		names = append(names, FilterAuthor)
	}
	if f.Favorited && !f.Viewer.IsAnonymous() {
		names = append(names, FilterFavorited)
	}
	if f.InShoppingCart && !f.Viewer.IsAnonymous() {
		names = append(names, FilterInShoppingCart)
	}
	return names
}
