package dto

import (
	"time"

	"github.com/foodgram/foodgram/internal/model"
	"github.com/foodgram/foodgram/internal/service"
)

// IngredientLineRequest is one ingredient of a recipe write.
type IngredientLineRequest struct {
	ID     int64 `json:"id" validate:"required"`
	Amount int   `json:"amount"`
}

// CreateRecipeRequest represents the request body for creating a recipe.
// Amounts, cooking time and list contents are checked by the recipe service
// so they report their own error codes.
type CreateRecipeRequest struct {
	Name        string                  `json:"name" validate:"required,max=200"`
	Text        string                  `json:"text" validate:"required"`
	Image       string                  `json:"image" validate:"required,max=512"`
	CookingTime int                     `json:"cooking_time"`
	Tags        []int64                 `json:"tags"`
	Ingredients []IngredientLineRequest `json:"ingredients" validate:"dive"`
}

// UpdateRecipeRequest represents the request body for updating a recipe.
// Absent fields are left unchanged; a present list replaces the stored one.
type UpdateRecipeRequest struct {
	Name        *string                 `json:"name" validate:"omitnil,min=1,max=200"`
	Text        *string                 `json:"text" validate:"omitnil,min=1"`
	Image       *string                 `json:"image" validate:"omitnil,min=1,max=512"`
	CookingTime *int                    `json:"cooking_time"`
	Tags        []int64                 `json:"tags"`
	Ingredients []IngredientLineRequest `json:"ingredients" validate:"omitempty,dive"`
}

// RecipeIngredientResponse is an ingredient line of a recipe.
type RecipeIngredientResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeResponse represents a recipe as seen by the requesting user.
type RecipeResponse struct {
	ID               int64                      `json:"id"`
	Tags             []TagResponse              `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
	PubDate          time.Time                  `json:"pub_date"`
	FavoriteCount    int64                      `json:"favorite_count"`
}

// RecipeSummaryResponse is the short form returned by favorite and cart
// toggles and subscription previews.
type RecipeSummaryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

func toLines(in []IngredientLineRequest) []model.IngredientLine {
	if in == nil {
		return nil
	}
	return mapSlice(in, func(l IngredientLineRequest) model.IngredientLine {
		return model.IngredientLine{IngredientID: l.ID, Amount: l.Amount}
	})
}

// ToCreateInput converts the request to service input.
func (r CreateRecipeRequest) ToCreateInput() service.CreateRecipeInput {
	return service.CreateRecipeInput{
		Name:        r.Name,
		Text:        r.Text,
		Image:       r.Image,
		CookingTime: r.CookingTime,
		Tags:        r.Tags,
		Ingredients: toLines(r.Ingredients),
	}
}

// ToUpdateInput converts the request to service input.
func (r UpdateRecipeRequest) ToUpdateInput() service.UpdateRecipeInput {
	return service.UpdateRecipeInput{
		Name:        r.Name,
		Text:        r.Text,
		Image:       r.Image,
		CookingTime: r.CookingTime,
		Tags:        r.Tags,
		Ingredients: toLines(r.Ingredients),
	}
}

// ToRecipeResponse converts a RecipeDetail model to RecipeResponse DTO.
func ToRecipeResponse(d *model.RecipeDetail) *RecipeResponse {
	return &RecipeResponse{
		ID:     d.ID,
		Tags:   mapSlice(d.Tags, ToTagResponse),
		Author: ToUserResponse(d.Author),
		Ingredients: mapSlice(d.Ingredients, func(ri model.RecipeIngredient) RecipeIngredientResponse {
			return RecipeIngredientResponse{
				ID:              ri.ID,
				Name:            ri.Name,
				MeasurementUnit: ri.MeasurementUnit,
				Amount:          ri.Amount,
			}
		}),
		IsFavorited:      d.IsFavorited,
		IsInShoppingCart: d.IsInShoppingCart,
		Name:             d.Name,
		Image:            d.Image,
		Text:             d.Text,
		CookingTime:      d.CookingTime,
		PubDate:          d.PubDate,
		FavoriteCount:    d.FavoriteCount,
	}
}

// ToRecipeListResponse converts a page of recipes.
func ToRecipeListResponse(details []*model.RecipeDetail, nextCursor string) *ListResponse[RecipeResponse] {
	return NewListResponse(mapSlice(details, func(d *model.RecipeDetail) RecipeResponse {
		return *ToRecipeResponse(d)
	}), nextCursor)
}

// ToRecipeSummaryResponse converts a RecipeSummary model to its DTO.
func ToRecipeSummaryResponse(s model.RecipeSummary) RecipeSummaryResponse {
	return RecipeSummaryResponse{ID: s.ID, Name: s.Name, Image: s.Image, CookingTime: s.CookingTime}
}
