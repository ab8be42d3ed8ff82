package dto

import "github.com/foodgram/foodgram/internal/model"

// CreateTagRequest represents the request body for creating a tag.
type CreateTagRequest struct {
	Name  string `json:"name" validate:"required,max=256"`
	Color string `json:"color" validate:"required,hexcolor6"`
	Slug  string `json:"slug" validate:"required,max=256,slug"`
}

// TagResponse represents a tag in API responses.
type TagResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

// CreateIngredientRequest represents the request body for creating an ingredient.
type CreateIngredientRequest struct {
	Name            string `json:"name" validate:"required,max=256"`
	MeasurementUnit string `json:"measurement_unit" validate:"required,max=50"`
}

// IngredientResponse represents an ingredient in API responses.
type IngredientResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// ToTag converts the request to a Tag model.
func (r CreateTagRequest) ToTag() *model.Tag {
	return &model.Tag{Name: r.Name, Color: r.Color, Slug: r.Slug}
}

// ToIngredient converts the request to an Ingredient model.
func (r CreateIngredientRequest) ToIngredient() *model.Ingredient {
	return &model.Ingredient{Name: r.Name, MeasurementUnit: r.MeasurementUnit}
}

// ToTagResponse converts a Tag model to TagResponse DTO.
func ToTagResponse(tag model.Tag) TagResponse {
	return TagResponse{ID: tag.ID, Name: tag.Name, Color: tag.Color, Slug: tag.Slug}
}

// ToTagListResponse converts tags to responses. Tags are not paginated.
func ToTagListResponse(tags []*model.Tag) []TagResponse {
	return mapSlice(tags, func(t *model.Tag) TagResponse { return ToTagResponse(*t) })
}

// ToIngredientResponse converts an Ingredient model to IngredientResponse DTO.
func ToIngredientResponse(ing model.Ingredient) IngredientResponse {
	return IngredientResponse{ID: ing.ID, Name: ing.Name, MeasurementUnit: ing.MeasurementUnit}
}

// ToIngredientListResponse converts ingredients to responses.
func ToIngredientListResponse(ings []*model.Ingredient) []IngredientResponse {
	return mapSlice(ings, func(i *model.Ingredient) IngredientResponse { return ToIngredientResponse(*i) })
}
