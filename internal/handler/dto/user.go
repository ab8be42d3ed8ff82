package dto

import (
	"github.com/foodgram/foodgram/internal/model"
	"github.com/foodgram/foodgram/internal/service"
)

// SignupRequest represents the request body for creating an account.
type SignupRequest struct {
	Username  string   `json:"username" validate:"required,max=150,username"`
	Email     string   `json:"email" validate:"required,max=254,email"`
	FirstName string   `json:"first_name" validate:"required,max=150"`
	LastName  string   `json:"last_name" validate:"required,max=150"`
	Scopes    []string `json:"scopes,omitempty" validate:"omitempty,dive,oneof=read write"`
}

// UserResponse represents a user profile in API responses.
type UserResponse struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// SubscriptionResponse is a followed author with a preview of their recipes.
type SubscriptionResponse struct {
	UserResponse
	Recipes      []RecipeSummaryResponse `json:"recipes"`
	RecipesCount int64                   `json:"recipes_count"`
}

// SignupResponse returns the new account and its first API key.
type SignupResponse struct {
	User   UserResponse           `json:"user"`
	APIKey APIKeyCreatedResponse `json:"api_key"`
}

// ToRegisterInput converts the request to service input.
func (r SignupRequest) ToRegisterInput() service.RegisterInput {
	return service.RegisterInput{
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Scopes:    r.Scopes,
	}
}

// ToUserResponse converts a UserProfile model to UserResponse DTO.
func ToUserResponse(p model.UserProfile) UserResponse {
	return UserResponse{
		ID:           p.ID,
		Username:     p.Username,
		Email:        p.Email,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		IsSubscribed: p.IsSubscribed,
	}
}

// ToUserListResponse converts a page of profiles.
func ToUserListResponse(profiles []model.UserProfile, nextCursor string) *ListResponse[UserResponse] {
	return NewListResponse(mapSlice(profiles, ToUserResponse), nextCursor)
}

// ToSubscriptionResponse converts a Subscription model to SubscriptionResponse DTO.
func ToSubscriptionResponse(s model.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		UserResponse: ToUserResponse(s.UserProfile),
		Recipes:      mapSlice(s.Recipes, ToRecipeSummaryResponse),
		RecipesCount: s.RecipesCount,
	}
}

// ToSubscriptionListResponse converts a page of subscriptions.
func ToSubscriptionListResponse(subs []model.Subscription, nextCursor string) *ListResponse[SubscriptionResponse] {
	return NewListResponse(mapSlice(subs, ToSubscriptionResponse), nextCursor)
}
