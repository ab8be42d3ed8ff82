package service

import (
	"errors"
	"fmt"
)

// Service errors.
var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrTagNotFound        = errors.New("tag not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrAPIKeyNotFound     = errors.New("API key not found")
	ErrUnknownReference   = errors.New("unknown tag or ingredient")
	ErrSelfFollow         = errors.New("cannot subscribe to yourself")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrTagExists          = errors.New("tag already exists")
	ErrIngredientExists   = errors.New("ingredient already exists")
	ErrInvalidCursor      = errors.New("invalid cursor")
	ErrInvalidScope       = errors.New("invalid scope")
)

// Composition validation errors. They are always wrapped in a ValidationError.
var (
	ErrDuplicateIngredient = errors.New("ingredients must not repeat")
	ErrInvalidAmount       = errors.New("amount must be between 1 and 2147483647")
	ErrDuplicateTag        = errors.New("tags must not repeat")
	ErrInvalidCookingTime  = errors.New("cooking time must be between 1 and 2147483647 minutes")
	ErrEmptyIngredients    = errors.New("at least one ingredient is required")
	ErrEmptyTags           = errors.New("at least one tag is required")
)

// ValidationError reports which input field failed and why.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Error codes for validation failures, shared by metrics and HTTP responses.
const (
	CodeDuplicateIngredient = "DUPLICATE_INGREDIENT"
	CodeInvalidAmount       = "INVALID_AMOUNT"
	CodeDuplicateTag        = "DUPLICATE_TAG"
	CodeInvalidCookingTime  = "INVALID_COOKING_TIME"
	CodeValidation          = "VALIDATION_ERROR"
)

// ValidationCode maps a validation error to its code.
func ValidationCode(err error) string {
	switch {
	case errors.Is(err, ErrDuplicateIngredient):
		return CodeDuplicateIngredient
	case errors.Is(err, ErrInvalidAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrDuplicateTag):
		return CodeDuplicateTag
	case errors.Is(err, ErrInvalidCookingTime):
		return CodeInvalidCookingTime
	default:
		return CodeValidation
	}
}
