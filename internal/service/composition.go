package service

import "github.com/foodgram/foodgram/internal/model"

// ValidateComposition checks the tag and ingredient lists of a recipe write.
// Ingredient lines are checked in order, so the first bad line decides the
// error; tags are checked after all lines pass. On success the composition
// is returned unchanged.
func ValidateComposition(c model.Composition) (model.Composition, error) {
	seen := make(map[int64]struct{}, len(c.Ingredients))
	for _, line := range c.Ingredients {
		if _, dup := seen[line.IngredientID]; dup {
			return model.Composition{}, &ValidationError{Field: "ingredients", Err: ErrDuplicateIngredient}
		}
		seen[line.IngredientID] = struct{}{}

		if line.Amount < model.MinAmount || line.Amount > model.MaxAmount {
			return model.Composition{}, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
		}
	}

	tags := make(map[int64]struct{}, len(c.Tags))
	for _, id := range c.Tags {
		if _, dup := tags[id]; dup {
			return model.Composition{}, &ValidationError{Field: "tags", Err: ErrDuplicateTag}
		}
		tags[id] = struct{}{}
	}

	return c, nil
}

// validateCookingTime rejects times outside the stored integer range.
func validateCookingTime(minutes int) error {
	if minutes < model.MinCookingTime || minutes > model.MaxCookingTime {
		return &ValidationError{Field: "cooking_time", Err: ErrInvalidCookingTime}
	}
	return nil
}

// requireComplete rejects compositions without ingredients or tags.
// A nil list on update means "unchanged" and is not checked here.
func requireComplete(c model.Composition) error {
	if c.Ingredients != nil && len(c.Ingredients) == 0 {
		return &ValidationError{Field: "ingredients", Err: ErrEmptyIngredients}
	}
	if c.Tags != nil && len(c.Tags) == 0 {
		return &ValidationError{Field: "tags", Err: ErrEmptyTags}
	}
	return nil
}
