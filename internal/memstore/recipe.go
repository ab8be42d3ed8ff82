package memstore

import (
	"cmp"
	"context"
	"slices"

	"github.com/foodgram/foodgram/internal/model"
	"github.com/foodgram/foodgram/internal/repository"
)

// CreateRecipe stores a recipe with its tags and ingredient lines.
func (s *Store) CreateRecipe(ctx context.Context, recipe *model.Recipe, comp model.Composition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[recipe.AuthorID]; !ok {
		return repository.ErrUserNotFound
	}
	if err := s.checkComposition(comp); err != nil {
		return err
	}

	recipe.ID = s.newID()
	recipe.PubDate = s.pubDate()
	s.recipes[recipe.ID] = &recipeRow{
		recipe: *recipe,
		tags:   slices.Clone(comp.Tags),
		lines:  slices.Clone(comp.Ingredients),
	}
	return nil
}

// UpdateRecipe overwrites a recipe. Nil composition lists keep the current ones.
func (s *Store) UpdateRecipe(ctx context.Context, recipe *model.Recipe, comp model.Composition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.recipes[recipe.ID]
	if !ok {
		return repository.ErrRecipeNotFound
	}
	if err := s.checkComposition(comp); err != nil {
		return err
	}

	row.recipe.Name = recipe.Name
	row.recipe.Text = recipe.Text
	row.recipe.Image = recipe.Image
	row.recipe.CookingTime = recipe.CookingTime
	if comp.Tags != nil {
		row.tags = slices.Clone(comp.Tags)
	}
	if comp.Ingredients != nil {
		row.lines = slices.Clone(comp.Ingredients)
	}
	return nil
}

// checkComposition enforces the recipe_tags and recipe_ingredients keys.
func (s *Store) checkComposition(comp model.Composition) error {
	seenTags := make(map[int64]bool, len(comp.Tags))
	for _, id := range comp.Tags {
		if seenTags[id] {
			return repository.ErrDuplicateLine
		}
		seenTags[id] = true
		if _, ok := s.tags[id]; !ok {
			return repository.ErrReferenceNotFound
		}
	}

	seenLines := make(map[int64]bool, len(comp.Ingredients))
	for _, line := range comp.Ingredients {
		if seenLines[line.IngredientID] {
			return repository.ErrDuplicateLine
		}
		seenLines[line.IngredientID] = true
		if _, ok := s.ingredients[line.IngredientID]; !ok {
			return repository.ErrReferenceNotFound
		}
	}
	return nil
}

// DeleteRecipe removes a recipe and any favorites or cart lines for it.
func (s *Store) DeleteRecipe(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recipes[id]; !ok {
		return repository.ErrRecipeNotFound
	}
	s.deleteRecipeLocked(id)
	return nil
}

func (s *Store) deleteRecipeLocked(id int64) {
	delete(s.recipes, id)
	for _, kind := range []model.RelationKind{model.RelationFavorite, model.RelationCart} {
		for p := range s.relations[kind] {
			if p.targetID == id {
				delete(s.relations[kind], p)
			}
		}
	}
}

// GetRecipeByID returns a copy of the recipe.
func (s *Store) GetRecipeByID(ctx context.Context, id int64) (*model.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.recipes[id]
	if !ok {
		return nil, repository.ErrRecipeNotFound
	}
	out := row.recipe
	return &out, nil
}

// ListRecipes pages recipes matching filter, newest first.
func (s *Store) ListRecipes(ctx context.Context, filter model.RecipeFilter, cursor string, limit int) ([]*model.Recipe, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := filter.ActiveFilters()
	var out []*model.Recipe
	for _, row := range s.recipes {
		if s.matches(row, filter, active) {
			cp := row.recipe
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *model.Recipe) int {
		return cmp.Or(b.PubDate.Compare(a.PubDate), cmp.Compare(b.ID, a.ID))
	})
	return page(out, cursor, limit)
}

func (s *Store) matches(row *recipeRow, filter model.RecipeFilter, active []string) bool {
	viewer := filter.Viewer.UserID
	for _, name := range active {
		switch name {
		case model.FilterTags:
			if !slices.ContainsFunc(row.tags, func(id int64) bool {
				t, ok := s.tags[id]
				return ok && slices.Contains(filter.Tags, t.Slug)
			}) {
				return false
			}
		case model.FilterAuthor:
			if row.recipe.AuthorID != filter.AuthorID {
				return false
			}
		case model.FilterFavorited:
			if _, ok := s.relations[model.RelationFavorite][pair{viewer, row.recipe.ID}]; !ok {
				return false
			}
		case model.FilterInShoppingCart:
			if _, ok := s.relations[model.RelationCart][pair{viewer, row.recipe.ID}]; !ok {
				return false
			}
		}
	}
	return true
}

// LoadRecipeTags returns tags per recipe.
func (s *Store) LoadRecipeTags(ctx context.Context, recipeIDs []int64) (map[int64][]model.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64][]model.Tag, len(recipeIDs))
	for _, id := range recipeIDs {
		row, ok := s.recipes[id]
		if !ok {
			continue
		}
		var tags []model.Tag
		for _, tagID := range row.tags {
			if t, ok := s.tags[tagID]; ok {
				tags = append(tags, *t)
			}
		}
		slices.SortFunc(tags, func(a, b model.Tag) int {
			return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
		})
		if len(tags) > 0 {
			out[id] = tags
		}
	}
	return out, nil
}

// LoadRecipeIngredients returns ingredient lines per recipe with names and units.
func (s *Store) LoadRecipeIngredients(ctx context.Context, recipeIDs []int64) (map[int64][]model.RecipeIngredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64][]model.RecipeIngredient, len(recipeIDs))
	for _, id := range recipeIDs {
		row, ok := s.recipes[id]
		if !ok {
			continue
		}
		for _, line := range row.lines {
			if ing, ok := s.ingredients[line.IngredientID]; ok {
				out[id] = append(out[id], model.RecipeIngredient{Ingredient: *ing, Amount: line.Amount})
			}
		}
	}
	return out, nil
}

// CountFavorites counts favorites per recipe.
func (s *Store) CountFavorites(ctx context.Context, recipeIDs []int64) (map[int64]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64]int64)
	for p := range s.relations[model.RelationFavorite] {
		if slices.Contains(recipeIDs, p.targetID) {
			out[p.targetID]++
		}
	}
	return out, nil
}
