package memstore

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/foodgram/foodgram/internal/model"
	"github.com/foodgram/foodgram/internal/repository"
)

// CreateTag stores a tag, rejecting a duplicate name, color or slug.
func (s *Store) CreateTag(ctx context.Context, tag *model.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tags {
		if t.Name == tag.Name || t.Color == tag.Color || t.Slug == tag.Slug {
			return repository.ErrTagExists
		}
	}

	tag.ID = s.newID()
	stored := *tag
	s.tags[tag.ID] = &stored
	return nil
}

// GetTagByID returns a copy of the tag.
func (s *Store) GetTagByID(ctx context.Context, id int64) (*model.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tags[id]
	if !ok {
		return nil, repository.ErrTagNotFound
	}
	out := *t
	return &out, nil
}

// ListTags returns all tags ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]*model.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		cp := *t
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *model.Tag) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

// CreateIngredient stores an ingredient, rejecting a duplicate name and unit pair.
func (s *Store) CreateIngredient(ctx context.Context, ing *model.Ingredient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, i := range s.ingredients {
		if i.Name == ing.Name && i.MeasurementUnit == ing.MeasurementUnit {
			return repository.ErrIngredientExists
		}
	}

	ing.ID = s.newID()
	stored := *ing
	s.ingredients[ing.ID] = &stored
	return nil
}

// GetIngredientByID returns a copy of the ingredient.
func (s *Store) GetIngredientByID(ctx context.Context, id int64) (*model.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.ingredients[id]
	if !ok {
		return nil, repository.ErrIngredientNotFound
	}
	out := *i
	return &out, nil
}

// ListIngredients returns ingredients whose name starts with namePrefix, case-insensitively.
func (s *Store) ListIngredients(ctx context.Context, namePrefix string) ([]*model.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := strings.ToLower(namePrefix)
	out := []*model.Ingredient{}
	for _, i := range s.ingredients {
		if strings.HasPrefix(strings.ToLower(i.Name), prefix) {
			cp := *i
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *model.Ingredient) int {
		return cmp.Or(
			cmp.Compare(a.Name, b.Name),
			cmp.Compare(a.MeasurementUnit, b.MeasurementUnit),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return out, nil
}
