package memstore

import (
	"context"
	"fmt"
	"time"

	"github.com/foodgram/foodgram/internal/model"
	"github.com/foodgram/foodgram/internal/repository"
)

func (s *Store) relationSet(kind model.RelationKind) (map[pair]time.Time, error) {
	rel, ok := s.relations[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", repository.ErrUnknownRelation, kind)
	}
	return rel, nil
}

// AddRelation records a follow, favorite or cart entry.
func (s *Store) AddRelation(ctx context.Context, kind model.RelationKind, userID, targetID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rel, err := s.relationSet(kind)
	if err != nil {
		return err
	}

	if _, ok := s.users[userID]; !ok {
		return repository.ErrUserNotFound
	}
	if kind.TargetsRecipe() {
		if _, ok := s.recipes[targetID]; !ok {
			return repository.ErrRecipeNotFound
		}
	} else {
		if _, ok := s.users[targetID]; !ok {
			return repository.ErrUserNotFound
		}
		if userID == targetID {
			return repository.ErrSelfRelation
		}
	}

	key := pair{userID, targetID}
	if _, ok := rel[key]; ok {
		return repository.ErrRelationExists
	}
	rel[key] = time.Now().UTC()
	return nil
}

// RemoveRelation deletes a relation, returning ErrRelationNotFound when absent.
func (s *Store) RemoveRelation(ctx context.Context, kind model.RelationKind, userID, targetID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rel, err := s.relationSet(kind)
	if err != nil {
		return err
	}

	key := pair{userID, targetID}
	if _, ok := rel[key]; !ok {
		return repository.ErrRelationNotFound
	}
	delete(rel, key)
	return nil
}

// RelationExists reports whether the relation is recorded.
func (s *Store) RelationExists(ctx context.Context, kind model.RelationKind, userID, targetID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rel, err := s.relationSet(kind)
	if err != nil {
		return false, err
	}
	_, ok := rel[pair{userID, targetID}]
	return ok, nil
}

// RelatedAmong reports which of targetIDs userID is related to.
func (s *Store) RelatedAmong(ctx context.Context, kind model.RelationKind, userID int64, targetIDs []int64) (map[int64]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rel, err := s.relationSet(kind)
	if err != nil {
		return nil, err
	}

	out := make(map[int64]bool)
	if userID == 0 {
		return out, nil
	}
	for _, id := range targetIDs {
		if _, ok := rel[pair{userID, id}]; ok {
			out[id] = true
		}
	}
	return out, nil
}

// ListCartLines returns the ingredient lines of every recipe in the user's cart.
func (s *Store) ListCartLines(ctx context.Context, userID int64) ([]model.CartLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var lines []model.CartLine
	for p := range s.relations[model.RelationCart] {
		if p.userID != userID {
			continue
		}
		row, ok := s.recipes[p.targetID]
		if !ok {
			continue
		}
		for _, line := range row.lines {
			ing := s.ingredients[line.IngredientID]
			lines = append(lines, model.CartLine{
				RecipeID:        p.targetID,
				IngredientID:    ing.ID,
				Name:            ing.Name,
				MeasurementUnit: ing.MeasurementUnit,
				Amount:          line.Amount,
			})
		}
	}
	return lines, nil
}
