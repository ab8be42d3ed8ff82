package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/foodgram/foodgram/internal/metrics"
	"github.com/foodgram/foodgram/internal/model"
	"github.com/foodgram/foodgram/internal/repository"
)

// RelationService toggles favorites, cart entries and follows.
type RelationService struct {
	relations RelationStore
	recipes   RecipeStore
	users     UserStore
	logger    *slog.Logger
	metrics   metrics.Recorder
}

// NewRelationService creates a new RelationService.
func NewRelationService(store Store, logger *slog.Logger, recorder metrics.Recorder) *RelationService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RelationService{
		relations: store,
		recipes:   store,
		users:     store,
		logger:    logger,
		metrics:   recorder,
	}
}

// Add records that actorID has a kind relation with targetID.
// An existing record, or one inserted concurrently, yields ErrAlreadyExists.
func (s *RelationService) Add(ctx context.Context, kind model.RelationKind, actorID, targetID int64) error {
	if err := s.checkTarget(ctx, kind, actorID, targetID); err != nil {
		return err
	}

	exists, err := s.relations.RelationExists(ctx, kind, actorID, targetID)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", kind, err)
	}
	if exists {
		s.metrics.IncRelationConflict(string(kind))
		return ErrAlreadyExists
	}

	if err := s.relations.AddRelation(ctx, kind, actorID, targetID); err != nil {
		switch {
		case errors.Is(err, repository.ErrRelationExists):
			s.metrics.IncRelationConflict(string(kind))
			return ErrAlreadyExists
		case errors.Is(err, repository.ErrSelfRelation):
			return ErrSelfFollow
		case errors.Is(err, repository.ErrRecipeNotFound):
			return ErrRecipeNotFound
		case errors.Is(err, repository.ErrUserNotFound):
			return ErrUserNotFound
		default:
			return fmt.Errorf("failed to add %s: %w", kind, err)
		}
	}

	s.metrics.IncRelationAdded(string(kind))
	s.logger.Info(string(kind)+"_added",
		slog.Int64("user_id", actorID),
		slog.Int64("target_id", targetID),
	)
	return nil
}

// Remove deletes the kind relation between actorID and targetID.
// A missing record yields ErrNotFound.
func (s *RelationService) Remove(ctx context.Context, kind model.RelationKind, actorID, targetID int64) error {
	if err := s.checkTarget(ctx, kind, actorID, targetID); err != nil {
		return err
	}

	if err := s.relations.RemoveRelation(ctx, kind, actorID, targetID); err != nil {
		if errors.Is(err, repository.ErrRelationNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to remove %s: %w", kind, err)
	}

	s.metrics.IncRelationRemoved(string(kind))
	s.logger.Info(string(kind)+"_removed",
		slog.Int64("user_id", actorID),
		slog.Int64("target_id", targetID),
	)
	return nil
}

// AddRecipe favorites a recipe or puts it in the cart and returns its summary.
func (s *RelationService) AddRecipe(ctx context.Context, kind model.RelationKind, actorID, recipeID int64) (model.RecipeSummary, error) {
	if !kind.TargetsRecipe() {
		return model.RecipeSummary{}, fmt.Errorf("%w: %q", repository.ErrUnknownRelation, kind)
	}
	if err := s.Add(ctx, kind, actorID, recipeID); err != nil {
		return model.RecipeSummary{}, err
	}

	recipe, err := s.recipes.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return model.RecipeSummary{}, ErrRecipeNotFound
		}
		return model.RecipeSummary{}, fmt.Errorf("failed to get recipe: %w", err)
	}
	return recipe.Summary(), nil
}

func (s *RelationService) checkTarget(ctx context.Context, kind model.RelationKind, actorID, targetID int64) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: %q", repository.ErrUnknownRelation, kind)
	}
	if actorID == 0 {
		return ErrUnauthenticated
	}

	if kind.TargetsRecipe() {
		if _, err := s.recipes.GetRecipeByID(ctx, targetID); err != nil {
			if errors.Is(err, repository.ErrRecipeNotFound) {
				return ErrRecipeNotFound
			}
			return fmt.Errorf("failed to get recipe: %w", err)
		}
		return nil
	}

	if _, err := s.users.GetUserByID(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if actorID == targetID {
		return ErrSelfFollow
	}
	return nil
}
