package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/foodgram/foodgram/internal/metrics"
	"github.com/foodgram/foodgram/internal/model"
	"github.com/foodgram/foodgram/internal/repository"
)

// TagCache caches the full tag list. *cache.Cache implements it.
type TagCache interface {
	GetTags(ctx context.Context) ([]*model.Tag, error)
	SetTags(ctx context.Context, tags []*model.Tag) error
	InvalidateTags(ctx context.Context) error
}

// ReferenceService serves tags and ingredients.
type ReferenceService struct {
	store   ReferenceStore
	cache   TagCache
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewReferenceService creates a new ReferenceService. tagCache may be nil.
func NewReferenceService(store ReferenceStore, tagCache TagCache, logger *slog.Logger, recorder metrics.Recorder) *ReferenceService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReferenceService{store: store, cache: tagCache, logger: logger, metrics: recorder}
}

// ListTags returns every tag, from cache when possible.
func (s *ReferenceService) ListTags(ctx context.Context) ([]*model.Tag, error) {
	if s.cache != nil {
		tags, err := s.cache.GetTags(ctx)
		if err == nil {
			s.metrics.IncTagCacheHit()
			return tags, nil
		}
		s.metrics.IncTagCacheMiss()
	}

	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetTags(ctx, tags); err != nil {
			s.logger.Warn("tag cache write failed", slog.String("error", err.Error()))
		}
	}
	return tags, nil
}

// GetTag returns a tag by ID.
func (s *ReferenceService) GetTag(ctx context.Context, id int64) (*model.Tag, error) {
	tag, err := s.store.GetTagByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTagNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return tag, nil
}

// CreateTag stores a tag and drops the cached tag list.
func (s *ReferenceService) CreateTag(ctx context.Context, tag *model.Tag) error {
	tag.Color = strings.ToUpper(tag.Color)
	if err := s.store.CreateTag(ctx, tag); err != nil {
		if errors.Is(err, repository.ErrTagExists) {
			return ErrTagExists
		}
		return fmt.Errorf("failed to create tag: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateTags(ctx); err != nil {
			s.logger.Warn("tag cache invalidation failed", slog.String("error", err.Error()))
		}
	}
	s.logger.Info("tag_created", slog.Int64("tag_id", tag.ID), slog.String("slug", tag.Slug))
	return nil
}

// ListIngredients returns ingredients whose name starts with namePrefix,
// ignoring case.
func (s *ReferenceService) ListIngredients(ctx context.Context, namePrefix string) ([]*model.Ingredient, error) {
	ingredients, err := s.store.ListIngredients(ctx, strings.TrimSpace(namePrefix))
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return ingredients, nil
}

// GetIngredient returns an ingredient by ID.
func (s *ReferenceService) GetIngredient(ctx context.Context, id int64) (*model.Ingredient, error) {
	ing, err := s.store.GetIngredientByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrIngredientNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, fmt.Errorf("failed to get ingredient: %w", err)
	}
	return ing, nil
}

// CreateIngredient stores an ingredient. (name, unit) must be unique.
func (s *ReferenceService) CreateIngredient(ctx context.Context, ing *model.Ingredient) error {
	if err := s.store.CreateIngredient(ctx, ing); err != nil {
		if errors.Is(err, repository.ErrIngredientExists) {
			return ErrIngredientExists
		}
		return fmt.Errorf("failed to create ingredient: %w", err)
	}
	s.logger.Info("ingredient_created", slog.Int64("ingredient_id", ing.ID))
	return nil
}
