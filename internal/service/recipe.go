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

// Pagination bounds for list operations.
const (
	DefaultPageSize = 6
	MaxPageSize     = 100
)

// RecipeService handles recipe business logic.
type RecipeService struct {
	recipes   RecipeStore
	relations RelationStore
	users     UserStore
	logger    *slog.Logger
	metrics   metrics.Recorder
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(store Store, logger *slog.Logger, recorder metrics.Recorder) *RecipeService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RecipeService{
		recipes:   store,
		relations: store,
		users:     store,
		logger:    logger,
		metrics:   recorder,
	}
}

// CreateRecipeInput defines input for creating a recipe.
type CreateRecipeInput struct {
	Name        string
	Text        string
	Image       string
	CookingTime int
	Tags        []int64
	Ingredients []model.IngredientLine
}

// UpdateRecipeInput defines input for a partial recipe update.
// Nil fields are left unchanged.
type UpdateRecipeInput struct {
	Name        *string
	Text        *string
	Image       *string
	CookingTime *int
	Tags        []int64
	Ingredients []model.IngredientLine
}

// Create validates and stores a new recipe authored by the viewer.
func (s *RecipeService) Create(ctx context.Context, viewer model.Viewer, input CreateRecipeInput) (*model.RecipeDetail, error) {
	if viewer.IsAnonymous() {
		return nil, ErrUnauthenticated
	}

	comp := model.Composition{Tags: input.Tags, Ingredients: input.Ingredients}
	if comp.Tags == nil {
		comp.Tags = []int64{}
	}
	if comp.Ingredients == nil {
		comp.Ingredients = []model.IngredientLine{}
	}

	if err := s.validate(input.CookingTime, comp); err != nil {
		return nil, err
	}

	recipe := &model.Recipe{
		AuthorID:    viewer.UserID,
		Name:        input.Name,
		Text:        input.Text,
		Image:       input.Image,
		CookingTime: input.CookingTime,
	}

	if err := s.recipes.CreateRecipe(ctx, recipe, comp); err != nil {
		return nil, translateRecipeWriteError(err, "create")
	}

	s.metrics.IncRecipeCreated()
	s.logger.Info("recipe_created",
		slog.Int64("recipe_id", recipe.ID),
		slog.Int64("author_id", recipe.AuthorID),
		slog.Int("ingredients", len(comp.Ingredients)),
	)

	return s.Get(ctx, viewer, recipe.ID)
}

// Update applies a partial update. Only the author or an admin may update.
// Present tag or ingredient lists replace the stored ones.
func (s *RecipeService) Update(ctx context.Context, viewer model.Viewer, id int64, input UpdateRecipeInput) (*model.RecipeDetail, error) {
	recipe, err := s.ownedRecipe(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		recipe.Name = *input.Name
	}
	if input.Text != nil {
		recipe.Text = *input.Text
	}
	if input.Image != nil {
		recipe.Image = *input.Image
	}
	if input.CookingTime != nil {
		recipe.CookingTime = *input.CookingTime
	}

	comp := model.Composition{Tags: input.Tags, Ingredients: input.Ingredients}
	if err := s.validate(recipe.CookingTime, comp); err != nil {
		return nil, err
	}

	if err := s.recipes.UpdateRecipe(ctx, recipe, comp); err != nil {
		return nil, translateRecipeWriteError(err, "update")
	}

	s.metrics.IncRecipeUpdated()
	s.logger.Info("recipe_updated", slog.Int64("recipe_id", recipe.ID))

	return s.Get(ctx, viewer, recipe.ID)
}

// Delete removes a recipe. Only the author or an admin may delete.
func (s *RecipeService) Delete(ctx context.Context, viewer model.Viewer, id int64) error {
	if _, err := s.ownedRecipe(ctx, viewer, id); err != nil {
		return err
	}

	if err := s.recipes.DeleteRecipe(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return ErrRecipeNotFound
		}
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	s.metrics.IncRecipeDeleted()
	s.logger.Info("recipe_deleted", slog.Int64("recipe_id", id))
	return nil
}

// Get returns a recipe with its relations and the viewer's flags.
func (s *RecipeService) Get(ctx context.Context, viewer model.Viewer, id int64) (*model.RecipeDetail, error) {
	recipe, err := s.recipes.GetRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	details, err := s.hydrate(ctx, viewer, []*model.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

// List returns a page of recipes matching filter, newest first.
func (s *RecipeService) List(ctx context.Context, filter model.RecipeFilter, cursor string, limit int) ([]*model.RecipeDetail, string, error) {
	limit = clampLimit(limit)

	recipes, next, err := s.recipes.ListRecipes(ctx, filter, cursor, limit)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCursor) {
			return nil, "", ErrInvalidCursor
		}
		return nil, "", fmt.Errorf("failed to list recipes: %w", err)
	}

	details, err := s.hydrate(ctx, filter.Viewer, recipes)
	if err != nil {
		return nil, "", err
	}
	return details, next, nil
}

// IsFavorited reports whether the viewer favorited the recipe.
// Always false for anonymous viewers.
func (s *RecipeService) IsFavorited(ctx context.Context, viewer model.Viewer, recipeID int64) (bool, error) {
	return s.hasRelation(ctx, model.RelationFavorite, viewer, recipeID)
}

// IsInShoppingCart reports whether the recipe is in the viewer's cart.
// Always false for anonymous viewers.
func (s *RecipeService) IsInShoppingCart(ctx context.Context, viewer model.Viewer, recipeID int64) (bool, error) {
	return s.hasRelation(ctx, model.RelationCart, viewer, recipeID)
}

func (s *RecipeService) hasRelation(ctx context.Context, kind model.RelationKind, viewer model.Viewer, recipeID int64) (bool, error) {
	if viewer.IsAnonymous() {
		return false, nil
	}
	ok, err := s.relations.RelationExists(ctx, kind, viewer.UserID, recipeID)
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", kind, err)
	}
	return ok, nil
}

func (s *RecipeService) validate(cookingTime int, comp model.Composition) error {
	err := validateCookingTime(cookingTime)
	if err == nil {
		err = requireComplete(comp)
	}
	if err == nil {
		_, err = ValidateComposition(comp)
	}
	if err != nil {
		s.metrics.IncValidationRejected(ValidationCode(err))
	}
	return err
}

func (s *RecipeService) ownedRecipe(ctx context.Context, viewer model.Viewer, id int64) (*model.Recipe, error) {
	if viewer.IsAnonymous() {
		return nil, ErrUnauthenticated
	}

	recipe, err := s.recipes.GetRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	if !viewer.CanModify(recipe.AuthorID) {
		return nil, ErrForbidden
	}
	return recipe, nil
}

// hydrate loads tags, lines, authors and viewer flags for recipes in a
// fixed number of store calls.
func (s *RecipeService) hydrate(ctx context.Context, viewer model.Viewer, recipes []*model.Recipe) ([]*model.RecipeDetail, error) {
	details := make([]*model.RecipeDetail, 0, len(recipes))
	if len(recipes) == 0 {
		return details, nil
	}

	ids := make([]int64, len(recipes))
	authorSet := make(map[int64]struct{})
	for i, r := range recipes {
		ids[i] = r.ID
		authorSet[r.AuthorID] = struct{}{}
	}
	authorIDs := make([]int64, 0, len(authorSet))
	for id := range authorSet {
		authorIDs = append(authorIDs, id)
	}

	tags, err := s.recipes.LoadRecipeTags(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	lines, err := s.recipes.LoadRecipeIngredients(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load ingredients: %w", err)
	}
	favCounts, err := s.recipes.CountFavorites(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count favorites: %w", err)
	}
	authors, err := s.users.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load authors: %w", err)
	}

	favorited, err := s.relations.RelatedAmong(ctx, model.RelationFavorite, viewer.UserID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	inCart, err := s.relations.RelatedAmong(ctx, model.RelationCart, viewer.UserID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	following, err := s.relations.RelatedAmong(ctx, model.RelationFollow, viewer.UserID, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}

	for _, r := range recipes {
		d := &model.RecipeDetail{
			Recipe:        *r,
			Tags:          orEmpty(tags[r.ID]),
			Ingredients:   orEmpty(lines[r.ID]),
			FavoriteCount: favCounts[r.ID],
		}
		if author, ok := authors[r.AuthorID]; ok {
			d.Author = model.UserProfile{User: *author, IsSubscribed: following[r.AuthorID]}
		}
		if !viewer.IsAnonymous() {
			d.IsFavorited = favorited[r.ID]
			d.IsInShoppingCart = inCart[r.ID]
		}
		details = append(details, d)
	}

	return details, nil
}

func translateRecipeWriteError(err error, op string) error {
	switch {
	case errors.Is(err, repository.ErrReferenceNotFound):
		return ErrUnknownReference
	case errors.Is(err, repository.ErrDuplicateLine):
		return &ValidationError{Field: "ingredients", Err: ErrDuplicateIngredient}
	case errors.Is(err, repository.ErrValueOutOfRange):
		return &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	case errors.Is(err, repository.ErrRecipeNotFound):
		return ErrRecipeNotFound
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrUserNotFound
	default:
		return fmt.Errorf("failed to %s recipe: %w", op, err)
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	return min(limit, MaxPageSize)
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
