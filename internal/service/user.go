package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/foodgram/foodgram/internal/auth"
	"github.com/foodgram/foodgram/internal/model"
	"github.com/foodgram/foodgram/internal/repository"
)

// DefaultRecipesPreview is how many recipes a subscription entry shows.
const DefaultRecipesPreview = 3

// KeyIssuer creates an unsaved API key and its plaintext.
type KeyIssuer func(userID int64, scopes []string, name string) (*model.APIKey, string, error)

// UserService handles accounts and subscriptions.
type UserService struct {
	users     UserStore
	recipes   RecipeStore
	relations RelationStore
	issueKey  KeyIssuer
	logger    *slog.Logger
}

// NewUserService creates a new UserService. A nil issuer issues live keys.
func NewUserService(store Store, issuer KeyIssuer, logger *slog.Logger) *UserService {
	if issuer == nil {
		issuer = func(userID int64, scopes []string, name string) (*model.APIKey, string, error) {
			return auth.IssueAPIKey(auth.EnvLive, userID, scopes, name)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:     store,
		recipes:   store,
		relations: store,
		issueKey:  issuer,
		logger:    logger,
	}
}

// RegisterInput defines input for signing up.
type RegisterInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	// Scopes of the first API key. Defaults to read and write.
	Scopes []string
}

// Registration is a new account with its first API key.
type Registration struct {
	User      *model.User
	Key       *model.APIKey
	Plaintext string
}

// Register creates a user together with their first API key.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*Registration, error) {
	if err := validateScopes(input.Scopes); err != nil {
		return nil, err
	}

	user := &model.User{
		Username:  input.Username,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	}

	key, plaintext, err := s.issueKey(0, input.Scopes, "default")
	if err != nil {
		return nil, fmt.Errorf("failed to issue API key: %w", err)
	}

	if err := s.users.CreateUserWithAPIKey(ctx, user, key); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return nil, ErrUsernameTaken
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailTaken
		default:
			return nil, fmt.Errorf("failed to register user: %w", err)
		}
	}

	s.logger.Info("user_registered", slog.Int64("user_id", user.ID), slog.String("key_id", key.ID))
	return &Registration{User: user, Key: key, Plaintext: plaintext}, nil
}

// Get returns a user profile as seen by viewer.
func (s *UserService) Get(ctx context.Context, viewer model.Viewer, id int64) (*model.UserProfile, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	subscribed, err := s.relations.RelatedAmong(ctx, model.RelationFollow, viewer.UserID, []int64{id})
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return &model.UserProfile{User: *user, IsSubscribed: subscribed[id]}, nil
}

// Me returns the viewer's own profile.
func (s *UserService) Me(ctx context.Context, viewer model.Viewer) (*model.UserProfile, error) {
	if viewer.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	return s.Get(ctx, viewer, viewer.UserID)
}

// List returns a page of users ordered by username.
func (s *UserService) List(ctx context.Context, viewer model.Viewer, cursor string, limit int) ([]model.UserProfile, string, error) {
	users, next, err := s.users.ListUsers(ctx, cursor, clampLimit(limit))
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCursor) {
			return nil, "", ErrInvalidCursor
		}
		return nil, "", fmt.Errorf("failed to list users: %w", err)
	}

	profiles, err := s.profiles(ctx, viewer, users)
	if err != nil {
		return nil, "", err
	}
	return profiles, next, nil
}

// Subscriptions returns the authors the viewer follows with a preview of up
// to recipesLimit of their newest recipes.
func (s *UserService) Subscriptions(ctx context.Context, viewer model.Viewer, cursor string, limit, recipesLimit int) ([]model.Subscription, string, error) {
	if viewer.IsAnonymous() {
		return nil, "", ErrUnauthenticated
	}

	authors, next, err := s.users.ListFollowedAuthors(ctx, viewer.UserID, cursor, clampLimit(limit))
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCursor) {
			return nil, "", ErrInvalidCursor
		}
		return nil, "", fmt.Errorf("failed to list subscriptions: %w", err)
	}

	subs, err := s.subscriptions(ctx, authors, recipesLimit)
	if err != nil {
		return nil, "", err
	}
	return subs, next, nil
}

// Subscription returns a single followed author entry.
func (s *UserService) Subscription(ctx context.Context, authorID int64, recipesLimit int) (*model.Subscription, error) {
	author, err := s.users.GetUserByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	subs, err := s.subscriptions(ctx, []*model.User{author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &subs[0], nil
}

// Delete removes a user and everything they own. Admin only.
func (s *UserService) Delete(ctx context.Context, viewer model.Viewer, id int64) error {
	if !viewer.IsAdmin {
		return ErrForbidden
	}
	if err := s.users.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.logger.Info("user_deleted", slog.Int64("user_id", id), slog.Int64("by", viewer.UserID))
	return nil
}

func (s *UserService) profiles(ctx context.Context, viewer model.Viewer, users []*model.User) ([]model.UserProfile, error) {
	ids := make([]int64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}

	subscribed, err := s.relations.RelatedAmong(ctx, model.RelationFollow, viewer.UserID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}

	profiles := make([]model.UserProfile, len(users))
	for i, u := range users {
		profiles[i] = model.UserProfile{User: *u, IsSubscribed: subscribed[u.ID]}
	}
	return profiles, nil
}

// subscriptions builds entries for authors the caller follows.
func (s *UserService) subscriptions(ctx context.Context, authors []*model.User, recipesLimit int) ([]model.Subscription, error) {
	recipesLimit = clampPreview(recipesLimit)

	ids := make([]int64, len(authors))
	for i, a := range authors {
		ids[i] = a.ID
	}

	counts, err := s.users.CountRecipesByAuthors(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}

	subs := make([]model.Subscription, len(authors))
	for i, a := range authors {
		recipes, _, err := s.recipes.ListRecipes(ctx, model.RecipeFilter{AuthorID: a.ID}, "", recipesLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to list author recipes: %w", err)
		}

		preview := make([]model.RecipeSummary, len(recipes))
		for j, r := range recipes {
			preview[j] = r.Summary()
		}

		subs[i] = model.Subscription{
			UserProfile:  model.UserProfile{User: *a, IsSubscribed: true},
			Recipes:      preview,
			RecipesCount: counts[a.ID],
		}
	}
	return subs, nil
}

// clampPreview bounds recipes_limit the way page sizes are bounded.
func clampPreview(recipesLimit int) int {
	if recipesLimit <= 0 {
		return DefaultRecipesPreview
	}
	return min(recipesLimit, MaxPageSize)
}
