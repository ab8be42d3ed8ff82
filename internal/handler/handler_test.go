package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/oklog/ulid/v2"

	"github.com/foodgram/foodgram/internal/auth"
	"github.com/foodgram/foodgram/internal/handler/dto"
	"github.com/foodgram/foodgram/internal/memstore"
	"github.com/foodgram/foodgram/internal/model"
	"github.com/foodgram/foodgram/internal/service"
)

type testServer struct {
	router *chi.Mux
	store  *memstore.Store

	alice, bob, admin *model.User
	flour, salt       *model.Ingredient
	breakfast, lunch  *model.Tag
}

func fakeIssuer(userID int64, scopes []string, name string) (*model.APIKey, string, error) {
	if len(scopes) == 0 {
		scopes = []string{model.ScopeRead, model.ScopeWrite}
	}
	id := ulid.Make().String()
	return &model.APIKey{
		ID:            id,
		UserID:        userID,
		KeyHash:       "hash-" + id,
		KeyPrefix:     "abc123",
		Scopes:        scopes,
		RateLimitTier: model.TierFree,
		Name:          name,
		CreatedAt:     time.Now().UTC(),
	}, "fg_test_abc123_" + id, nil
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memstore.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	recipes := service.NewRecipeService(store, logger, nil)
	relations := service.NewRelationService(store, logger, nil)
	shopping := service.NewShoppingService(store, logger, nil)
	references := service.NewReferenceService(store, nil, logger, nil)
	users := service.NewUserService(store, fakeIssuer, logger)
	keys := service.NewAPIKeyService(store, fakeIssuer, logger)

	rh := NewRecipeHandler(recipes, relations, shopping, logger)
	fh := NewReferenceHandler(references, logger)
	uh := NewUserHandler(users, relations, logger)
	kh := NewAPIKeyHandler(keys, logger)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/tags", fh.ListTags)
		r.Post("/tags", fh.CreateTag)
		r.Get("/tags/{id}", fh.GetTag)
		r.Get("/ingredients", fh.ListIngredients)
		r.Post("/ingredients", fh.CreateIngredient)
		r.Get("/ingredients/{id}", fh.GetIngredient)

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", rh.List)
			r.Post("/", rh.Create)
			r.Get("/download_shopping_cart", rh.DownloadShoppingCart)
			r.Get("/{id}", rh.Get)
			r.Patch("/{id}", rh.Update)
			r.Delete("/{id}", rh.Delete)
			r.Post("/{id}/favorite", rh.AddFavorite)
			r.Delete("/{id}/favorite", rh.RemoveFavorite)
			r.Post("/{id}/shopping_cart", rh.AddToCart)
			r.Delete("/{id}/shopping_cart", rh.RemoveFromCart)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", uh.List)
			r.Post("/", uh.Signup)
			r.Get("/me", uh.Me)
			r.Get("/subscriptions", uh.Subscriptions)
			r.Get("/{id}", uh.Get)
			r.Delete("/{id}", uh.Delete)
			r.Post("/{id}/subscribe", uh.Subscribe)
			r.Delete("/{id}/subscribe", uh.Unsubscribe)
		})

		r.Route("/api-keys", func(r chi.Router) {
			r.Get("/", kh.ListAPIKeys)
			r.Post("/", kh.CreateAPIKey)
			r.Delete("/{key_id}", kh.RevokeAPIKey)
			r.Post("/{key_id}/rotate", kh.RotateAPIKey)
		})
	})
	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	s := &testServer{router: r, store: store}

	ctx := context.Background()
	s.alice = s.user(t, "alice")
	s.bob = s.user(t, "bob")
	s.admin = s.user(t, "root")

	s.flour = &model.Ingredient{Name: "flour", MeasurementUnit: "g"}
	s.salt = &model.Ingredient{Name: "salt", MeasurementUnit: "g"}
	for _, ing := range []*model.Ingredient{s.flour, s.salt} {
		if err := store.CreateIngredient(ctx, ing); err != nil {
			t.Fatalf("seed ingredient: %v", err)
		}
	}

	s.breakfast = &model.Tag{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"}
	s.lunch = &model.Tag{Name: "Lunch", Color: "#49B64E", Slug: "lunch"}
	for _, tag := range []*model.Tag{s.breakfast, s.lunch} {
		if err := store.CreateTag(ctx, tag); err != nil {
			t.Fatalf("seed tag: %v", err)
		}
	}

	return s
}

func (s *testServer) user(t *testing.T, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username, Email: username + "@example.com", FirstName: username, LastName: "Test"}
	if err := s.store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// do sends a request as actor. A nil actor is anonymous; admin gets the
// admin scope.
func (s *testServer) do(t *testing.T, method, path string, body any, actor *model.User) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if actor != nil {
		scopes := []string{model.ScopeRead, model.ScopeWrite}
		if actor == s.admin {
			scopes = []string{model.ScopeAdmin}
		}
		req = req.WithContext(auth.ContextWithAuth(req.Context(), &model.AuthContext{
			KeyID:  fmt.Sprintf("key-%d", actor.ID),
			UserID: actor.ID,
			Scopes: scopes,
		}))
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) createRecipe(t *testing.T, author *model.User, name string, lines ...dto.IngredientLineRequest) dto.RecipeResponse {
	t.Helper()
	if len(lines) == 0 {
		lines = []dto.IngredientLineRequest{{ID: s.salt.ID, Amount: 1}}
	}
	rec := s.do(t, http.MethodPost, "/api/recipes", dto.CreateRecipeRequest{
		Name:        name,
		Text:        "Mix and cook.",
		Image:       "recipes/images/" + name + ".png",
		CookingTime: 15,
		Tags:        []int64{s.lunch.ID},
		Ingredients: lines,
	}, author)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create recipe %q: status %d: %s", name, rec.Code, rec.Body.String())
	}
	return decode[dto.RecipeResponse](t, rec)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) dto.ErrorResponse {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	body := decode[dto.ErrorResponse](t, rec)
	if body.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, body.Code, body.Error)
	}
	return body
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	expectError(t, s.do(t, http.MethodGet, "/nonexistent", nil, nil), http.StatusNotFound, "NOT_FOUND")
	expectError(t, s.do(t, http.MethodPut, "/api/tags", nil, nil), http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED")
	expectError(t, s.do(t, http.MethodGet, "/api/recipes/abc", nil, nil), http.StatusNotFound, "NOT_FOUND")
}

func TestDecodeBody(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name      string
		body      string
		wantCode  string
		wantField string
	}{
		{"malformed", `{"name":`, "INVALID_JSON", ""},
		{"unknown field", `{"name":"Soup","color":"red"}`, "INVALID_JSON", ""},
		{"missing name", `{"text":"x","image":"a.png","cooking_time":5,"tags":[1],"ingredients":[{"id":1,"amount":1}]}`, "VALIDATION_ERROR", "name"},
		{"line without id", `{"name":"Soup","text":"x","image":"a.png","cooking_time":5,"tags":[1],"ingredients":[{"amount":1}]}`, "VALIDATION_ERROR", "id"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/recipes", test.body, s.alice)
			body := expectError(t, rec, http.StatusBadRequest, test.wantCode)
			if body.Field != test.wantField {
				t.Fatalf("expected field %q, got %q", test.wantField, body.Field)
			}
		})
	}
}

func TestHandleServiceError(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{&service.ValidationError{Field: "tags", Err: service.ErrDuplicateTag}, http.StatusBadRequest, "DUPLICATE_TAG"},
		{fmt.Errorf("wrapped: %w", &service.ValidationError{Field: "amount", Err: service.ErrInvalidAmount}), http.StatusBadRequest, "INVALID_AMOUNT"},
		{&service.ValidationError{Field: "tags", Err: service.ErrEmptyTags}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{service.ErrAlreadyExists, http.StatusBadRequest, "ALREADY_EXISTS"},
		{service.ErrSelfFollow, http.StatusBadRequest, "SELF_SUBSCRIPTION"},
		{service.ErrUnknownReference, http.StatusBadRequest, "UNKNOWN_REFERENCE"},
		{service.ErrUsernameTaken, http.StatusConflict, "USERNAME_TAKEN"},
		{service.ErrTagExists, http.StatusConflict, "TAG_EXISTS"},
		{service.ErrRecipeNotFound, http.StatusNotFound, "RECIPE_NOT_FOUND"},
		{service.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{service.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{service.ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHORIZED"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, test := range tests {
		t.Run(test.wantCode, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleServiceError(rec, logger, test.err)
			expectError(t, rec, test.wantStatus, test.wantCode)
		})
	}
}
