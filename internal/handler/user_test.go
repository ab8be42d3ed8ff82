package handler

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/foodgram/foodgram/internal/handler/dto"
)

func TestUserHandler_Signup(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/users", dto.SignupRequest{
		Username:  "carol",
		Email:     "carol@example.com",
		FirstName: "Carol",
		LastName:  "Cook",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	got := decode[dto.SignupResponse](t, rec)
	if got.User.ID == 0 || got.User.Username != "carol" {
		t.Fatalf("unexpected user %+v", got.User)
	}
	if !strings.HasPrefix(got.APIKey.Key, "fg_test_abc123_") || len(got.APIKey.Scopes) != 2 {
		t.Fatalf("unexpected key %+v", got.APIKey)
	}

	tests := []struct {
		name       string
		req        dto.SignupRequest
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{"username taken", dto.SignupRequest{Username: "alice", Email: "new@example.com", FirstName: "A", LastName: "B"}, http.StatusConflict, "USERNAME_TAKEN", "username"},
		{"email taken", dto.SignupRequest{Username: "alice2", Email: "alice@example.com", FirstName: "A", LastName: "B"}, http.StatusConflict, "EMAIL_TAKEN", "email"},
		{"bad email", dto.SignupRequest{Username: "dave", Email: "not-an-email", FirstName: "A", LastName: "B"}, http.StatusBadRequest, "VALIDATION_ERROR", "email"},
		{"bad username", dto.SignupRequest{Username: "dave smith", Email: "dave@example.com", FirstName: "A", LastName: "B"}, http.StatusBadRequest, "VALIDATION_ERROR", "username"},
		{"admin scope", dto.SignupRequest{Username: "eve", Email: "eve@example.com", FirstName: "A", LastName: "B", Scopes: []string{"admin"}}, http.StatusBadRequest, "VALIDATION_ERROR", "scopes[0]"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := expectError(t, s.do(t, http.MethodPost, "/api/users", test.req, nil), test.wantStatus, test.wantCode)
			if got.Field != test.wantField {
				t.Fatalf("expected field %q, got %q", test.wantField, got.Field)
			}
		})
	}
}

func TestUserHandler_Profiles(t *testing.T) {
	s := newTestServer(t)

	expectError(t, s.do(t, http.MethodGet, "/api/users/me", nil, nil), http.StatusUnauthorized, "UNAUTHORIZED")

	rec := s.do(t, http.MethodGet, "/api/users/me", nil, s.alice)
	if me := decode[dto.UserResponse](t, rec); rec.Code != http.StatusOK || me.ID != s.alice.ID {
		t.Fatalf("unexpected me: %d %+v", rec.Code, me)
	}

	rec = s.do(t, http.MethodGet, "/api/users?limit=2", nil, nil)
	page := decode[dto.ListResponse[dto.UserResponse]](t, rec)
	if len(page.Data) != 2 || page.Data[0].Username != "alice" || page.Data[1].Username != "bob" || !page.Pagination.HasMore {
		t.Fatalf("unexpected user page %+v", page)
	}

	expectError(t, s.do(t, http.MethodGet, "/api/users/999", nil, nil), http.StatusNotFound, "USER_NOT_FOUND")
}

func TestUserHandler_Subscriptions(t *testing.T) {
	s := newTestServer(t)
	for i := range 4 {
		s.createRecipe(t, s.bob, fmt.Sprintf("Dish %d", i))
	}

	path := fmt.Sprintf("/api/users/%d/subscribe", s.bob.ID)
	rec := s.do(t, http.MethodPost, path+"?recipes_limit=2", nil, s.alice)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	sub := decode[dto.SubscriptionResponse](t, rec)
	if sub.ID != s.bob.ID || !sub.IsSubscribed || sub.RecipesCount != 4 || len(sub.Recipes) != 2 {
		t.Fatalf("unexpected subscription %+v", sub)
	}
	if sub.Recipes[0].Name != "Dish 3" {
		t.Fatalf("expected newest recipe first, got %q", sub.Recipes[0].Name)
	}

	expectError(t, s.do(t, http.MethodPost, path, nil, s.alice), http.StatusBadRequest, "ALREADY_EXISTS")
	expectError(t, s.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe", s.alice.ID), nil, s.alice),
		http.StatusBadRequest, "SELF_SUBSCRIPTION")
	expectError(t, s.do(t, http.MethodPost, "/api/users/999/subscribe", nil, s.alice), http.StatusNotFound, "USER_NOT_FOUND")

	rec = s.do(t, http.MethodGet, "/api/users/subscriptions", nil, s.alice)
	subs := decode[dto.ListResponse[dto.SubscriptionResponse]](t, rec)
	if len(subs.Data) != 1 || subs.Data[0].ID != s.bob.ID || len(subs.Data[0].Recipes) != 3 {
		t.Fatalf("unexpected subscriptions %+v", subs)
	}

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", s.bob.ID), nil, s.alice)
	if profile := decode[dto.UserResponse](t, rec); !profile.IsSubscribed {
		t.Fatal("expected is_subscribed for alice")
	}
	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", s.bob.ID), nil, nil)
	if profile := decode[dto.UserResponse](t, rec); profile.IsSubscribed {
		t.Fatal("anonymous viewer is never subscribed")
	}

	if rec := s.do(t, http.MethodDelete, path, nil, s.alice); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	expectError(t, s.do(t, http.MethodDelete, path, nil, s.alice), http.StatusNotFound, "NOT_FOUND")
}

func TestUserHandler_Delete(t *testing.T) {
	s := newTestServer(t)
	recipe := s.createRecipe(t, s.bob, "Goulash")
	path := fmt.Sprintf("/api/users/%d", s.bob.ID)

	expectError(t, s.do(t, http.MethodDelete, path, nil, s.alice), http.StatusForbidden, "FORBIDDEN")

	if rec := s.do(t, http.MethodDelete, path, nil, s.admin); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	expectError(t, s.do(t, http.MethodGet, path, nil, nil), http.StatusNotFound, "USER_NOT_FOUND")
	expectError(t, s.do(t, http.MethodGet, fmt.Sprintf("/api/recipes/%d", recipe.ID), nil, nil), http.StatusNotFound, "RECIPE_NOT_FOUND")
}
