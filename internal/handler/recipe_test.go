package handler

import (
	"fmt"
	"math"
	"net/http"
	"testing"

	"github.com/foodgram/foodgram/internal/handler/dto"
)

func TestRecipeHandler_CreateAndGet(t *testing.T) {
	s := newTestServer(t)

	created := s.createRecipe(t, s.alice, "Pancakes",
		dto.IngredientLineRequest{ID: s.flour.ID, Amount: 200},
		dto.IngredientLineRequest{ID: s.salt.ID, Amount: 2},
	)

	if created.Author.Username != "alice" || created.CookingTime != 15 {
		t.Fatalf("unexpected recipe %+v", created)
	}
	if len(created.Tags) != 1 || created.Tags[0].Slug != "lunch" {
		t.Fatalf("unexpected tags %+v", created.Tags)
	}
	if len(created.Ingredients) != 2 || created.Ingredients[0].Name != "flour" || created.Ingredients[0].Amount != 200 {
		t.Fatalf("unexpected ingredients %+v", created.Ingredients)
	}

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/api/recipes/%d", created.ID), nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	got := decode[dto.RecipeResponse](t, rec)
	if got.ID != created.ID || got.IsFavorited || got.IsInShoppingCart {
		t.Fatalf("unexpected anonymous view %+v", got)
	}

	expectError(t, s.do(t, http.MethodGet, "/api/recipes/999", nil, nil), http.StatusNotFound, "RECIPE_NOT_FOUND")
}

func TestRecipeHandler_CreateValidation(t *testing.T) {
	s := newTestServer(t)

	body := func(mutate func(*dto.CreateRecipeRequest)) dto.CreateRecipeRequest {
		req := dto.CreateRecipeRequest{
			Name:        "Soup",
			Text:        "Boil.",
			Image:       "recipes/images/soup.png",
			CookingTime: 30,
			Tags:        []int64{s.lunch.ID},
			Ingredients: []dto.IngredientLineRequest{{ID: s.salt.ID, Amount: 1}},
		}
		mutate(&req)
		return req
	}

	tests := []struct {
		name       string
		req        dto.CreateRecipeRequest
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{
			name: "duplicate ingredient",
			req: body(func(r *dto.CreateRecipeRequest) {
				r.Ingredients = []dto.IngredientLineRequest{{ID: s.salt.ID, Amount: 1}, {ID: s.salt.ID, Amount: 2}}
			}),
			wantStatus: http.StatusBadRequest, wantCode: "DUPLICATE_INGREDIENT", wantField: "ingredients",
		},
		{
			name:       "zero amount",
			req:        body(func(r *dto.CreateRecipeRequest) { r.Ingredients[0].Amount = 0 }),
			wantStatus: http.StatusBadRequest, wantCode: "INVALID_AMOUNT", wantField: "amount",
		},
		{
			name:       "amount past integer range",
			req:        body(func(r *dto.CreateRecipeRequest) { r.Ingredients[0].Amount = math.MaxInt32 + 1 }),
			wantStatus: http.StatusBadRequest, wantCode: "INVALID_AMOUNT", wantField: "amount",
		},
		{
			name:       "cooking time past integer range",
			req:        body(func(r *dto.CreateRecipeRequest) { r.CookingTime = math.MaxInt32 + 1 }),
			wantStatus: http.StatusBadRequest, wantCode: "INVALID_COOKING_TIME", wantField: "cooking_time",
		},
		{
			name:       "duplicate tag",
			req:        body(func(r *dto.CreateRecipeRequest) { r.Tags = []int64{s.lunch.ID, s.lunch.ID} }),
			wantStatus: http.StatusBadRequest, wantCode: "DUPLICATE_TAG", wantField: "tags",
		},
		{
			name:       "zero cooking time",
			req:        body(func(r *dto.CreateRecipeRequest) { r.CookingTime = 0 }),
			wantStatus: http.StatusBadRequest, wantCode: "INVALID_COOKING_TIME", wantField: "cooking_time",
		},
		{
			name:       "no tags",
			req:        body(func(r *dto.CreateRecipeRequest) { r.Tags = nil }),
			wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_ERROR", wantField: "tags",
		},
		{
			name:       "unknown ingredient",
			req:        body(func(r *dto.CreateRecipeRequest) { r.Ingredients[0].ID = 999 }),
			wantStatus: http.StatusBadRequest, wantCode: "UNKNOWN_REFERENCE",
		},
		{
			name:       "name too long",
			req:        body(func(r *dto.CreateRecipeRequest) { r.Name = string(make([]byte, 201)) }),
			wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_ERROR", wantField: "name",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/recipes", test.req, s.alice)
			got := expectError(t, rec, test.wantStatus, test.wantCode)
			if got.Field != test.wantField {
				t.Fatalf("expected field %q, got %q", test.wantField, got.Field)
			}
		})
	}

	expectError(t, s.do(t, http.MethodPost, "/api/recipes", body(func(*dto.CreateRecipeRequest) {}), nil),
		http.StatusUnauthorized, "UNAUTHORIZED")
}

func TestRecipeHandler_UpdateAndDelete(t *testing.T) {
	s := newTestServer(t)
	recipe := s.createRecipe(t, s.alice, "Stew")
	path := fmt.Sprintf("/api/recipes/%d", recipe.ID)

	expectError(t, s.do(t, http.MethodPatch, path, `{"name":"Mine"}`, s.bob), http.StatusForbidden, "FORBIDDEN")
	expectError(t, s.do(t, http.MethodPatch, path, `{"name":""}`, s.alice), http.StatusBadRequest, "VALIDATION_ERROR")

	rec := s.do(t, http.MethodPatch, path, fmt.Sprintf(`{"name":"Beef stew","tags":[%d,%d]}`, s.breakfast.ID, s.lunch.ID), s.alice)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	updated := decode[dto.RecipeResponse](t, rec)
	if updated.Name != "Beef stew" || len(updated.Tags) != 2 || len(updated.Ingredients) != 1 {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if !updated.PubDate.Equal(recipe.PubDate) {
		t.Fatalf("pub_date changed from %v to %v", recipe.PubDate, updated.PubDate)
	}

	expectError(t, s.do(t, http.MethodDelete, path, nil, s.bob), http.StatusForbidden, "FORBIDDEN")

	if rec := s.do(t, http.MethodDelete, path, nil, s.admin); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	expectError(t, s.do(t, http.MethodGet, path, nil, s.alice), http.StatusNotFound, "RECIPE_NOT_FOUND")
}

func TestRecipeHandler_Toggles(t *testing.T) {
	s := newTestServer(t)
	recipe := s.createRecipe(t, s.alice, "Salad")

	for _, endpoint := range []string{"favorite", "shopping_cart"} {
		t.Run(endpoint, func(t *testing.T) {
			path := fmt.Sprintf("/api/recipes/%d/%s", recipe.ID, endpoint)

			rec := s.do(t, http.MethodPost, path, nil, s.bob)
			if rec.Code != http.StatusCreated {
				t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
			}
			summary := decode[dto.RecipeSummaryResponse](t, rec)
			if summary.ID != recipe.ID || summary.Name != "Salad" || summary.Image != recipe.Image {
				t.Fatalf("unexpected summary %+v", summary)
			}

			expectError(t, s.do(t, http.MethodPost, path, nil, s.bob), http.StatusBadRequest, "ALREADY_EXISTS")

			if rec := s.do(t, http.MethodDelete, path, nil, s.bob); rec.Code != http.StatusNoContent {
				t.Fatalf("expected 204, got %d", rec.Code)
			}
			expectError(t, s.do(t, http.MethodDelete, path, nil, s.bob), http.StatusNotFound, "NOT_FOUND")

			missing := fmt.Sprintf("/api/recipes/999/%s", endpoint)
			expectError(t, s.do(t, http.MethodPost, missing, nil, s.bob), http.StatusNotFound, "RECIPE_NOT_FOUND")
			expectError(t, s.do(t, http.MethodPost, path, nil, nil), http.StatusUnauthorized, "UNAUTHORIZED")
		})
	}
}

func TestRecipeHandler_List(t *testing.T) {
	s := newTestServer(t)
	first := s.createRecipe(t, s.alice, "Porridge")
	second := s.createRecipe(t, s.bob, "Omelette")
	third := s.createRecipe(t, s.alice, "Toast")

	if rec := s.do(t, http.MethodPost, fmt.Sprintf("/api/recipes/%d/favorite", second.ID), nil, s.alice); rec.Code != http.StatusCreated {
		t.Fatalf("favorite: %d", rec.Code)
	}
	if rec := s.do(t, http.MethodPatch, fmt.Sprintf("/api/recipes/%d", first.ID), fmt.Sprintf(`{"tags":[%d]}`, s.breakfast.ID), s.alice); rec.Code != http.StatusOK {
		t.Fatalf("retag: %d", rec.Code)
	}

	tests := []struct {
		name  string
		path  string
		actor bool
		want  []int64
	}{
		{"all newest first", "/api/recipes", false, []int64{third.ID, second.ID, first.ID}},
		{"by author", fmt.Sprintf("/api/recipes?author=%d", s.alice.ID), false, []int64{third.ID, first.ID}},
		{"by tag", "/api/recipes?tags=breakfast", false, []int64{first.ID}},
		{"any of tags", "/api/recipes?tags=breakfast&tags=lunch", false, []int64{third.ID, second.ID, first.ID}},
		{"favorited", "/api/recipes?is_favorited=1", true, []int64{second.ID}},
		{"favorited ignored for anonymous", "/api/recipes?is_favorited=1", false, []int64{third.ID, second.ID, first.ID}},
		{"empty cart", "/api/recipes?is_in_shopping_cart=true", true, []int64{}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			actor := s.alice
			if !test.actor {
				actor = nil
			}
			rec := s.do(t, http.MethodGet, test.path, nil, actor)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			page := decode[dto.ListResponse[dto.RecipeResponse]](t, rec)
			if len(page.Data) != len(test.want) {
				t.Fatalf("expected %d recipes, got %d", len(test.want), len(page.Data))
			}
			for i, id := range test.want {
				if page.Data[i].ID != id {
					t.Fatalf("position %d: expected %d, got %d", i, id, page.Data[i].ID)
				}
			}
		})
	}

	rec := s.do(t, http.MethodGet, "/api/recipes?limit=2", nil, s.alice)
	page := decode[dto.ListResponse[dto.RecipeResponse]](t, rec)
	if len(page.Data) != 2 || !page.Pagination.HasMore || page.Pagination.NextCursor == "" {
		t.Fatalf("unexpected first page %+v", page.Pagination)
	}
	if !page.Data[1].IsFavorited {
		t.Fatalf("expected alice to see her favorite flagged")
	}

	rec = s.do(t, http.MethodGet, "/api/recipes?limit=2&cursor="+page.Pagination.NextCursor, nil, s.alice)
	page = decode[dto.ListResponse[dto.RecipeResponse]](t, rec)
	if len(page.Data) != 1 || page.Data[0].ID != first.ID || page.Pagination.HasMore {
		t.Fatalf("unexpected second page %+v", page)
	}

	expectError(t, s.do(t, http.MethodGet, "/api/recipes?cursor=bogus", nil, nil), http.StatusBadRequest, "INVALID_CURSOR")
}

func TestRecipeHandler_DownloadShoppingCart(t *testing.T) {
	s := newTestServer(t)
	pancakes := s.createRecipe(t, s.alice, "Pancakes",
		dto.IngredientLineRequest{ID: s.flour.ID, Amount: 200},
		dto.IngredientLineRequest{ID: s.salt.ID, Amount: 2},
	)
	bread := s.createRecipe(t, s.alice, "Bread",
		dto.IngredientLineRequest{ID: s.flour.ID, Amount: 300},
	)

	rec := s.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", nil, s.bob)
	if rec.Code != http.StatusOK || rec.Body.String() != "Shopping list:\n" {
		t.Fatalf("empty cart: %d %q", rec.Code, rec.Body.String())
	}

	for _, id := range []int64{pancakes.ID, bread.ID} {
		if rec := s.do(t, http.MethodPost, fmt.Sprintf("/api/recipes/%d/shopping_cart", id), nil, s.bob); rec.Code != http.StatusCreated {
			t.Fatalf("add to cart: %d", rec.Code)
		}
	}

	rec = s.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", nil, s.bob)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="list-to-buy.txt"` {
		t.Fatalf("unexpected Content-Disposition %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/plain; charset=utf-8" {
		t.Fatalf("unexpected Content-Type %q", got)
	}
	want := "Shopping list:\nflour - 500 g.\nsalt - 2 g."
	if rec.Body.String() != want {
		t.Fatalf("expected %q, got %q", want, rec.Body.String())
	}

	expectError(t, s.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", nil, nil), http.StatusUnauthorized, "UNAUTHORIZED")
}
