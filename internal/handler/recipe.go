package handler

import (
	"log/slog"
	"net/http"

	"github.com/foodgram/foodgram/internal/auth"
	"github.com/foodgram/foodgram/internal/handler/dto"
	"github.com/foodgram/foodgram/internal/model"
	"github.com/foodgram/foodgram/internal/service"
)

// RecipeHandler handles HTTP requests for recipes, favorites and the
// shopping cart.
type RecipeHandler struct {
	recipes   *service.RecipeService
	relations *service.RelationService
	shopping  *service.ShoppingService
	logger    *slog.Logger
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(
	recipes *service.RecipeService,
	relations *service.RelationService,
	shopping *service.ShoppingService,
	logger *slog.Logger,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:   recipes,
		relations: relations,
		shopping:  shopping,
		logger:    logger,
	}
}

// List handles GET /api/recipes.
//
// Query: tags (repeatable slug), author, is_favorited, is_in_shopping_cart,
// limit, cursor.
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := model.RecipeFilter{
		Tags:           query["tags"],
		AuthorID:       int64(queryInt(r, "author", 0)),
		Favorited:      queryFlag(r, "is_favorited"),
		InShoppingCart: queryFlag(r, "is_in_shopping_cart"),
		Viewer:         auth.ViewerFromContext(r.Context()),
	}

	recipes, next, err := h.recipes.List(r.Context(), filter, query.Get("cursor"), queryInt(r, "limit", 0))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToRecipeListResponse(recipes, next))
}

// Get handles GET /api/recipes/{id}.
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	recipe, err := h.recipes.Get(r.Context(), auth.ViewerFromContext(r.Context()), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToRecipeResponse(recipe))
}

// Create handles POST /api/recipes.
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRecipeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	recipe, err := h.recipes.Create(r.Context(), auth.ViewerFromContext(r.Context()), req.ToCreateInput())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToRecipeResponse(recipe))
}

// Update handles PATCH /api/recipes/{id}.
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpdateRecipeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	recipe, err := h.recipes.Update(r.Context(), auth.ViewerFromContext(r.Context()), id, req.ToUpdateInput())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToRecipeResponse(recipe))
}

// Delete handles DELETE /api/recipes/{id}.
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.recipes.Delete(r.Context(), auth.ViewerFromContext(r.Context()), id); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddFavorite handles POST /api/recipes/{id}/favorite.
func (h *RecipeHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	h.addRelation(w, r, model.RelationFavorite)
}

// RemoveFavorite handles DELETE /api/recipes/{id}/favorite.
func (h *RecipeHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.removeRelation(w, r, model.RelationFavorite)
}

// AddToCart handles POST /api/recipes/{id}/shopping_cart.
func (h *RecipeHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	h.addRelation(w, r, model.RelationCart)
}

// RemoveFromCart handles DELETE /api/recipes/{id}/shopping_cart.
func (h *RecipeHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	h.removeRelation(w, r, model.RelationCart)
}

func (h *RecipeHandler) addRelation(w http.ResponseWriter, r *http.Request, kind model.RelationKind) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	summary, err := h.relations.AddRecipe(r.Context(), kind, auth.UserIDFromContext(r.Context()), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToRecipeSummaryResponse(summary))
}

func (h *RecipeHandler) removeRelation(w http.ResponseWriter, r *http.Request, kind model.RelationKind) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.relations.Remove(r.Context(), kind, auth.UserIDFromContext(r.Context()), id); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DownloadShoppingCart handles GET /api/recipes/download_shopping_cart.
// The response is a plain text attachment with one line per ingredient.
func (h *RecipeHandler) DownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	items, err := h.shopping.BuildShoppingList(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+service.ShoppingListFilename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(service.RenderShoppingList(items)))
}
