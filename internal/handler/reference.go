package handler

import (
	"log/slog"
	"net/http"

	"github.com/foodgram/foodgram/internal/handler/dto"
	"github.com/foodgram/foodgram/internal/service"
)

// ReferenceHandler serves tags and ingredients.
type ReferenceHandler struct {
	svc    *service.ReferenceService
	logger *slog.Logger
}

// NewReferenceHandler creates a new ReferenceHandler.
func NewReferenceHandler(svc *service.ReferenceService, logger *slog.Logger) *ReferenceHandler {
	return &ReferenceHandler{svc: svc, logger: logger}
}

// ListTags handles GET /api/tags.
func (h *ReferenceHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.ListTags(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToTagListResponse(tags))
}

// GetTag handles GET /api/tags/{id}.
func (h *ReferenceHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	tag, err := h.svc.GetTag(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToTagResponse(*tag))
}

// CreateTag handles POST /api/tags.
func (h *ReferenceHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTagRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tag := req.ToTag()
	if err := h.svc.CreateTag(r.Context(), tag); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.ToTagResponse(*tag))
}

// ListIngredients handles GET /api/ingredients?name=.
func (h *ReferenceHandler) ListIngredients(w http.ResponseWriter, r *http.Request) {
	ings, err := h.svc.ListIngredients(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToIngredientListResponse(ings))
}

// GetIngredient handles GET /api/ingredients/{id}.
func (h *ReferenceHandler) GetIngredient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ing, err := h.svc.GetIngredient(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToIngredientResponse(*ing))
}

// CreateIngredient handles POST /api/ingredients.
func (h *ReferenceHandler) CreateIngredient(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateIngredientRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ing := req.ToIngredient()
	if err := h.svc.CreateIngredient(r.Context(), ing); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.ToIngredientResponse(*ing))
}
