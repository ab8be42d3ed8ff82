package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foodgram/foodgram/internal/auth"
	"github.com/foodgram/foodgram/internal/handler/dto"
	"github.com/foodgram/foodgram/internal/service"
)

// APIKeyHandler handles API key management endpoints.
type APIKeyHandler struct {
	svc    *service.APIKeyService
	logger *slog.Logger
}

// NewAPIKeyHandler creates a new APIKeyHandler.
func NewAPIKeyHandler(svc *service.APIKeyService, logger *slog.Logger) *APIKeyHandler {
	return &APIKeyHandler{svc: svc, logger: logger}
}

// CreateAPIKey handles POST /api/api-keys
func (h *APIKeyHandler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAPIKeyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	key, plaintext, err := h.svc.Create(r.Context(), auth.AuthFromContext(r.Context()), req.Scopes, req.Name)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	// Plaintext is shown once only.
	writeJSON(w, http.StatusCreated, dto.ToAPIKeyCreatedResponse(key, plaintext))
}

// ListAPIKeys handles GET /api/api-keys
func (h *APIKeyHandler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.svc.List(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToAPIKeyListResponse(keys))
}

// RevokeAPIKey handles DELETE /api/api-keys/{key_id}
// Keys of other users are reported as not found.
func (h *APIKeyHandler) RevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	keyID := chi.URLParam(r, "key_id")
	if err := h.svc.Revoke(r.Context(), auth.UserIDFromContext(r.Context()), keyID); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RotateAPIKey handles POST /api/api-keys/{key_id}/rotate
func (h *APIKeyHandler) RotateAPIKey(w http.ResponseWriter, r *http.Request) {
	keyID := chi.URLParam(r, "key_id")
	key, plaintext, err := h.svc.Rotate(r.Context(), auth.UserIDFromContext(r.Context()), keyID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.APIKeyRotateResponse{
		OldKeyID: keyID,
		NewKey:   dto.ToAPIKeyCreatedResponse(key, plaintext),
	})
}
