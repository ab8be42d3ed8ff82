package handler

import (
	"log/slog"
	"net/http"

	"github.com/foodgram/foodgram/internal/auth"
	"github.com/foodgram/foodgram/internal/handler/dto"
	"github.com/foodgram/foodgram/internal/model"
	"github.com/foodgram/foodgram/internal/service"
)

// UserHandler handles accounts, profiles and subscriptions.
type UserHandler struct {
	users     *service.UserService
	relations *service.RelationService
	logger    *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService, relations *service.RelationService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, relations: relations, logger: logger}
}

// Signup handles POST /api/users. The response carries the account's first
// API key in plaintext; it is not shown again.
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	reg, err := h.users.Register(r.Context(), req.ToRegisterInput())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.SignupResponse{
		User:   dto.ToUserResponse(model.UserProfile{User: *reg.User}),
		APIKey: dto.ToAPIKeyCreatedResponse(reg.Key, reg.Plaintext),
	})
}

// List handles GET /api/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, next, err := h.users.List(r.Context(), auth.ViewerFromContext(r.Context()),
		r.URL.Query().Get("cursor"), queryInt(r, "limit", 0))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToUserListResponse(profiles, next))
}

// Get handles GET /api/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	profile, err := h.users.Get(r.Context(), auth.ViewerFromContext(r.Context()), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToUserResponse(*profile))
}

// Me handles GET /api/users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.users.Me(r.Context(), auth.ViewerFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToUserResponse(*profile))
}

// Subscriptions handles GET /api/users/subscriptions.
//
// Query: limit, cursor, recipes_limit (size of each author's recipe preview).
func (h *UserHandler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	subs, next, err := h.users.Subscriptions(r.Context(), auth.ViewerFromContext(r.Context()),
		r.URL.Query().Get("cursor"), queryInt(r, "limit", 0), queryInt(r, "recipes_limit", 0))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToSubscriptionListResponse(subs, next))
}

// Subscribe handles POST /api/users/{id}/subscribe.
func (h *UserHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.relations.Add(r.Context(), model.RelationFollow, auth.UserIDFromContext(r.Context()), id); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	sub, err := h.users.Subscription(r.Context(), id, queryInt(r, "recipes_limit", 0))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.ToSubscriptionResponse(*sub))
}

// Unsubscribe handles DELETE /api/users/{id}/subscribe.
func (h *UserHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.relations.Remove(r.Context(), model.RelationFollow, auth.UserIDFromContext(r.Context()), id); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/users/{id}. Admin only; the user's recipes,
// keys and relations go with them.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), auth.ViewerFromContext(r.Context()), id); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
