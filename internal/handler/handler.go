// Package handler provides HTTP request handlers.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/foodgram/foodgram/internal/handler/dto"
	"github.com/foodgram/foodgram/internal/service"
	"github.com/foodgram/foodgram/internal/validation"
)

// NotFound handles 404 responses.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
}

// MethodNotAllowed handles 405 responses.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message, Code: code})
}

func writeFieldError(w http.ResponseWriter, status int, code, field, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message, Code: code, Field: field})
}

// decodeBody reads a JSON body into dst and validates its shape. On failure
// it writes the response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return false
	}

	if err := validation.Struct(dst); err != nil {
		var verr *validation.RequestValidationError
		if errors.As(err, &verr) {
			first := verr.First()
			writeFieldError(w, http.StatusBadRequest, service.CodeValidation, first.Field, first.Message)
			return false
		}
		writeError(w, http.StatusBadRequest, service.CodeValidation, err.Error())
		return false
	}
	return true
}

// pathID parses a positive integer URL parameter.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		return 0, false
	}
	return id, true
}

// queryInt returns the integer query parameter or def when absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(name)); err == nil {
		return v
	}
	return def
}

// queryFlag treats "1" and "true" as set.
func queryFlag(r *http.Request, name string) bool {
	switch r.URL.Query().Get(name) {
	case "1", "true":
		return true
	}
	return false
}

// handleServiceError maps service errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		writeFieldError(w, http.StatusBadRequest, service.ValidationCode(err), verr.Field, verr.Err.Error())
		return
	}

	switch {
	case errors.Is(err, service.ErrAlreadyExists):
		writeError(w, http.StatusBadRequest, "ALREADY_EXISTS", "Already added")
	case errors.Is(err, service.ErrSelfFollow):
		writeError(w, http.StatusBadRequest, "SELF_SUBSCRIPTION", "Cannot subscribe to yourself")
	case errors.Is(err, service.ErrUnknownReference):
		writeError(w, http.StatusBadRequest, "UNKNOWN_REFERENCE", "Unknown tag or ingredient")
	case errors.Is(err, service.ErrInvalidCursor):
		writeFieldError(w, http.StatusBadRequest, "INVALID_CURSOR", "cursor", "Invalid cursor")
	case errors.Is(err, service.ErrInvalidScope):
		writeFieldError(w, http.StatusBadRequest, "INVALID_SCOPE", "scopes", err.Error())
	case errors.Is(err, service.ErrUsernameTaken):
		writeFieldError(w, http.StatusConflict, "USERNAME_TAKEN", "username", "Username already taken")
	case errors.Is(err, service.ErrEmailTaken):
		writeFieldError(w, http.StatusConflict, "EMAIL_TAKEN", "email", "Email already registered")
	case errors.Is(err, service.ErrTagExists):
		writeError(w, http.StatusConflict, "TAG_EXISTS", "Tag name, color or slug already exists")
	case errors.Is(err, service.ErrIngredientExists):
		writeError(w, http.StatusConflict, "INGREDIENT_EXISTS", "Ingredient with this unit already exists")
	case errors.Is(err, service.ErrRecipeNotFound):
		writeError(w, http.StatusNotFound, "RECIPE_NOT_FOUND", "Recipe not found")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrTagNotFound):
		writeError(w, http.StatusNotFound, "TAG_NOT_FOUND", "Tag not found")
	case errors.Is(err, service.ErrIngredientNotFound):
		writeError(w, http.StatusNotFound, "INGREDIENT_NOT_FOUND", "Ingredient not found")
	case errors.Is(err, service.ErrAPIKeyNotFound):
		writeError(w, http.StatusNotFound, "API_KEY_NOT_FOUND", "API key not found")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "You do not have permission to perform this action")
	case errors.Is(err, service.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	default:
		logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
