package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/foodgram/foodgram/internal/auth"
	"github.com/foodgram/foodgram/internal/model"
)

// RequireScope lets the request through when the authenticated key holds
// any of the scopes. Admin keys pass every check. Anonymous requests get 401,
// so it also serves as the "authentication required" guard behind OptionalAuth.
func RequireScope(anyOf ...string) func(http.Handler) http.Handler {
	want := strings.Join(anyOf, " or ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := auth.AuthFromContext(r.Context())
			switch {
			case authCtx == nil:
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			case slices.ContainsFunc(anyOf, authCtx.HasScope):
				next.ServeHTTP(w, r)
			default:
				writeError(w, http.StatusForbidden, "FORBIDDEN", "API key lacks the "+want+" scope")
			}
		})
	}
}

func RequireRead() func(http.Handler) http.Handler  { return RequireScope(model.ScopeRead) }
func RequireWrite() func(http.Handler) http.Handler { return RequireScope(model.ScopeWrite) }

// RequireAdmin guards reference data writes and account removal.
func RequireAdmin() func(http.Handler) http.Handler { return RequireScope(model.ScopeAdmin) }
