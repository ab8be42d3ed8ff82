package auth

import (
	"context"

	"github.com/foodgram/foodgram/internal/model"
)

type contextKey string

const authContextKey contextKey = "auth_context"

// ContextWithAuth adds AuthContext to the context.
func ContextWithAuth(ctx context.Context, auth *model.AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, auth)
}

// AuthFromContext retrieves AuthContext from the context.
// Returns nil if not present.
func AuthFromContext(ctx context.Context) *model.AuthContext {
	auth, ok := ctx.Value(authContextKey).(*model.AuthContext)
	if !ok {
		return nil
	}
	return auth
}

// UserIDFromContext returns the authenticated user ID, or 0.
func UserIDFromContext(ctx context.Context) int64 {
	if auth := AuthFromContext(ctx); auth != nil {
		return auth.UserID
	}
	return 0
}

// ViewerFromContext returns the request viewer. Requests without an auth
// context are anonymous.
func ViewerFromContext(ctx context.Context) model.Viewer {
	return AuthFromContext(ctx).Viewer()
}
