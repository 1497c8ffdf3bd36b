package middleware

import (
	"context"
	"errors"
	"net/http"

	"Placemap/internal/api/session"
	"Placemap/internal/core/users"
)

const userContextKey contextKey = "user"

// RequireRole gates a route on a logged-in session whose account holds at
// least the given role. The resolved account is stored in the request
// context for handlers.
func RequireRole(service users.Service, minRole users.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := session.CurrentEmail(r)
			if email == "" {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}
			user, err := service.AuthorizeUserByEmail(r.Context(), email, minRole)
			if err != nil {
				if errors.Is(err, users.ErrUnauthorized) || errors.Is(err, users.ErrNotFound) {
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser returns the account resolved by RequireRole, nil when the route
// was not gated.
func GetUser(r *http.Request) *users.User {
	user, _ := r.Context().Value(userContextKey).(*users.User)
	return user
}
