package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"Placemap/internal/core/orgs"
)

type contextKey string

const orgContextKey contextKey = "org"

// OrgAuth resolves an optional "Authorization: Bearer <api_token>" header to
// the organization owning the token and stores it in the request context.
// Requests without the header pass through anonymously; an unknown token is
// rejected so a partner never silently writes without tag authorization.
func OrgAuth(gateway orgs.Gateway) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
				return
			}
			org, err := gateway.GetOrgByAPIToken(r.Context(), token)
			if err != nil {
				if errors.Is(err, orgs.ErrNotFound) {
					http.Error(w, "Unknown API token", http.StatusUnauthorized)
					return
				}
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			ctx := context.WithValue(r.Context(), orgContextKey, org)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetOrg returns the organization bound to the request's bearer token, nil
// for anonymous requests.
func GetOrg(r *http.Request) *orgs.Organization {
	org, _ := r.Context().Value(orgContextKey).(*orgs.Organization)
	return org
}
