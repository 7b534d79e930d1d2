// Package http provides HTTP middleware for the streamable MCP transport.
package http

import (
	"net/http"
	"strings"

	"github.com/opsbeacon/mcp-opsbeacon/pkg/auth"
)

// AuthMiddleware extracts inbound credentials from HTTP headers and adds
// them to the request context for the MCP authenticators. Accepts a Bearer
// token in the Authorization header or an X-API-Key header.
func AuthMiddleware(requireAuth bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)

			if requireAuth && token == "" {
				w.Header().Set("WWW-Authenticate", "Bearer")
				http.Error(w, "Unauthorized: missing authentication token", http.StatusUnauthorized)
				return
			}

			if token != "" {
				r = r.WithContext(auth.WithToken(r.Context(), token))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth returns middleware that rejects unauthenticated requests.
func RequireAuth() func(http.Handler) http.Handler {
	return AuthMiddleware(true)
}

// OptionalAuth returns middleware that allows anonymous requests through.
func OptionalAuth() func(http.Handler) http.Handler {
	return AuthMiddleware(false)
}

func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.Header.Get("X-API-Key")
}
