package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/HerbHall/fleetpulse/internal/server"
)

// claimsKey is a context key for the authenticated operator's claims.
type claimsKey struct{}

// ClaimsFromContext returns the authenticated claims from the request context,
// or nil if the request is not authenticated.
func ClaimsFromContext(ctx context.Context) *Claims {
	if c, ok := ctx.Value(claimsKey{}).(*Claims); ok {
		return c
	}
	return nil
}

// Public paths that don't require authentication.
var publicPaths = map[string]bool{
	"/api/v1/auth/login": true,
}

// Middleware validates JWT access tokens on API routes. Non-API paths
// (healthz, readyz, metrics, swagger) are skipped, as are WebSocket paths,
// which authenticate via query parameter in their own handler.
func (s *Service) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				next.ServeHTTP(w, r)
				return
			}
			if strings.HasPrefix(r.URL.Path, "/api/v1/ws/") {
				next.ServeHTTP(w, r)
				return
			}
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				server.Unauthorized(w, "missing or invalid authorization header", r.URL.Path)
				return
			}
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := s.tokens.ValidateAccessToken(tokenString)
			if err != nil {
				server.Unauthorized(w, "invalid or expired access token", r.URL.Path)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
