// Package middleware provides HTTP middleware for the admin API.
package middleware

import (
	"net/http"
	"strings"

	"github.com/marmos91/attrmeta/pkg/api/auth"
	"github.com/marmos91/attrmeta/pkg/api/handlers"
)

// GetClaimsFromContext retrieves JWT claims from the request context.
// Returns nil if no claims are present.
var GetClaimsFromContext = auth.ClaimsFromContext

// extractBearerToken extracts the token from an Authorization header.
// Expects the format "Bearer <token>".
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return parts[1]
}

// JWTAuth validates the bearer token on every request and stores the
// claims in the request context. Requests without a valid token get a
// 401 problem response.
func JWTAuth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				handlers.Unauthorized(w, r, "Missing or malformed Authorization header")
				return
			}

			claims, err := jwtService.ValidateToken(token)
			if err != nil {
				handlers.Unauthorized(w, r, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAdmin rejects requests whose token does not carry the admin
// role. Must run after JWTAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())
		if claims == nil {
			handlers.Unauthorized(w, r, "Authentication required")
			return
		}

		if !claims.IsAdmin() {
			handlers.Forbidden(w, r, "Admin role required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
