package auth

import "github.com/golang-jwt/jwt/v5"

// Role constants for token claims.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// Claims represents the JWT claims carried by API access tokens.
type Claims struct {
	jwt.RegisteredClaims

	// Role is the caller's role, either "admin" or "viewer".
	Role string `json:"role"`
}

// IsAdmin returns whether the claims carry the admin role.
func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
