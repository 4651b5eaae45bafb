package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/marmos91/attrmeta/internal/logger"
	"github.com/marmos91/attrmeta/pkg/api/auth"
)

// AuthHandler exchanges the admin bootstrap secret for access tokens.
type AuthHandler struct {
	jwtService  *auth.JWTService
	adminSecret string
}

// NewAuthHandler creates an auth handler. adminSecret is the bootstrap
// secret callers must present to obtain an admin token.
func NewAuthHandler(jwtService *auth.JWTService, adminSecret string) *AuthHandler {
	return &AuthHandler{
		jwtService:  jwtService,
		adminSecret: adminSecret,
	}
}

type tokenRequest struct {
	Secret  string `json:"secret"`
	Subject string `json:"subject,omitempty"`
}

// Token handles POST /api/v1/auth/token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if h.adminSecret == "" {
		logger.WarnCtx(r.Context(), "token exchange rejected, no admin secret configured")
		Unauthorized(w, r, "Token exchange is not configured")
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.adminSecret)) != 1 {
		Unauthorized(w, r, "Invalid admin secret")
		return
	}

	subject := req.Subject
	if subject == "" {
		subject = "admin"
	}

	token, err := h.jwtService.GenerateToken(subject, auth.RoleAdmin)
	if err != nil {
		logger.ErrorCtx(r.Context(), "failed to generate token", logger.Err(err))
		InternalServerError(w, r, "Failed to generate token")
		return
	}

	logger.InfoCtx(r.Context(), "issued admin token", logger.Actor(subject))
	WriteJSONOK(w, token)
}
