// Package api implements the admin REST API for the attribute metadata
// store.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/marmos91/attrmeta/internal/logger"
	"github.com/marmos91/attrmeta/pkg/api/auth"
	"github.com/marmos91/attrmeta/pkg/api/handlers"
	"github.com/marmos91/attrmeta/pkg/api/middleware"
	"github.com/marmos91/attrmeta/pkg/attrmeta"
	"github.com/marmos91/attrmeta/pkg/events"
	"github.com/marmos91/attrmeta/pkg/hooks"
	"github.com/marmos91/attrmeta/pkg/options"
)

// Deps carries the collaborators the router wires into its handlers.
type Deps struct {
	Store    *attrmeta.Store
	Bus      *events.Bus
	Provider options.Provider

	// Nonces mints form tokens for the field endpoint. May be nil.
	Nonces hooks.NonceIssuer

	// Version is reported by the health endpoints.
	Version string
}

// NewRouter builds the API router with all routes and middleware.
func NewRouter(config APIConfig, jwtService *auth.JWTService, deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	healthHandler := handlers.NewHealthHandler(deps.Provider, deps.Store.OptionName(), deps.Version)
	authHandler := handlers.NewAuthHandler(jwtService, config.GetAdminSecret())
	attrsHandler := handlers.NewAttributesHandler(deps.Store, deps.Bus, deps.Nonces)

	// Health endpoints stay unauthenticated so orchestrators can probe
	// them.
	r.Get("/health", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/health", http.StatusMovedPermanently)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/token", authHandler.Token)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(jwtService))

			r.Get("/attributes/{id}/meta", attrsHandler.GetAll)
			r.Get("/attributes/{id}/meta/{key}", attrsHandler.Get)
			r.Get("/attributes/{id}/field", attrsHandler.Field)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Put("/attributes/{id}/meta/{key}", attrsHandler.Update)
				r.Delete("/attributes/{id}/meta/{key}", attrsHandler.Delete)
				r.Delete("/attributes/{id}/meta", attrsHandler.DeleteAll)
				r.Post("/attributes/{id}/lifecycle", attrsHandler.Lifecycle)
			})
		})
	})

	return r
}

// isHealthPath reports whether the request targets a health probe.
// Probes fire every few seconds, so they log at DEBUG instead of INFO.
func isHealthPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/health/")
}

// requestLogger logs each request with its status and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		attrs := []any{
			logger.RequestID(chimw.GetReqID(r.Context())),
			logger.Method(r.Method),
			logger.Route(r.URL.Path),
			logger.Status(ww.Status()),
			logger.ClientIP(r.RemoteAddr),
			logger.DurationMs(logger.Duration(start)),
		}

		if isHealthPath(r.URL.Path) {
			logger.Debug("http request", attrs...)
			return
		}
		logger.Info("http request", attrs...)
	})
}
