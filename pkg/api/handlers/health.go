package handlers

import (
	"errors"
	"net/http"

	"github.com/marmos91/attrmeta/internal/logger"
	"github.com/marmos91/attrmeta/pkg/options"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	provider options.Provider
	option   string
	version  string
}

// NewHealthHandler creates a health handler probing the given provider.
func NewHealthHandler(provider options.Provider, option, version string) *HealthHandler {
	return &HealthHandler{
		provider: provider,
		option:   option,
		version:  version,
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// Liveness reports that the process is running.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	WriteJSONOK(w, healthResponse{Status: "ok", Version: h.version})
}

// Readiness reports whether the options provider is reachable. A missing
// option slot still counts as ready since a fresh store has no blob yet.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	_, err := h.provider.Load(r.Context(), h.option)
	if err != nil && !errors.Is(err, options.ErrNotFound) {
		logger.WarnCtx(r.Context(), "readiness probe failed",
			logger.Option(h.option), logger.Err(err))
		WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}

	WriteJSONOK(w, healthResponse{Status: "ready", Version: h.version})
}
