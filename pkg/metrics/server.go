package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marmos91/attrmeta/internal/logger"
)

// Config configures the Prometheus metrics HTTP server.
type Config struct {
	// Enabled controls whether metrics collection and the HTTP server
	// are active. Default: false (zero overhead when off).
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the /metrics endpoint. Default: 9090.
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// Server serves the /metrics endpoint.
type Server struct {
	server *http.Server
}

// NewServer initializes the registry and returns a metrics server, or
// nil when metrics are disabled.
func NewServer(cfg Config) *Server {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Port == 0 {
		cfg.Port = 9090
	}

	InitRegistry()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{}))

	return &Server{
		server: &http.Server{
			Addr:        fmt.Sprintf(":%d", cfg.Port),
			Handler:     mux,
			ReadTimeout: 10 * time.Second,
		},
	}
}

// Start serves /metrics until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown: %w", err)
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}
