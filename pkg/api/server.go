package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/marmos91/attrmeta/internal/logger"
	"github.com/marmos91/attrmeta/pkg/api/auth"
)

// Server is the admin API HTTP server.
type Server struct {
	server *http.Server
	config APIConfig

	shutdownOnce sync.Once
}

// NewServer creates the API server. The JWT signing secret must be
// configured; NewServer fails otherwise so the daemon refuses to start
// with an unauthenticated management surface.
func NewServer(config APIConfig, deps Deps) (*Server, error) {
	config.ApplyDefaults()

	jwtService, err := auth.NewJWTService(auth.JWTConfig{
		Secret:        config.GetJWTSecret(),
		TokenDuration: config.JWT.TokenDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	router := NewRouter(config, jwtService, deps)

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			Handler:      router,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		config: config,
	}, nil
}

// Start runs the server until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	logger.Info("starting admin API server", "port", s.config.Port)

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("API server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	}
}

// Stop gracefully shuts down the server. Safe to call multiple times.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		logger.Info("stopping admin API server")
		err = s.server.Shutdown(ctx)
	})
	return err
}

// Port returns the configured listen port.
func (s *Server) Port() int {
	return s.config.Port
}
