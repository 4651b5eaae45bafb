package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/attrmeta/internal/logger"
	"github.com/marmos91/attrmeta/internal/telemetry"
	"github.com/marmos91/attrmeta/pkg/api"
	"github.com/marmos91/attrmeta/pkg/attrmeta"
	"github.com/marmos91/attrmeta/pkg/config"
	"github.com/marmos91/attrmeta/pkg/events"
	"github.com/marmos91/attrmeta/pkg/hooks"
	"github.com/marmos91/attrmeta/pkg/metrics"
	"github.com/marmos91/attrmeta/pkg/options/file"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the attrmeta daemon",
	Long: `Start the attrmeta daemon with the specified configuration.

The daemon opens the configured options backend, wires the attribute
lifecycle subscribers, and serves the admin API (plus the Prometheus
metrics endpoint when enabled).

Examples:
  # Start with default config location
  attrmetad start

  # Start with custom config file
  attrmetad start --config /etc/attrmeta/config.yaml

  # Start with environment variable overrides
  ATTRMETA_LOGGING_LEVEL=DEBUG attrmetad start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry (if enabled)
	telemetryCfg := cfg.Telemetry
	telemetryCfg.ServiceVersion = Version
	telemetryShutdown, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	} else {
		logger.Info("Telemetry disabled")
	}

	// Metrics server comes up first so the store records from the start.
	metricsServer := metrics.NewServer(cfg.Metrics)
	if metricsServer != nil {
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	} else {
		logger.Info("Metrics collection disabled")
	}

	// Open the options backend and build the store on top of it.
	provider, err := config.CreateProvider(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open options backend: %w", err)
	}
	defer func() {
		if err := provider.Close(); err != nil {
			logger.Error("options backend close error", "error", err)
		}
	}()
	logger.Info("Options backend ready", logger.StoreType(cfg.Store.Type), logger.Option(cfg.OptionName))

	store := attrmeta.New(provider, cfg.OptionName)

	// With the file backend, surface out-of-band edits to the document.
	// Another writer's save silently wins the document-level race, so at
	// least leave a trace in the logs.
	if fileProvider, ok := provider.(*file.Provider); ok {
		if err := fileProvider.Watch(ctx, store.OptionName(), func() {
			logger.Info("Option document changed on disk", logger.Option(store.OptionName()))
		}); err != nil {
			logger.Warn("Failed to watch option document", "error", err)
		}
	}

	// Wire the lifecycle subscribers.
	nonces := hooks.NewNonceService(cfg.API.GetJWTSecret(), cfg.Nonce.TTL)
	bus := events.NewBus()
	hooks.NewSubscriber(store, hooks.RoleAuthorizer{}, nonces).Register(bus)

	apiServer, err := api.NewServer(cfg.API, api.Deps{
		Store:    store,
		Bus:      bus,
		Provider: provider,
		Nonces:   nonces,
		Version:  Version,
	})
	if err != nil {
		return err
	}
	logger.Info("API server configured", "port", apiServer.Port())

	// Start servers in background
	serverCount := 1
	serverDone := make(chan error, 2)
	go func() {
		serverDone <- apiServer.Start(ctx)
	}()
	if metricsServer != nil {
		serverCount++
		go func() {
			serverDone <- metricsServer.Start(ctx)
		}()
	}

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Daemon is running. Press Ctrl+C to stop.")

	var firstErr error
	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()
	case firstErr = <-serverDone:
		signal.Stop(sigChan)
		serverCount--
		cancel()
	}

	// Wait for the remaining servers, bounded by the shutdown timeout.
	deadline := time.After(cfg.ShutdownTimeout)
	for i := 0; i < serverCount; i++ {
		select {
		case err := <-serverDone:
			if err != nil && firstErr == nil {
				firstErr = err
			}
		case <-deadline:
			logger.Error("Shutdown timed out", "timeout", cfg.ShutdownTimeout)
			return fmt.Errorf("shutdown timed out after %s", cfg.ShutdownTimeout)
		}
	}

	if firstErr != nil {
		logger.Error("Daemon stopped with error", "error", firstErr)
		return firstErr
	}

	logger.Info("Daemon stopped gracefully")
	return nil
}
