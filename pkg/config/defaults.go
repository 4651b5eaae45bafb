package config

import (
	"strings"
	"time"

	"github.com/marmos91/attrmeta/pkg/attrmeta"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Called after loading configuration from file and environment to fill
// in missing values. Zero values (0, "", false, nil) are replaced with
// defaults; explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(cfg)
	applyShutdownTimeoutDefaults(cfg)
	applyStoreDefaults(&cfg.Store)
	applyMetricsDefaults(cfg)
	applyAPIDefaults(cfg)
	applyNonceDefaults(&cfg.Nonce)

	if cfg.OptionName == "" {
		cfg.OptionName = attrmeta.DefaultOptionName
	}
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *Config) {
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "attrmeta"
	}
	if cfg.Telemetry.ServiceVersion == "" {
		cfg.Telemetry.ServiceVersion = "dev"
	}
	if cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = "localhost:4317"
	}
	if cfg.Telemetry.SampleRate == 0 {
		cfg.Telemetry.SampleRate = 1.0
	}
}

func applyShutdownTimeoutDefaults(cfg *Config) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// applyStoreDefaults sets provider backend defaults.
func applyStoreDefaults(cfg *StoreConfig) {
	if cfg.Type == "" {
		cfg.Type = "file"
	}
}

func applyMetricsDefaults(cfg *Config) {
	if cfg.Metrics.Enabled && cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
}

// applyAPIDefaults sets admin API server defaults.
// The API is always enabled (it is how metadata gets managed remotely).
func applyAPIDefaults(cfg *Config) {
	cfg.API.ApplyDefaults()
}

func applyNonceDefaults(cfg *NonceConfig) {
	if cfg.TTL == 0 {
		cfg.TTL = 12 * time.Hour
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// Useful for generating sample configuration files and for tests.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Logging: LoggingConfig{},
		Store: StoreConfig{
			Type: "file",
			File: map[string]any{
				"path": "/var/lib/attrmeta/options",
			},
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
