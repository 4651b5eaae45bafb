package api

import (
	"os"
	"time"

	"github.com/marmos91/attrmeta/internal/logger"
)

// EnvAPISecret is the environment variable for the JWT signing secret.
const EnvAPISecret = "ATTRMETA_API_SECRET"

// EnvAdminSecret is the environment variable for the admin bootstrap
// secret exchanged for tokens at /api/v1/auth/token.
const EnvAdminSecret = "ATTRMETA_ADMIN_SECRET"

// APIConfig configures the admin REST API HTTP server.
//
// The API exposes health probes, a token exchange endpoint, and the
// attribute metadata management surface. It is always enabled since it
// is the remote management path for the metadata store.
type APIConfig struct {
	// Port is the HTTP port for the API endpoints.
	// Default: 8080
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. A zero or negative value means there is no timeout.
	// Default: 10s
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the response.
	// Default: 10s
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled. If zero, the value of ReadTimeout is used.
	// Default: 60s
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`

	// JWT configures JWT authentication for API endpoints.
	JWT JWTConfig `mapstructure:"jwt" yaml:"jwt"`
}

// JWTConfig configures JWT token generation and validation.
type JWTConfig struct {
	// Secret is the HMAC signing key for JWT tokens.
	// Must be at least 32 characters long.
	// Can also be set via ATTRMETA_API_SECRET environment variable;
	// the environment variable takes precedence over the config file.
	Secret string `mapstructure:"secret" yaml:"secret"`

	// AdminSecret is the bootstrap secret exchanged for admin tokens.
	// Can also be set via ATTRMETA_ADMIN_SECRET environment variable.
	AdminSecret string `mapstructure:"admin_secret" yaml:"admin_secret"`

	// TokenDuration is the lifetime of access tokens.
	// Default: 1h
	TokenDuration time.Duration `mapstructure:"token_duration" yaml:"token_duration"`
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *APIConfig) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.JWT.TokenDuration == 0 {
		c.JWT.TokenDuration = time.Hour
	}
}

// GetJWTSecret returns the JWT secret, preferring the environment variable.
// Returns empty string if neither env var nor config secret is set.
func (c *APIConfig) GetJWTSecret() string {
	envSecret := os.Getenv(EnvAPISecret)
	if envSecret != "" {
		if c.JWT.Secret != "" && c.JWT.Secret != envSecret {
			logger.Warn("JWT secret from environment variable overrides config file value",
				"env_var", EnvAPISecret)
		}
		return envSecret
	}
	return c.JWT.Secret
}

// GetAdminSecret returns the admin bootstrap secret, preferring the
// environment variable.
func (c *APIConfig) GetAdminSecret() string {
	if envSecret := os.Getenv(EnvAdminSecret); envSecret != "" {
		return envSecret
	}
	return c.JWT.AdminSecret
}

// HasJWTSecret returns whether a JWT secret is configured.
func (c *APIConfig) HasJWTSecret() bool {
	return c.GetJWTSecret() != ""
}
