package commands

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/attrmeta/internal/cli/prompt"
	"github.com/marmos91/attrmeta/pkg/api"
	"github.com/marmos91/attrmeta/pkg/config"
)

var (
	initForce       bool
	initInteractive bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a configuration file",
	Long: `Initialize an attrmeta configuration file with generated secrets.

By default, the configuration file is created at $XDG_CONFIG_HOME/attrmeta/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location and generated secrets
  attrmetad init

  # Walk through the settings interactively
  attrmetad init --interactive

  # Force overwrite existing config
  attrmetad init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "Prompt for settings instead of using defaults")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := GetConfigFile()
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	if _, err := os.Stat(configPath); err == nil && !initForce {
		return fmt.Errorf("configuration file already exists: %s\nUse --force to overwrite", configPath)
	}

	cfg := config.GetDefaultConfig()

	if initInteractive {
		if err := promptSettings(cfg); err != nil {
			if prompt.IsAborted(err) {
				return fmt.Errorf("aborted")
			}
			return err
		}
	}

	if cfg.API.JWT.Secret == "" {
		secret, err := generateSecret(32)
		if err != nil {
			return fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		cfg.API.JWT.Secret = secret
	}
	if cfg.API.JWT.AdminSecret == "" {
		secret, err := generateSecret(32)
		if err != nil {
			return fmt.Errorf("failed to generate admin secret: %w", err)
		}
		cfg.API.JWT.AdminSecret = secret
	}

	if err := config.SaveConfig(cfg, configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to customize your setup")
	fmt.Println("  2. Start the daemon with: attrmetad start")
	fmt.Printf("  3. Or specify custom config: attrmetad start --config %s\n", configPath)
	fmt.Println("\nSecurity note:")
	fmt.Println("  Random secrets have been generated for development use.")
	fmt.Println("  For production, generate secure secrets and use environment variables:")
	fmt.Println("    # Generates a 64-character hex string (32 bytes of entropy)")
	fmt.Printf("    export %s=$(openssl rand -hex 32)\n", api.EnvAPISecret)
	fmt.Printf("    export %s=$(openssl rand -hex 32)\n", api.EnvAdminSecret)

	return nil
}

// promptSettings walks the user through the main configuration choices.
// Secrets left empty are generated afterwards.
func promptSettings(cfg *config.Config) error {
	storeType, err := prompt.Select("Options backend", []string{"file", "badger", "database", "memory"})
	if err != nil {
		return err
	}
	cfg.Store.Type = storeType

	switch storeType {
	case "file":
		path, err := prompt.Input("Options directory", "/var/lib/attrmeta/options")
		if err != nil {
			return err
		}
		cfg.Store.File = map[string]any{"path": path}
		cfg.Store.Badger, cfg.Store.Database = nil, nil
	case "badger":
		path, err := prompt.Input("Badger database directory", "/var/lib/attrmeta/badger")
		if err != nil {
			return err
		}
		cfg.Store.Badger = map[string]any{"path": path}
		cfg.Store.File, cfg.Store.Database = nil, nil
	case "database":
		path, err := prompt.Input("SQLite database path", "/var/lib/attrmeta/attrmeta.db")
		if err != nil {
			return err
		}
		cfg.Store.Database = map[string]any{
			"type":   "sqlite",
			"sqlite": map[string]any{"path": path},
		}
		cfg.Store.File, cfg.Store.Badger = nil, nil
	case "memory":
		cfg.Store.File, cfg.Store.Badger, cfg.Store.Database = nil, nil, nil
	}

	port, err := prompt.InputPort("API port", cfg.API.Port)
	if err != nil {
		return err
	}
	cfg.API.Port = port

	metricsEnabled, err := prompt.Confirm("Enable Prometheus metrics")
	if err != nil {
		return err
	}
	cfg.Metrics.Enabled = metricsEnabled
	if metricsEnabled {
		metricsPort, err := prompt.InputPort("Metrics port", 9090)
		if err != nil {
			return err
		}
		cfg.Metrics.Port = metricsPort
	}

	secret, err := prompt.Password("JWT signing secret (empty to generate)", 32)
	if err != nil {
		return err
	}
	cfg.API.JWT.Secret = secret

	adminSecret, err := prompt.Password("Admin bootstrap secret (empty to generate)", 16)
	if err != nil {
		return err
	}
	cfg.API.JWT.AdminSecret = adminSecret

	return nil
}

// generateSecret returns a hex string carrying n bytes of entropy.
func generateSecret(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
