package config

import (
	"context"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"

	"github.com/marmos91/attrmeta/pkg/options"
	"github.com/marmos91/attrmeta/pkg/options/badger"
	"github.com/marmos91/attrmeta/pkg/options/file"
	"github.com/marmos91/attrmeta/pkg/options/memory"
	"github.com/marmos91/attrmeta/pkg/options/sqldb"
)

// CreateProvider creates an options provider from configuration.
func CreateProvider(ctx context.Context, cfg StoreConfig) (options.Provider, error) {
	switch cfg.Type {
	case "memory":
		return memory.New(), nil
	case "file":
		return createFileProvider(cfg.File)
	case "badger":
		return createBadgerProvider(ctx, cfg.Badger)
	case "database":
		return createDatabaseProvider(cfg.Database)
	default:
		return nil, fmt.Errorf("unknown store type: %q", cfg.Type)
	}
}

// fileProviderConfig mirrors file.Config with decodable field types.
type fileProviderConfig struct {
	Path     string `mapstructure:"path"`
	DirMode  uint32 `mapstructure:"dir_mode"`
	FileMode uint32 `mapstructure:"file_mode"`
}

func createFileProvider(raw map[string]any) (options.Provider, error) {
	var fileCfg fileProviderConfig
	if err := mapstructure.Decode(raw, &fileCfg); err != nil {
		return nil, fmt.Errorf("invalid file config: %w", err)
	}
	if fileCfg.Path == "" {
		return nil, fmt.Errorf("file store requires path to be set")
	}

	return file.New(file.Config{
		Path:     fileCfg.Path,
		DirMode:  os.FileMode(fileCfg.DirMode),
		FileMode: os.FileMode(fileCfg.FileMode),
	})
}

func createBadgerProvider(ctx context.Context, raw map[string]any) (options.Provider, error) {
	var badgerCfg badger.Config
	if err := mapstructure.Decode(raw, &badgerCfg); err != nil {
		return nil, fmt.Errorf("invalid badger config: %w", err)
	}

	provider, err := badger.New(ctx, badgerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return provider, nil
}

func createDatabaseProvider(raw map[string]any) (options.Provider, error) {
	var dbCfg sqldb.Config
	if err := mapstructure.Decode(raw, &dbCfg); err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}

	dbCfg.ApplyDefaults()
	if err := dbCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}

	provider, err := sqldb.New(&dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return provider, nil
}
