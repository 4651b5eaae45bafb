package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "file", cfg.Store.Type)
	assert.Equal(t, "attribute_meta", cfg.OptionName)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, time.Hour, cfg.API.JWT.TokenDuration)
	assert.Equal(t, 12*time.Hour, cfg.Nonce.TTL)

	require.NoError(t, Validate(cfg))
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: debug
  format: json
  output: stderr
shutdown_timeout: 10s
option_name: custom_meta
store:
  type: memory
api:
  port: 9999
metrics:
  enabled: true
  port: 9191
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Logging.Level, "level is normalized to uppercase")
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout, "durations decode from strings")
	assert.Equal(t, "custom_meta", cfg.OptionName)
	assert.Equal(t, "memory", cfg.Store.Type)
	assert.Equal(t, 9999, cfg.API.Port)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9191, cfg.Metrics.Port)
}

func TestLoadAppliesDefaultsForMissingFields(t *testing.T) {
	path := writeConfigFile(t, `
store:
  type: memory
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "attribute_meta", cfg.OptionName)
	assert.Equal(t, 8080, cfg.API.Port)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "bad log level",
			yaml: "logging:\n  level: verbose\nstore:\n  type: memory\n",
		},
		{
			name: "bad log format",
			yaml: "logging:\n  format: xml\nstore:\n  type: memory\n",
		},
		{
			name: "unknown store type",
			yaml: "store:\n  type: redis\n",
		},
		{
			name: "file store without path",
			yaml: "store:\n  type: file\n",
		},
		{
			name: "out of range port",
			yaml: "store:\n  type: memory\napi:\n  port: 70000\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfigFile(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Store.Type = "memory"
	cfg.Store.File = nil
	cfg.Logging.Level = "DEBUG"
	cfg.API.Port = 8181

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, SaveConfig(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Store.Type, loaded.Store.Type)
	assert.Equal(t, cfg.Logging.Level, loaded.Logging.Level)
	assert.Equal(t, cfg.API.Port, loaded.API.Port)
}

func TestCreateProviderMemory(t *testing.T) {
	provider, err := CreateProvider(context.Background(), StoreConfig{Type: "memory"})
	require.NoError(t, err)
	defer provider.Close()

	require.NoError(t, provider.Save(context.Background(), "opt", []byte(`{}`)))
	data, err := provider.Load(context.Background(), "opt")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{}`), data)
}

func TestCreateProviderFile(t *testing.T) {
	dir := t.TempDir()
	provider, err := CreateProvider(context.Background(), StoreConfig{
		Type: "file",
		File: map[string]any{"path": dir},
	})
	require.NoError(t, err)
	defer provider.Close()

	require.NoError(t, provider.Save(context.Background(), "opt", []byte(`{"1":{}}`)))
	data, err := provider.Load(context.Background(), "opt")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"1":{}}`), data)
}

func TestCreateProviderFileRequiresPath(t *testing.T) {
	_, err := CreateProvider(context.Background(), StoreConfig{Type: "file"})
	assert.Error(t, err)
}

func TestCreateProviderUnknownType(t *testing.T) {
	_, err := CreateProvider(context.Background(), StoreConfig{Type: "redis"})
	assert.Error(t, err)
}

func TestMustLoadMissingExplicitFile(t *testing.T) {
	_, err := MustLoad(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
