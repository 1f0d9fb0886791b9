package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "/login", cfg.API.LoginPath)
	assert.Equal(t, StorageFile, cfg.Storage.Driver)
	assert.Equal(t, "gemini-1.5-pro", cfg.Chat.DefaultModel)
	assert.Equal(t, 5, cfg.Chat.SearchLimit)
	assert.Equal(t, 5*time.Minute, cfg.Chat.ModelsCacheTTL)
	assert.Equal(t, "localhost:6379", cfg.Storage.Redis.Addr())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
api:
  base_url: https://chat.example.com/api
  timeout: 10s
storage:
  driver: sqlite
  path: /tmp/chatclient
chat:
  default_model: llama3
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://chat.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, StorageSQLite, cfg.Storage.Driver)
	assert.Equal(t, "llama3", cfg.Chat.DefaultModel)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing base url", mutate: func(c *Config) { c.API.BaseURL = "" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.API.Timeout = 0 }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "etcd" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				API:     APIConfig{BaseURL: "http://x/api", Timeout: time.Second},
				Storage: StorageConfig{Driver: StorageMemory},
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
