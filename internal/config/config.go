package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all client configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Storage StorageConfig `mapstructure:"storage"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig describes the backend the client talks to
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	LoginPath string        `mapstructure:"login_path"`
}

// Storage drivers for the persisted bearer token
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

type StorageConfig struct {
	Driver        string      `mapstructure:"driver"`
	Path          string      `mapstructure:"path"`
	EncryptionKey string      `mapstructure:"encryption_key"`
	Redis         RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type ChatConfig struct {
	DefaultModel   string        `mapstructure:"default_model"`
	SearchLimit    int           `mapstructure:"search_limit"`
	ModelsCacheTTL time.Duration `mapstructure:"models_cache_ttl"`
}

type LoggingConfig struct {
	Level        string        `mapstructure:"level"`
	Format       string        `mapstructure:"format"`
	File         string        `mapstructure:"file"`
	MaxAge       time.Duration `mapstructure:"max_age"`
	RotationTime time.Duration `mapstructure:"rotation_time"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// SetConfigFile reports a missing file as an fs error, not ConfigFileNotFoundError
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that have no sensible fallback
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	switch c.Storage.Driver {
	case StorageFile, StorageSQLite, StorageRedis, StorageMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// API
	v.SetDefault("api.base_url", "http://localhost:8000/api")
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("api.login_path", "/login")

	// Storage
	v.SetDefault("storage.driver", StorageFile)
	v.SetDefault("storage.path", defaultStoragePath())
	v.SetDefault("storage.redis.host", "localhost")
	v.SetDefault("storage.redis.port", 6379)
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.prefix", "chatclient:")

	// Chat
	v.SetDefault("chat.default_model", "gemini-1.5-pro")
	v.SetDefault("chat.search_limit", 5)
	v.SetDefault("chat.models_cache_ttl", "5m")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.max_age", "168h") // 7 days
	v.SetDefault("logging.rotation_time", "24h")
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("api.base_url", "CHAT_API_URL")
	v.BindEnv("api.timeout", "CHAT_API_TIMEOUT")

	v.BindEnv("storage.driver", "CHAT_STORAGE_DRIVER")
	v.BindEnv("storage.path", "CHAT_STORAGE_PATH")
	v.BindEnv("storage.encryption_key", "CHAT_ENCRYPTION_KEY")
	v.BindEnv("storage.redis.host", "REDIS_HOST")
	v.BindEnv("storage.redis.password", "REDIS_PASSWORD")

	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.file", "LOG_FILE")
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".chatclient"
	}
	return filepath.Join(dir, "chatclient")
}
