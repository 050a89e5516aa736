package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all application configuration.
type Config struct {
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Manifest ManifestConfig `mapstructure:"manifest"`
	Store    StoreConfig    `mapstructure:"store"`
	Secrets  SecretsConfig  `mapstructure:"secrets"`
	Log      LogConfig      `mapstructure:"log"`
}

// CatalogConfig locates the fragment catalog.
type CatalogConfig struct {
	// Dir is the catalog root containing <service>/service.yml
	// fragments plus networks.yml and env.yml.
	Dir string `mapstructure:"dir"`
}

// ManifestConfig controls the emitted manifest.
type ManifestConfig struct {
	// Path of the output docker-compose document.
	Path string `mapstructure:"path"`

	// Backup makes a timestamped copy of the previous manifest before
	// overwriting it.
	Backup bool `mapstructure:"backup"`
}

// StoreConfig selects the placeholder store backend.
type StoreConfig struct {
	// Backend is "file", "sqlite" or "memory".
	Backend string `mapstructure:"backend"`

	// Path of the JSON store file (file backend).
	Path string `mapstructure:"path"`

	// DSN of the SQLite database (sqlite backend).
	DSN string `mapstructure:"dsn"`
}

// SecretsConfig controls placeholder resolution.
type SecretsConfig struct {
	// DefaultPassword, when set, is used for password placeholders
	// instead of generating random values. Set via
	// STACKSMITH_SECRETS_DEFAULT_PASSWORD or the -p flag.
	DefaultPassword string `mapstructure:"default_password"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("catalog.dir", ".templates")
	v.SetDefault("manifest.path", "docker-compose.yml")
	v.SetDefault("manifest.backup", true)
	v.SetDefault("store.backend", "file")
	v.SetDefault("store.path", "./data/placeholders.json")
	v.SetDefault("store.dsn", "./data/stacksmith.db")
	v.SetDefault("secrets.default_password", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Load from file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// Only return error if file was explicitly specified and is invalid
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			// File not found is OK, we'll use defaults
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("STACKSMITH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format.
// Logs go to stderr so command output stays parseable.
func SetupLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
