// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// Backend mode values for the STORAGE_BACKEND flag.
const (
	BackendLocal    = "local"
	BackendSupabase = "supabase"
)

// Static errors for configuration validation. All of them are fatal at
// startup; missing remote-mode configuration is never deferred to first upload.
var (
	// ErrUnknownBackend is returned when STORAGE_BACKEND is not a known mode.
	ErrUnknownBackend = errors.New("config: STORAGE_BACKEND must be \"local\" or \"supabase\"")
	// ErrSupabaseURLRequired is returned when supabase mode lacks SUPABASE_URL.
	ErrSupabaseURLRequired = errors.New("config: SUPABASE_URL is required in supabase mode")
	// ErrSupabaseKeyRequired is returned when supabase mode lacks SUPABASE_SECRET_ACCESS_KEY.
	ErrSupabaseKeyRequired = errors.New("config: SUPABASE_SECRET_ACCESS_KEY is required in supabase mode")
	// ErrSupabaseBucketRequired is returned when supabase mode lacks SUPABASE_BUCKET_NAME.
	ErrSupabaseBucketRequired = errors.New("config: SUPABASE_BUCKET_NAME is required in supabase mode")
)

// Config holds all configuration for the application. It is resolved once at
// process start and immutable afterwards.
type Config struct {
	// Server settings
	Port int `env:"PORT, default=8080" json:"port"`

	// Storage backend selection
	StorageBackend string `env:"STORAGE_BACKEND, default=local" json:"storage_backend"`

	// Supabase settings (required in supabase mode)
	SupabaseURL    string `env:"SUPABASE_URL" json:"supabase_url,omitempty"`
	SupabaseKey    string `env:"SUPABASE_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON
	SupabaseBucket string `env:"SUPABASE_BUCKET_NAME, default=storage" json:"supabase_bucket"`

	// Local backend settings
	LocalStorageRoot   string `env:"LOCAL_STORAGE_ROOT" json:"local_storage_root,omitempty"`
	LocalPublicBaseURL string `env:"LOCAL_PUBLIC_BASE_URL, default=http://localhost:8080/media" json:"local_public_base_url"`

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// SupabaseEnabled returns true if the remote backend is selected.
func (c *Config) SupabaseEnabled() bool {
	return strings.EqualFold(c.StorageBackend, BackendSupabase)
}

// Load reads configuration from environment variables using go-envconfig
// and validates it.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the selected backend has all required configuration.
func (c *Config) Validate() error {
	switch strings.ToLower(c.StorageBackend) {
	case BackendLocal:
		return nil
	case BackendSupabase:
		if c.SupabaseURL == "" {
			return ErrSupabaseURLRequired
		}
		if c.SupabaseKey == "" {
			return ErrSupabaseKeyRequired
		}
		if c.SupabaseBucket == "" {
			return ErrSupabaseBucketRequired
		}
		return nil
	default:
		return ErrUnknownBackend
	}
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, StorageBackend: %s, SupabaseURL: %s, SupabaseBucket: %s, LocalStorageRoot: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.StorageBackend,
		c.SupabaseURL,
		c.SupabaseBucket,
		c.LocalStorageRoot,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
