// Package config loads the runtime configuration from the environment.
//
// A `.env` file in the working directory is loaded first, then:
//   - DATABASE_URL is mapped to database.url
//   - PORT is mapped to server.port
//   - TODO_<SECTION>_<KEY> is mapped to <section>.<key>,
//     e.g. TODO_DATABASE_MAX_OPEN_CONNS -> database.max_open_conns
//
// TODO_ variables win over PORT.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "TODO_"

// Config is the root configuration object.
type Config struct {
	Server   ServerConfig   `koanf:"server" validate:"required"`
	Database DatabaseConfig `koanf:"database" validate:"required"`
	Log      LogConfig      `koanf:"log" validate:"required"`
}

// ServerConfig groups settings for the HTTP API.
type ServerConfig struct {
	Port         int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"required"`
	CORSOrigins  []string      `koanf:"cors_origins" validate:"required,min=1"`
}

// DatabaseConfig holds the connection string and pool tuning.
type DatabaseConfig struct {
	URL             string        `koanf:"url" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"min=1"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	SlowThreshold   time.Duration `koanf:"slow_threshold"`
	MigrateOnStart  bool          `koanf:"migrate_on_start"`
}

// LogConfig selects the zerolog level and writer.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=console json"`
}

var defaults = map[string]any{
	"server.port":                8080,
	"server.read_timeout":        "10s",
	"server.write_timeout":       "30s",
	"server.idle_timeout":        "1m",
	"server.cors_origins":        "https://*,http://*",
	"database.max_open_conns":    100,
	"database.max_idle_conns":    10,
	"database.conn_max_lifetime": "1h",
	"database.slow_threshold":    "1s",
	"database.migrate_on_start":  false,
	"log.level":                  "info",
	"log.format":                 "console",
}

// Option overrides a value after the environment has been read.
type Option func(k *koanf.Koanf) error

// WithDatabaseURL replaces database.url when url is not empty.
func WithDatabaseURL(url string) Option {
	return func(k *koanf.Koanf) error {
		if url == "" {
			return nil
		}
		return k.Set("database.url", url)
	}
}

// WithLogLevel replaces log.level when level is not empty.
func WithLogLevel(level string) Option {
	return func(k *koanf.Koanf) error {
		if level == "" {
			return nil
		}
		return k.Set("log.level", strings.ToLower(level))
	}
}

// Load reads the process environment, applies opts, and validates the result.
func Load(opts ...Option) (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("setting default %s: %w", key, err)
		}
	}

	providers := []*env.Env{
		env.Provider("PORT", ".", exact("PORT", "server.port")),
		env.Provider("DATABASE_URL", ".", exact("DATABASE_URL", "database.url")),
		env.Provider(envPrefix, ".", sectionKey),
	}
	for _, p := range providers {
		if err := k.Load(p, nil); err != nil {
			return nil, fmt.Errorf("loading environment: %w", err)
		}
	}

	for _, opt := range opts {
		if err := opt(k); err != nil {
			return nil, fmt.Errorf("applying config option: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// exact maps a single variable name to key and ignores anything else
// that happens to share the prefix.
func exact(name, key string) func(string) string {
	return func(s string) string {
		if s != name {
			return ""
		}
		return key
	}
}

// sectionKey turns TODO_DATABASE_MAX_OPEN_CONNS into database.max_open_conns.
func sectionKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	section, key, ok := strings.Cut(s, "_")
	if !ok || key == "" {
		return ""
	}
	return section + "." + key
}
