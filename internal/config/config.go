// Package config loads layered settings: built-in defaults, an optional
// YAML file, a .env file, STUDYDECK_ environment variables and finally
// command-line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/conorfennell/studydeck/internal/validation"
)

// EnvPrefix namespaces environment variables. Nested keys use a double
// underscore: STUDYDECK_DATABASE__DSN sets database.dsn.
const EnvPrefix = "STUDYDECK_"

type ServerConfig struct {
	Addr string `koanf:"addr" json:"addr" validate:"required"`
}

type DatabaseConfig struct {
	Driver string `koanf:"driver" json:"driver" validate:"oneof=sqlite postgres"`
	DSN    string `koanf:"dsn" json:"dsn" validate:"required"`
}

// APIConfig points the CLI at a remote server instead of a local database.
type APIConfig struct {
	URL     string        `koanf:"url" json:"url" validate:"omitempty,url"`
	Timeout time.Duration `koanf:"timeout" json:"timeout" validate:"gte=0"`
}

type ReconcileConfig struct {
	Timeout time.Duration `koanf:"timeout" json:"timeout" validate:"gte=0"`
}

type SchedulerConfig struct {
	ScaleByEase bool `koanf:"scale_by_ease" json:"scale_by_ease"`
}

type GeneratorConfig struct {
	Kind   string `koanf:"kind" json:"kind" validate:"oneof=markdown openai"`
	APIKey string `koanf:"api_key" json:"api_key" validate:"required_if=Kind openai"`
	APIURL string `koanf:"api_url" json:"api_url" validate:"omitempty,url"`
	Model  string `koanf:"model" json:"model"`
}

type DigestConfig struct {
	Interval time.Duration `koanf:"interval" json:"interval" validate:"gte=0"`
}

type LogConfig struct {
	Level string `koanf:"level" json:"level" validate:"oneof=debug info warn error"`
}

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server" json:"server"`
	Database  DatabaseConfig  `koanf:"database" json:"database"`
	API       APIConfig       `koanf:"api" json:"api"`
	Reconcile ReconcileConfig `koanf:"reconcile" json:"reconcile"`
	Scheduler SchedulerConfig `koanf:"scheduler" json:"scheduler"`
	Generator GeneratorConfig `koanf:"generator" json:"generator"`
	Digest    DigestConfig    `koanf:"digest" json:"digest"`
	Log       LogConfig       `koanf:"log" json:"log"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server:    ServerConfig{Addr: ":8080"},
		Database:  DatabaseConfig{Driver: "sqlite", DSN: "studydeck.db"},
		API:       APIConfig{Timeout: 15 * time.Second},
		Reconcile: ReconcileConfig{Timeout: 30 * time.Second},
		Generator: GeneratorConfig{Kind: "markdown"},
		Digest:    DigestConfig{Interval: 24 * time.Hour},
		Log:       LogConfig{Level: "info"},
	}
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"addr":          "server.addr",
	"db-driver":     "database.driver",
	"db":            "database.dsn",
	"api-url":       "api.url",
	"api-timeout":   "api.timeout",
	"scale-by-ease": "scheduler.scale_by_ease",
	"generator":     "generator.kind",
	"log-level":     "log.level",
}

// BindFlags registers the global flags whose values override every other
// source when set.
func BindFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("config", "", "path to a YAML config file")
	fs.String("addr", d.Server.Addr, "HTTP listen address")
	fs.String("db-driver", d.Database.Driver, "database driver (sqlite|postgres)")
	fs.String("db", d.Database.DSN, "database DSN or SQLite file path")
	fs.String("api-url", d.API.URL, "use the API server at this URL instead of a local database")
	fs.Duration("api-timeout", d.API.Timeout, "API request timeout")
	fs.Bool("scale-by-ease", d.Scheduler.ScaleByEase, "scale review intervals by ease factor")
	fs.String("generator", d.Generator.Kind, "draft generator (markdown|openai)")
	fs.String("log-level", d.Log.Level, "log level (debug|info|warn|error)")
}

// defaults serves Default() as a koanf provider.
type defaults struct{}

func (defaults) ReadBytes() ([]byte, error) {
	return nil, errors.New("config: defaults provider does not support ReadBytes")
}

func (defaults) Read() (map[string]any, error) {
	d := Default()
	return map[string]any{
		"server":    map[string]any{"addr": d.Server.Addr},
		"database":  map[string]any{"driver": d.Database.Driver, "dsn": d.Database.DSN},
		"api":       map[string]any{"url": d.API.URL, "timeout": d.API.Timeout},
		"reconcile": map[string]any{"timeout": d.Reconcile.Timeout},
		"scheduler": map[string]any{"scale_by_ease": d.Scheduler.ScaleByEase},
		"generator": map[string]any{"kind": d.Generator.Kind, "api_key": "", "api_url": "", "model": ""},
		"digest":    map[string]any{"interval": d.Digest.Interval},
		"log":       map[string]any{"level": d.Log.Level},
	}, nil
}

// Load builds the configuration. path may be empty; when flags is non-nil
// its "config" flag names the YAML file and changed flags win over
// everything else.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(defaults{}, nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if flags != nil && path == "" {
		if f := flags.Lookup("config"); f != nil {
			path = f.Value.String()
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validation.Check(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Remote reports whether the CLI should use the API server.
func (c Config) Remote() bool { return c.API.URL != "" }

// SlogLevel converts the configured level.
func (c Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewLogger returns a text logger at the configured level.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.SlogLevel()}))
}
