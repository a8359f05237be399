// Package config resolves where the roster database lives.
//
// Sources, lowest precedence first:
//
//  1. compiled-in defaults (database.db, sqlite3, info)
//  2. an optional YAML file, checked against the embedded CUE schema
//  3. a .env file, loaded into the environment without overriding it
//  4. STUDENTS_* environment variables
//
// Command-line flags are applied on top by the cli package.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ltuala/student-management/internal/store"
)

//go:embed schema.cue
var schemaCUE string

// DefaultEnvFile is read when present in the working directory.
const DefaultEnvFile = ".env"

// Config is the resolved application configuration.
type Config struct {
	DatabaseFile string `yaml:"database_file" env:"STUDENTS_DB"`
	Driver       string `yaml:"driver" env:"STUDENTS_DRIVER"`
	LogLevel     string `yaml:"log_level" env:"STUDENTS_LOG_LEVEL"`
}

// LoadOptions selects the files Load reads. Empty fields are skipped, except
// EnvFile which defaults to DefaultEnvFile.
type LoadOptions struct {
	ConfigFile string
	EnvFile    string
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		DatabaseFile: store.DefaultPath,
		Driver:       store.DriverCGO,
		LogLevel:     "info",
	}
}

// Load resolves the configuration from defaults, file and environment.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	if opts.ConfigFile != "" {
		if err := loadFile(opts.ConfigFile, &cfg); err != nil {
			return nil, err
		}
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	// A missing .env file is fine; a malformed one is not.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return &cfg, nil
}

// Connector returns a store connector for the configured file and driver.
func (c *Config) Connector() *store.Connector {
	return store.NewConnector(c.DatabaseFile, store.WithDriver(c.Driver))
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadFile reads a YAML config file, validates it against the CUE schema and
// overlays the fields it sets onto cfg.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := Validate(raw); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// Validate checks a decoded config document against the #Config schema.
// Unknown keys and values outside the allowed sets are rejected.
func Validate(raw map[string]any) error {
	if raw == nil {
		raw = map[string]any{}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Config"))
	value := def.Unify(ctx.Encode(raw))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return err
	}
	return nil
}
