// Package config resolves boutique settings.
//
// Precedence, lowest first: built-in defaults, the YAML config file, a .env
// file, BOUTIQUE_* environment variables. Command-line flags are applied on
// top by the cli package.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvDatabase  = "BOUTIQUE_DB"
	EnvCurrency  = "BOUTIQUE_CURRENCY"
	EnvStoreName = "BOUTIQUE_STORE_NAME"
	EnvLogLevel  = "BOUTIQUE_LOG_LEVEL"
	EnvTimezone  = "BOUTIQUE_TIMEZONE"
)

// Config holds resolved settings.
type Config struct {
	Database  string `yaml:"database"`   // SQLite file path
	Currency  string `yaml:"currency"`   // ISO 4217 code
	StoreName string `yaml:"store_name"`
	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	Timezone  string `yaml:"timezone"`   // IANA name used for report day boundaries
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Database:  "boutique.db",
		Currency:  "GHS",
		StoreName: "Boutique",
		LogLevel:  "info",
		Timezone:  "UTC",
	}
}

// Load resolves settings from defaults, the YAML file at path and the
// environment. An empty path skips the file. A missing envFile is ignored;
// an empty envFile means ".env".
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	if envFile == "" {
		envFile = ".env"
	}
	dotenv, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read %s: %w", envFile, err)
	}

	// Process environment wins over the .env file.
	cfg.applyEnv(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	})

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvDatabase, &c.Database)
	set(EnvCurrency, &c.Currency)
	set(EnvStoreName, &c.StoreName)
	set(EnvLogLevel, &c.LogLevel)
	set(EnvTimezone, &c.Timezone)
}

// Validate checks every setting can be used.
func (c Config) Validate() error {
	if c.Database == "" {
		return errors.New("config: database path is empty")
	}
	if _, err := currency.ParseISO(c.Currency); err != nil {
		return fmt.Errorf("config: currency %q: %w", c.Currency, err)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Location loads Timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
