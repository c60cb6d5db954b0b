// Package config resolves dayplan settings from defaults, an optional YAML
// file and the environment, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/dayplan/internal/caldav"
	"github.com/alexanderramin/dayplan/internal/llm"
)

// EnvConfigPath names the variable consulted when no --config flag is given.
const EnvConfigPath = "DAYPLAN_CONFIG"

// Config is the top-level application configuration.
type Config struct {
	Listen   string `yaml:"listen"`
	DBPath   string `yaml:"db_path"`
	Timezone string `yaml:"timezone"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// RequestTimeoutMs caps one generation across every provider; 0 disables
	// the cap.
	RequestTimeoutMs int `yaml:"request_timeout_ms"`

	Providers llm.ProvidersConfig `yaml:"providers"`
	CalDAV    caldav.Config       `yaml:"caldav"`
}

// Default returns the built-in configuration.
func Default() *Config {
	dbPath := filepath.Join(".dayplan", "dayplan.db")
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, ".dayplan", "dayplan.db")
	}
	return &Config{
		Listen:    "127.0.0.1:8000",
		DBPath:    dbPath,
		Timezone:  "Local",
		LogLevel:  "info",
		LogFormat: "text",
		Providers: llm.DefaultConfig(),
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and the environment apply. Every invalid value is reported in a
// single error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	invalid := cfg.applyEnv()
	invalid = append(invalid, llm.ApplyEnv(&cfg.Providers)...)
	if len(invalid) > 0 {
		return nil, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolvePath picks the config file: the flag value wins over the
// environment.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return strings.TrimSpace(os.Getenv(EnvConfigPath))
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() []string {
	var invalid []string

	setString := func(dst *string, name string) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = v
		}
	}
	setString(&c.Listen, "DAYPLAN_LISTEN")
	setString(&c.DBPath, "DAYPLAN_DB")
	setString(&c.Timezone, "DAYPLAN_TIMEZONE")
	setString(&c.LogLevel, "DAYPLAN_LOG_LEVEL")
	setString(&c.LogFormat, "DAYPLAN_LOG_FORMAT")
	setString(&c.CalDAV.URL, "DAYPLAN_CALDAV_URL")
	setString(&c.CalDAV.Username, "DAYPLAN_CALDAV_USERNAME")
	setString(&c.CalDAV.Password, "DAYPLAN_CALDAV_PASSWORD")
	setString(&c.CalDAV.Collection, "DAYPLAN_CALDAV_COLLECTION")

	if v := strings.TrimSpace(os.Getenv("DAYPLAN_REQUEST_TIMEOUT_MS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			invalid = append(invalid, "DAYPLAN_REQUEST_TIMEOUT_MS")
		} else {
			c.RequestTimeoutMs = n
		}
	}
	return invalid
}

// Validate checks values that can only be judged after all sources merged.
func (c *Config) Validate() error {
	var errs []error
	if c.Listen == "" {
		errs = append(errs, errors.New("listen address is empty"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is empty"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log_format %q", c.LogFormat))
	}
	if c.RequestTimeoutMs < 0 {
		errs = append(errs, errors.New("request_timeout_ms must not be negative"))
	}
	for name, ms := range map[string]int{
		"openai": c.Providers.OpenAI.TimeoutMs,
		"gemini": c.Providers.Gemini.TimeoutMs,
		"ollama": c.Providers.Ollama.TimeoutMs,
	} {
		if ms <= 0 {
			errs = append(errs, fmt.Errorf("providers.%s.timeout_ms must be positive, got %d", name, ms))
		}
	}
	return errors.Join(errs...)
}

// Location resolves Timezone; "Local" and "" mean the process zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// SlogLevel returns the configured level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	lvl, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return lvl, fmt.Errorf("log_level %q: %w", s, err)
	}
	return lvl, nil
}
