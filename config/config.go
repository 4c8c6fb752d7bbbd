// Package config loads and validates the application configuration: logging,
// metrics exposure, validation defaults, and the node-type catalog location.
// Values come from a JSON file with FLOWCORE_* environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/c360/flowcore/errors"
	"github.com/c360/flowcore/validator"
)

// Config represents the complete application configuration.
type Config struct {
	Version    string           `json:"version"`
	Logging    LoggingConfig    `json:"logging"`
	Metrics    MetricsConfig    `json:"metrics"`
	Validation ValidationConfig `json:"validation"`

	// CatalogPath points at a JSON file of node-type descriptions.
	CatalogPath string `json:"catalog_path"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Port    int    `json:"port"`
	Path    string `json:"path"`
}

// ValidationConfig holds validation defaults.
type ValidationConfig struct {
	Profile         string `json:"profile"`           // minimal, runtime, ai-friendly, strict
	SchemaCacheSize int    `json:"schema_cache_size"` // 0 disables the schema cache
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Metrics: MetricsConfig{Enabled: false, Port: 9090, Path: "/metrics"},
		Validation: ValidationConfig{
			Profile:         string(validator.DefaultProfile),
			SchemaCacheSize: 256,
		},
	}
}

// Load reads the config file, applies environment overrides, and validates
// the result. An empty path yields the defaults plus overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WrapStructural(err, "Config", "Load", "read config file")
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.WrapStructural(err, "Config", "Load", "parse config file")
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	fail := func(msg string) error {
		return errors.WrapStructural(fmt.Errorf("%s", msg), "Config", "Validate", "config check")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fail(fmt.Sprintf("invalid log level %q", c.Logging.Level))
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fail(fmt.Sprintf("invalid log format %q", c.Logging.Format))
	}

	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		return fail(fmt.Sprintf("invalid metrics port %d", c.Metrics.Port))
	}

	if _, err := validator.ParseProfile(c.Validation.Profile); err != nil {
		return err
	}

	if c.Validation.SchemaCacheSize < 0 {
		return fail(fmt.Sprintf("invalid schema cache size %d", c.Validation.SchemaCacheSize))
	}

	return nil
}

// Profile returns the parsed default validation profile.
func (c *Config) Profile() validator.Profile {
	profile, err := validator.ParseProfile(c.Validation.Profile)
	if err != nil {
		return validator.DefaultProfile
	}
	return profile
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FLOWCORE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("FLOWCORE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("FLOWCORE_PROFILE"); v != "" {
		cfg.Validation.Profile = v
	}
	if v := os.Getenv("FLOWCORE_CATALOG"); v != "" {
		cfg.CatalogPath = v
	}
	if v := os.Getenv("FLOWCORE_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
			cfg.Metrics.Enabled = true
		}
	}
}

// SafeConfig provides thread-safe access to configuration.
type SafeConfig struct {
	mu     sync.RWMutex
	config *Config
}

// NewSafeConfig creates a new thread-safe config wrapper.
func NewSafeConfig(cfg *Config) *SafeConfig {
	if cfg == nil {
		cfg = Default()
	}
	return &SafeConfig{config: cfg}
}

// Get returns a deep copy of the current configuration.
func (sc *SafeConfig) Get() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config.Clone()
}

// Update atomically replaces the configuration after validation.
func (sc *SafeConfig) Update(cfg *Config) error {
	if cfg == nil {
		return errors.WrapStructural(
			fmt.Errorf("config cannot be nil"), "SafeConfig", "Update", "config check")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.config = cfg
	return nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return Default()
	}
	copied := *c
	return &copied
}
