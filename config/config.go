// Package config loads and validates library configuration from YAML files
// and environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for form and flow engines.
type Config struct {
	Cache         CacheConfig         `yaml:"cache"`
	Async         AsyncConfig         `yaml:"async"`
	Flow          FlowConfig          `yaml:"flow"`
	Definitions   DefinitionsConfig   `yaml:"definitions"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// CacheConfig describes validation result cache settings.
type CacheConfig struct {
	MaxEntries int           `yaml:"max_entries"`
	TTL        time.Duration `yaml:"ttl"`
	MaxAge     time.Duration `yaml:"max_age"`
}

// AsyncConfig describes async validation settings.
type AsyncConfig struct {
	DebounceDelay time.Duration `yaml:"debounce_delay"`
}

// FlowConfig describes flow engine settings.
type FlowConfig struct {
	AllowBack bool            `yaml:"allow_back"`
	Store     FlowStoreConfig `yaml:"store"`
}

// FlowStoreConfig describes flow state persistence settings.
type FlowStoreConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// DefinitionsConfig describes where to find flow definition YAML files.
type DefinitionsConfig struct {
	Directories []string `yaml:"directories"`
}

// ObservabilityConfig describes logging and tracing settings.
type ObservabilityConfig struct {
	LogLevel string        `yaml:"log_level"`
	Tracing  TracingConfig `yaml:"tracing"`
}

// TracingConfig describes distributed tracing settings.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Cache: CacheConfig{
			MaxEntries: 1000,
			TTL:        5 * time.Minute,
			MaxAge:     30 * time.Minute,
		},
		Async: AsyncConfig{
			DebounceDelay: 300 * time.Millisecond,
		},
		Flow: FlowConfig{
			AllowBack: true,
			Store: FlowStoreConfig{
				Driver: "memory",
			},
		},
		Definitions: DefinitionsConfig{
			Directories: []string{"./flows"},
		},
		Observability: ObservabilityConfig{
			LogLevel: "info",
		},
	}
}

// Load reads a YAML config file, applies environment variable overrides,
// and validates required fields.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required fields are present and valid.
func (c *Config) Validate() error {
	var errs []string

	if c.Cache.MaxEntries < 1 {
		errs = append(errs, "cache.max_entries must be positive")
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, "cache.ttl must be positive")
	}
	if c.Cache.MaxAge <= 0 {
		errs = append(errs, "cache.max_age must be positive")
	}
	if c.Async.DebounceDelay < 0 {
		errs = append(errs, "async.debounce_delay must not be negative")
	}
	switch c.Flow.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Flow.Store.Path == "" {
			errs = append(errs, "flow.store.path is required for the sqlite driver")
		}
	default:
		errs = append(errs, fmt.Sprintf("flow.store.driver %q is not supported", c.Flow.Store.Driver))
	}
	if len(c.Definitions.Directories) == 0 {
		errs = append(errs, "definitions.directories must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// applyEnvOverrides reads RILAYKIT_* environment variables and overrides
// config values. Only the most commonly overridden fields are supported.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RILAYKIT_LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("RILAYKIT_CACHE_MAX_ENTRIES"); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			cfg.Cache.MaxEntries = n
		}
	}
	if v := os.Getenv("RILAYKIT_DEBOUNCE_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Async.DebounceDelay = d
		}
	}
	if v := os.Getenv("RILAYKIT_FLOW_STORE_DRIVER"); v != "" {
		cfg.Flow.Store.Driver = v
	}
	if v := os.Getenv("RILAYKIT_FLOW_STORE_PATH"); v != "" {
		cfg.Flow.Store.Path = v
	}
}
