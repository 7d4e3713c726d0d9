package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Cache.MaxEntries != 1000 {
		t.Errorf("Cache.MaxEntries = %d", cfg.Cache.MaxEntries)
	}
	if cfg.Cache.TTL != 5*time.Minute || cfg.Cache.MaxAge != 30*time.Minute {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Async.DebounceDelay != 300*time.Millisecond {
		t.Errorf("DebounceDelay = %v", cfg.Async.DebounceDelay)
	}
	if !cfg.Flow.AllowBack || cfg.Flow.Store.Driver != "memory" {
		t.Errorf("Flow = %+v", cfg.Flow)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
cache:
  max_entries: 50
  ttl: 1m
async:
  debounce_delay: 150ms
flow:
  allow_back: false
  store:
    driver: sqlite
    path: /tmp/flows.db
definitions:
  directories:
    - /etc/flows
observability:
  log_level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Cache.MaxEntries != 50 || cfg.Cache.TTL != time.Minute {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	// Unset fields keep their defaults.
	if cfg.Cache.MaxAge != 30*time.Minute {
		t.Errorf("MaxAge = %v, want default", cfg.Cache.MaxAge)
	}
	if cfg.Async.DebounceDelay != 150*time.Millisecond {
		t.Errorf("DebounceDelay = %v", cfg.Async.DebounceDelay)
	}
	if cfg.Flow.AllowBack {
		t.Error("AllowBack should be overridden to false")
	}
	if cfg.Flow.Store.Driver != "sqlite" || cfg.Flow.Store.Path != "/tmp/flows.db" {
		t.Errorf("Store = %+v", cfg.Flow.Store)
	}
	if cfg.Observability.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.Observability.LogLevel)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Load should fail on a missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "cache: [broken")
	if _, err := Load(path); err == nil {
		t.Error("Load should fail on malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max entries", func(c *Config) { c.Cache.MaxEntries = 0 }},
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }},
		{"negative debounce", func(c *Config) { c.Async.DebounceDelay = -time.Second }},
		{"unknown store driver", func(c *Config) { c.Flow.Store.Driver = "redis" }},
		{"sqlite without path", func(c *Config) { c.Flow.Store.Driver = "sqlite" }},
		{"no definition dirs", func(c *Config) { c.Definitions.Directories = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate should fail")
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "observability:\n  log_level: info\n")

	t.Setenv("RILAYKIT_LOG_LEVEL", "warn")
	t.Setenv("RILAYKIT_CACHE_MAX_ENTRIES", "77")
	t.Setenv("RILAYKIT_DEBOUNCE_DELAY", "42ms")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Observability.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.Observability.LogLevel)
	}
	if cfg.Cache.MaxEntries != 77 {
		t.Errorf("MaxEntries = %d, want 77", cfg.Cache.MaxEntries)
	}
	if cfg.Async.DebounceDelay != 42*time.Millisecond {
		t.Errorf("DebounceDelay = %v, want 42ms", cfg.Async.DebounceDelay)
	}
}
