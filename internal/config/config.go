// Package config loads Divedeep configuration from an optional YAML file
// layered under DIVEDEEP_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/mewong1/Divedeep/internal/domain"
)

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Insight InsightConfig `koanf:"insight"`
	Session SessionConfig `koanf:"session"`
	Storage StorageConfig `koanf:"storage"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

type InsightConfig struct {
	BaseURL string        `koanf:"base_url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

type SessionConfig struct {
	Vibe          string        `koanf:"vibe"`
	Enabled       bool          `koanf:"enabled"`
	CheckInterval time.Duration `koanf:"check_interval"`
	SettleDelay   time.Duration `koanf:"settle_delay"`
}

type StorageConfig struct {
	Type   string       `koanf:"type"` // memory, sqlite
	SQLite SQLiteConfig `koanf:"sqlite"`
}

type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// Load reads configuration from configPath (skipped when empty or missing)
// and the environment, applies defaults, and validates.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file: %w", err)
			}
		}
	}

	// Double underscore separates hierarchy levels, so multi-word leaf keys
	// like base_url survive: DIVEDEEP_INSIGHT__BASE_URL -> insight.base_url.
	if err := k.Load(env.Provider("DIVEDEEP_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "DIVEDEEP_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	// Defaults
	if !k.Exists("server.port") {
		k.Set("server.port", 8484)
	}
	if !k.Exists("insight.timeout") {
		k.Set("insight.timeout", "30s")
	}
	if !k.Exists("session.vibe") {
		k.Set("session.vibe", string(domain.VibeMixed))
	}
	if !k.Exists("session.enabled") {
		k.Set("session.enabled", true)
	}
	if !k.Exists("session.check_interval") {
		k.Set("session.check_interval", "15s")
	}
	if !k.Exists("session.settle_delay") {
		k.Set("session.settle_delay", "1s")
	}
	if !k.Exists("storage.type") {
		k.Set("storage.type", "memory")
	}
	if !k.Exists("storage.sqlite.path") {
		k.Set("storage.sqlite.path", "./data/divedeep.db")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded configuration. A missing insight base URL is
// the configuration-error surface: it fails here at startup, never inside
// the engine.
func (c *Config) Validate() error {
	if c.Insight.BaseURL == "" {
		return fmt.Errorf("insight.base_url is required (set DIVEDEEP_INSIGHT__BASE_URL)")
	}
	if !domain.Vibe(c.Session.Vibe).Valid() {
		return fmt.Errorf("session.vibe %q is not one of fun, thoughtful, deep, mixed", c.Session.Vibe)
	}
	if c.Session.CheckInterval <= 0 {
		return fmt.Errorf("session.check_interval must be positive")
	}
	switch c.Storage.Type {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("storage.type %q is not one of memory, sqlite", c.Storage.Type)
	}
	return nil
}
