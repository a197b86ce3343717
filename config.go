package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "FOLIO_"

const (
	themeStoreCookie = "cookie"
	themeStoreSQLite = "sqlite"
)

// Config controls how the portfolio is served.
type Config struct {
	Port            string        `koanf:"port"`
	Mode            string        `koanf:"mode"`
	ContentFile     string        `koanf:"content_file"`
	Watch           bool          `koanf:"watch"`
	ThemeStore      string        `koanf:"theme_store"`
	DBPath          string        `koanf:"db_path"`
	SubmitDelay     time.Duration `koanf:"submit_delay"`
	PreferenceTTL   time.Duration `koanf:"preference_ttl"`
	CleanupSchedule string        `koanf:"cleanup_schedule"`
}

func DefaultConfig() *Config {
	return &Config{
		Port:            "8080",
		Mode:            gin.ReleaseMode,
		ThemeStore:      themeStoreCookie,
		DBPath:          "data/folio.db",
		SubmitDelay:     600 * time.Millisecond,
		PreferenceTTL:   365 * 24 * time.Hour,
		CleanupSchedule: "@daily",
	}
}

// LoadConfig reads the optional YAML file at path, then applies FOLIO_*
// environment overrides. PORT is honoured when FOLIO_PORT is unset.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		if err := k.Set("port", port); err != nil {
			return nil, fmt.Errorf("applying PORT: %w", err)
		}
	}

	// FOLIO_CONTENT_FILE -> content_file, etc.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	switch c.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return fmt.Errorf("invalid mode %q: must be one of debug, release, test", c.Mode)
	}
	switch c.ThemeStore {
	case themeStoreCookie:
	case themeStoreSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("db_path is required when theme_store is sqlite")
		}
		if c.PreferenceTTL <= 0 {
			return fmt.Errorf("preference_ttl must be positive")
		}
		if c.CleanupSchedule == "" {
			return fmt.Errorf("cleanup_schedule is required when theme_store is sqlite")
		}
	default:
		return fmt.Errorf("invalid theme_store %q: must be one of cookie, sqlite", c.ThemeStore)
	}
	if c.SubmitDelay < 0 {
		return fmt.Errorf("submit_delay must be non-negative")
	}
	if c.Watch && c.ContentFile == "" {
		return fmt.Errorf("watch requires content_file")
	}
	return nil
}
