// Package config provides configuration loading from YAML files.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the client configuration.
type Config struct {
	Server    ServerConfig            `yaml:"server"`
	UI        UIConfig                `yaml:"ui"`
	Reconnect ReconnectConfig         `yaml:"reconnect"`
	Filters   map[string]FilterConfig `yaml:"filters"`
	User      UserConfig              `yaml:"user"`
}

// ServerConfig locates the queue server and the catalog document.
type ServerConfig struct {
	Host string `yaml:"host" default:"localhost" validate:"required"`
	Port int    `yaml:"port" default:"8766" validate:"gte=1,lte=65535"`
	Path string `yaml:"path" default:"/"`
	// CatalogURL points at the static song document. A non-HTTP value is
	// treated as a local file path.
	CatalogURL string `yaml:"catalog_url" default:"songs.json"`
}

// UIConfig tunes the display behavior.
type UIConfig struct {
	PageSize         int    `yaml:"page_size" default:"50" validate:"gte=1,lte=500"`
	SearchDebounceMs int    `yaml:"search_debounce_ms" default:"300" validate:"gte=0,lte=5000"`
	ScrollDebounceMs int    `yaml:"scroll_debounce_ms" default:"100" validate:"gte=0,lte=5000"`
	DefaultTab       string `yaml:"default_tab" default:"songs" validate:"oneof=songs queue history"`
}

// ReconnectConfig bounds the push-channel retry policy.
type ReconnectConfig struct {
	InitialDelayMs int `yaml:"initial_delay_ms" default:"1000" validate:"gte=100,lte=60000"`
	MaxDelayMs     int `yaml:"max_delay_ms" default:"30000" validate:"gte=100,lte=300000"`
	MaxAttempts    int `yaml:"max_attempts" default:"10" validate:"gte=1,lte=100"`
}

// FilterConfig represents a display filter's configuration.
type FilterConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// UserConfig seeds the local identity on first run.
type UserConfig struct {
	DefaultAvatar string `yaml:"default_avatar" default:"🐰"`
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults so the client runs unconfigured; an unreadable or invalid one
// is an error. Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return nil, errors.Wrap(err, "failed to read config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("ENCORE_SERVER_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("ENCORE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("ENCORE_CATALOG_URL"); v != "" {
		c.Server.CatalogURL = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	if c.Reconnect.InitialDelayMs > c.Reconnect.MaxDelayMs {
		return errors.Newf("reconnect initial_delay_ms (%d) must not exceed max_delay_ms (%d)",
			c.Reconnect.InitialDelayMs, c.Reconnect.MaxDelayMs)
	}
	return nil
}

// WebSocketURL derives the push-channel endpoint from host, port and path.
func (c *Config) WebSocketURL() string {
	path := c.Server.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("ws://%s:%d%s", c.Server.Host, c.Server.Port, path)
}

// IsFilterEnabled checks if a display filter is enabled. Filters absent
// from the config default to enabled.
func (c *Config) IsFilterEnabled(filterName string) bool {
	if f, ok := c.Filters[filterName]; ok {
		return f.Enabled
	}
	return true
}

// FilterSettings returns the settings map for a filter, or nil.
func (c *Config) FilterSettings(filterName string) map[string]any {
	if f, ok := c.Filters[filterName]; ok {
		return f.Settings
	}
	return nil
}
