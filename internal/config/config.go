// Package config loads webformd settings from defaults, an optional YAML file,
// and WEBFORM_* environment variables, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. WEBFORM_DATABASE_DSN.
const EnvPrefix = "WEBFORM"

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	SiteLink SiteLinkConfig `yaml:"site_link" split_words:"true"`
	Theme    ThemeConfig    `yaml:"theme"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	BasePath     string        `yaml:"base_path" split_words:"true"`
	KeyPrefix    string        `yaml:"key_prefix" split_words:"true"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" split_words:"true"`
	ReadTimeout  time.Duration `yaml:"read_timeout" split_words:"true"`
	WriteTimeout time.Duration `yaml:"write_timeout" split_words:"true"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type CacheConfig struct {
	Size int           `yaml:"size"`
	TTL  time.Duration `yaml:"ttl"`
}

// SiteLinkConfig points at the CRM site contact defaults are fetched from.
type SiteLinkConfig struct {
	URL           string        `yaml:"url"`
	TransferToken string        `yaml:"transfer_token" split_words:"true"`
	Timeout       time.Duration `yaml:"timeout"`
}

type ThemeConfig struct {
	Default     string `yaml:"default"`
	AssetPrefix string `yaml:"asset_prefix" split_words:"true"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:         ":8080",
			BasePath:     "/dt-public/v1",
			KeyPrefix:    "dt_webform_site",
			MaxBodyBytes: 1 << 20,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "file:webform.db?_pragma=busy_timeout(5000)",
		},
		Cache: CacheConfig{
			Size: 512,
			TTL:  5 * time.Minute,
		},
		SiteLink: SiteLinkConfig{
			Timeout: 10 * time.Second,
		},
		Theme: ThemeConfig{
			Default:     "wide-heavy",
			AssetPrefix: "/dt-public/v1/webform/themes",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Load reads path (optional) over the defaults and applies environment
// overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := Decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode merges a YAML document into cfg. Unknown keys are rejected.
func Decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

// Validate checks the settings for values the server cannot start with.
func (c Config) Validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case "sqlite", "postgres", "pgx":
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}
	if strings.ToLower(c.Database.Driver) != "sqlite" && strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("config: database dsn is required")
	}
	if c.Cache.Size <= 0 {
		return fmt.Errorf("config: cache size must be positive, got %d", c.Cache.Size)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("config: cache ttl must not be negative, got %s", c.Cache.TTL)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("config: unsupported log format %q", c.Log.Format)
	}
	return nil
}
