// Package config loads service settings from an optional YAML file with
// ISSTRACK_* environment variable overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Source   SourceConfig   `yaml:"source"`
	Geocoder GeocoderConfig `yaml:"geocoder"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port         int           `yaml:"port" validate:"gt=0,lte=65535"`
	ReadTimeout  time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"gt=0"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" validate:"gt=0"`
	TrustProxy   bool          `yaml:"trust_proxy"`
}

type SourceConfig struct {
	URL           string        `yaml:"url" validate:"omitempty,url"`
	Timeout       time.Duration `yaml:"timeout" validate:"gt=0"`
	StaleAfter    time.Duration `yaml:"stale_after" validate:"gt=0"`
	CacheDir      string        `yaml:"cache_dir"`
	CacheMaxFiles int           `yaml:"cache_max_files" validate:"gte=0"`
}

type GeocoderConfig struct {
	Enabled   bool          `yaml:"enabled"`
	BaseURL   string        `yaml:"base_url" validate:"omitempty,url"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout" validate:"gt=0"`
	CacheSize int           `yaml:"cache_size" validate:"gt=0"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// Load reads configuration from the YAML file at path (if non-empty),
// applies environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         5173,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Source: SourceConfig{
			Timeout:       30 * time.Second,
			StaleAfter:    15 * time.Minute,
			CacheDir:      "/tmp/isstrack/oem",
			CacheMaxFiles: 3,
		},
		Geocoder: GeocoderConfig{
			Enabled:   false,
			UserAgent: "iss-tracker",
			Timeout:   5 * time.Second,
			CacheSize: 1000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ISSTRACK_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("ISSTRACK_TRUST_PROXY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Server.TrustProxy = b
		}
	}
	if v := os.Getenv("ISSTRACK_SOURCE_URL"); v != "" {
		cfg.Source.URL = v
	}
	if v := os.Getenv("ISSTRACK_SOURCE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Source.Timeout = d
		}
	}
	if v := os.Getenv("ISSTRACK_STALE_AFTER"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Source.StaleAfter = d
		}
	}
	if v := os.Getenv("ISSTRACK_CACHE_DIR"); v != "" {
		cfg.Source.CacheDir = v
	}
	if v := os.Getenv("ISSTRACK_GEOCODER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Geocoder.Enabled = b
		}
	}
	if v := os.Getenv("ISSTRACK_GEOCODER_URL"); v != "" {
		cfg.Geocoder.BaseURL = v
	}
	if v := os.Getenv("ISSTRACK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// SlogLevel maps the configured level string onto a slog level.
func (c LoggingConfig) SlogLevel() slog.Level {
	switch c.Level {
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
