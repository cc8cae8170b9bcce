// Package config loads relay settings from an optional YAML file with
// environment-variable overrides. Required values are not validated here:
// the mapper and forwarder detect a missing setting at the point of use, so
// an env-only deployment with no file works and a misconfigured one fails
// per request instead of refusing to start.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultListen       = ":8080"
	defaultMaxBodyBytes = 10 << 20 // 10 MiB
	defaultLogLevel     = "info"
)

type GraylogConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type ServerConfig struct {
	Listen       string `yaml:"listen"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	Graylog             GraylogConfig `yaml:"graylog"`
	DefaultShortMessage string        `yaml:"default_short_message"`
	Server              ServerConfig  `yaml:"server"`
	Log                 LogConfig     `yaml:"log"`
}

// Load reads the YAML file at path, applies environment overrides, then
// fills defaults. A missing file is fine; a file that exists but does not
// parse is not.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if v := os.Getenv("GRAYLOG_HOST"); v != "" {
		cfg.Graylog.Host = v
	}
	if v := os.Getenv("GRAYLOG_PORT"); v != "" {
		cfg.Graylog.Port = v
	}
	if v := os.Getenv("DEFAULT_SHORT_MESSAGE"); v != "" {
		cfg.DefaultShortMessage = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if cfg.Server.Listen == "" {
		cfg.Server.Listen = defaultListen
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		cfg.Server.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}

	return cfg, nil
}

// LogLevel maps the configured level name onto slog. Unknown names fall back
// to info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
