// Package config loads process configuration from an optional YAML file
// followed by SATELLITES_* environment overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mariavieira99/Satellites/internal/remote"
)

// FileEnv names the environment variable holding the YAML config path.
const FileEnv = "SATELLITES_CONFIG"

// Config is the process configuration shared by both hosts.
type Config struct {
	HTTPAddr      string        `yaml:"http_addr"`
	TrustProxy    bool          `yaml:"trust_proxy"`
	APIBaseURL    string        `yaml:"api_base_url"`
	RemoteTimeout time.Duration `yaml:"remote_timeout"`
	DBPath        string        `yaml:"db_path"`
	ProbeInterval time.Duration `yaml:"probe_interval"`
	ProbeTimeout  time.Duration `yaml:"probe_timeout"`
	LogLevel      string        `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HTTPAddr:      ":8080",
		APIBaseURL:    remote.DefaultBaseURL,
		RemoteTimeout: remote.DefaultTimeout,
		DBPath:        "satellites.db",
		ProbeInterval: 15 * time.Second,
		ProbeTimeout:  5 * time.Second,
		LogLevel:      "info",
	}
}

// Load builds the configuration. A config file that is named but unreadable
// or invalid is an error; a malformed environment value is logged and the
// previous value kept.
func Load(logger *slog.Logger) (Config, error) {
	cfg := Default()

	if path := os.Getenv(FileEnv); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		logger.Info("loaded config file", "component", "config", "path", path)
	}

	if v := os.Getenv("SATELLITES_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}

	if v := os.Getenv("SATELLITES_TRUST_PROXY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid SATELLITES_TRUST_PROXY value, keeping current", "value", v, "current", cfg.TrustProxy)
		} else {
			cfg.TrustProxy = b
		}
	}

	if v := os.Getenv("SATELLITES_API_BASE_URL"); v != "" {
		cfg.APIBaseURL = v
	}

	if v := os.Getenv("SATELLITES_DB_PATH"); v != "" {
		cfg.DBPath = v
	}

	cfg.RemoteTimeout = envSeconds(logger, "SATELLITES_REMOTE_TIMEOUT", cfg.RemoteTimeout)
	cfg.ProbeInterval = envSeconds(logger, "SATELLITES_PROBE_INTERVAL", cfg.ProbeInterval)
	cfg.ProbeTimeout = envSeconds(logger, "SATELLITES_PROBE_TIMEOUT", cfg.ProbeTimeout)

	if v := os.Getenv("SATELLITES_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		logger.Warn("invalid log level, using info", "component", "config", "value", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// envSeconds reads a positive whole number of seconds from key.
func envSeconds(logger *slog.Logger, key string, current time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return current
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		logger.Warn("invalid "+key+" value, keeping current", "value", v, "current_seconds", current.Seconds())
		return current
	}
	return time.Duration(n) * time.Second
}

// Level returns the configured slog level.
func (c Config) Level() slog.Level {
	l, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(strings.TrimSpace(s)))
	return l, err
}

// LogValue implements slog.LogValuer.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("http_addr", c.HTTPAddr),
		slog.Bool("trust_proxy", c.TrustProxy),
		slog.String("api_base_url", c.APIBaseURL),
		slog.Float64("remote_timeout_seconds", c.RemoteTimeout.Seconds()),
		slog.String("db_path", c.DBPath),
		slog.Float64("probe_interval_seconds", c.ProbeInterval.Seconds()),
		slog.Float64("probe_timeout_seconds", c.ProbeTimeout.Seconds()),
		slog.String("log_level", c.LogLevel),
	)
}
