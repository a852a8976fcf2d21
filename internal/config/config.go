// Package config loads stdoutpipe configuration from YAML and environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds stdoutpipe configuration loaded from YAML and env.
type Config struct {
	RateLimitLPS   int // lines per second; 0 disables rate limiting
	RateLimitBurst int

	DebugServerEnabled bool
	DebugServerPort    string

	ShutdownTimeout time.Duration
}

type fileConfig struct {
	RateLimit struct {
		LinesPerSecond int `yaml:"lines_per_second"`
		Burst          int `yaml:"burst"`
	} `yaml:"rate_limit"`

	DebugServer struct {
		Enabled bool   `yaml:"enabled"`
		Port    string `yaml:"port"`
	} `yaml:"debug_server"`

	Shutdown struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"shutdown"`
}

// Load reads configuration from the file named by STDOUTPIPE_CONFIG.
// An unset path yields pure defaults; the pipe must run with zero setup.
// RATE_LIMIT_LPS and DEBUG_SERVER_PORT env vars override file values.
func Load() (*Config, error) {
	var fc fileConfig
	if path := strings.TrimSpace(os.Getenv("STDOUTPIPE_CONFIG")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("config file not found: %s", path)
			}
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg := &Config{}

	cfg.RateLimitLPS = fc.RateLimit.LinesPerSecond
	if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_LPS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("RATE_LIMIT_LPS must be an integer, got %q", v)
		}
		cfg.RateLimitLPS = n
	}
	cfg.RateLimitBurst = fc.RateLimit.Burst
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = cfg.RateLimitLPS
	}

	cfg.DebugServerEnabled = fc.DebugServer.Enabled
	cfg.DebugServerPort = strings.TrimSpace(fc.DebugServer.Port)
	if v := strings.TrimSpace(os.Getenv("DEBUG_SERVER_PORT")); v != "" {
		cfg.DebugServerPort = v
		cfg.DebugServerEnabled = true
	}
	if cfg.DebugServerPort == "" {
		cfg.DebugServerPort = "9090"
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 10*time.Second)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseDuration parses a duration string and returns defaultVal if parsing
// fails or the result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

// validate performs post-load validation of configuration values.
func validate(cfg *Config) error {
	if cfg.RateLimitLPS < 0 {
		return fmt.Errorf("rate_limit.lines_per_second must not be negative, got %d", cfg.RateLimitLPS)
	}
	if cfg.RateLimitLPS > 0 && cfg.RateLimitBurst < cfg.RateLimitLPS {
		return fmt.Errorf("rate_limit.burst (%d) must be >= lines_per_second (%d)", cfg.RateLimitBurst, cfg.RateLimitLPS)
	}
	if _, err := strconv.Atoi(cfg.DebugServerPort); err != nil {
		return fmt.Errorf("debug_server.port must be numeric, got %q", cfg.DebugServerPort)
	}
	return nil
}
