package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the server settings. Durations are Go duration strings.
type Config struct {
	Addr              string `yaml:"addr"`
	ReadHeaderTimeout string `yaml:"read_header_timeout"`
	ReadTimeout       string `yaml:"read_timeout"`
	WriteTimeout      string `yaml:"write_timeout"`
	IdleTimeout       string `yaml:"idle_timeout"`
	ShutdownTimeout   string `yaml:"shutdown_timeout"`
	MaxBodyBytes      int64  `yaml:"max_body_bytes"`

	// Limits applied to every tool call. Zero disables a limit.
	MaxTermSize int `yaml:"max_term_size"`
	MaxOrder    int `yaml:"max_order"`
}

func DefaultConfig() *Config {
	return &Config{
		Addr:              ":8080",
		ReadHeaderTimeout: "5s",
		ReadTimeout:       "15s",
		WriteTimeout:      "15s",
		IdleTimeout:       "60s",
		ShutdownTimeout:   "10s",
		MaxBodyBytes:      1 << 20, // 1 MiB
		MaxTermSize:       2000,
		MaxOrder:          8,
	}
}

// LoadConfig reads a YAML file over the defaults. An empty path or a missing
// file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every duration parses, the body limit is positive and
// the tool limits are not negative.
func (c *Config) Validate() error {
	for name, v := range map[string]string{
		"read_header_timeout": c.ReadHeaderTimeout,
		"read_timeout":        c.ReadTimeout,
		"write_timeout":       c.WriteTimeout,
		"idle_timeout":        c.IdleTimeout,
		"shutdown_timeout":    c.ShutdownTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", c.MaxBodyBytes)
	}
	if c.MaxTermSize < 0 {
		return fmt.Errorf("max_term_size must not be negative, got %d", c.MaxTermSize)
	}
	if c.MaxOrder < 0 {
		return fmt.Errorf("max_order must not be negative, got %d", c.MaxOrder)
	}
	return nil
}

func (c *Config) duration(v string) time.Duration {
	d, _ := time.ParseDuration(v)
	return d
}
