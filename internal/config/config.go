// Package config loads neatctl settings from YAML files and environment
// variables, and reads the fixture files that describe networks to build.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	EnvStore      = "NEAT_STORE"
	EnvDBPath     = "NEAT_DB_PATH"
	EnvScope      = "NEAT_SCOPE"
	EnvActivation = "NEAT_ACTIVATION"
	EnvLogLevel   = "NEAT_LOG_LEVEL"
)

// Config holds the host-level settings of a neatctl invocation.
type Config struct {
	// Store is the persistence backend: "memory" or "sqlite".
	Store string `yaml:"store"`

	// DBPath is the sqlite database file, used only by the sqlite store.
	DBPath string `yaml:"db_path"`

	// Scope names the allocator and policy records in the store.
	Scope string `yaml:"scope"`

	// Activation is the default activation mode. Empty leaves the policy
	// unset, so evaluation fails until a mode is given.
	Activation string `yaml:"activation"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

func Default() *Config {
	return &Config{
		Store:    "memory",
		DBPath:   "neat.db",
		Scope:    "default",
		LogLevel: "info",
	}
}

// Load reads path on top of the defaults and applies environment
// overrides. An empty path only applies the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(EnvStore); ok {
		c.Store = v
	}
	if v, ok := os.LookupEnv(EnvDBPath); ok {
		c.DBPath = v
	}
	if v, ok := os.LookupEnv(EnvScope); ok {
		c.Scope = v
	}
	if v, ok := os.LookupEnv(EnvActivation); ok {
		c.Activation = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.LogLevel = v
	}
}

func (c *Config) Validate() error {
	switch c.Store {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("unsupported store backend: %s", c.Store)
	}
	if c.Store == "sqlite" && c.DBPath == "" {
		return errors.New("db_path is required for the sqlite store")
	}
	if strings.TrimSpace(c.Scope) == "" {
		return errors.New("scope is required")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level: %s", c.LogLevel)
	}
	return nil
}
