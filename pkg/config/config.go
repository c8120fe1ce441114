// Package config loads trinover settings from YAML, .env files and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/paulstuart/trinover/pkg/compare"
	"github.com/paulstuart/trinover/pkg/scraper"
)

// Environment variables that override file settings.
const (
	EnvAddr    = "TRINOVER_ADDR"
	EnvDB      = "TRINOVER_DB"
	EnvBaseURL = "TRINOVER_BASE_URL"
)

// Config is the complete runtime configuration.
type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Client  ClientConfig   `yaml:"client"`
	DB      string         `yaml:"db"`
	Scraper scraper.Config `yaml:"scraper"`
	Compare compare.Config `yaml:"compare"`
	Log     LogConfig      `yaml:"log"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	Ecosystem string `yaml:"ecosystem"`
}

// ClientConfig configures CLI access to a running server.
type ClientConfig struct {
	BaseURL string `yaml:"base_url"`
}

// LogConfig selects the logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:      "127.0.0.1:5000",
			Ecosystem: "Trino",
		},
		Client:  ClientConfig{BaseURL: "http://127.0.0.1:5000"},
		DB:      "trinover.db",
		Scraper: scraper.DefaultConfig(),
		Compare: compare.DefaultConfig(),
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, cfg.Validate()
}

// LoadEnv loads variables from the given .env files into the process
// environment without replacing values that are already set. Missing files
// are skipped.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvDB); v != "" {
		c.DB = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.Client.BaseURL = v
	}
}

// Validate checks the settings that have no usable zero value.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if strings.TrimSpace(c.DB) == "" {
		errs = append(errs, errors.New("db is required"))
	}
	if c.Compare.CacheTTL < 0 {
		errs = append(errs, errors.New("compare.cache_ttl must not be negative"))
	}
	if c.Scraper.Parallelism < 1 {
		errs = append(errs, errors.New("scraper.parallelism must be at least 1"))
	}
	return errors.Join(errs...)
}

// Save writes c to path as YAML.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
