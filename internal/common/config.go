// Package common provides shared utilities for folio
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for folio
type Config struct {
	Environment string        `toml:"environment"`
	API         APIConfig     `toml:"api"`
	Server      ServerConfig  `toml:"server"`
	Session     SessionConfig `toml:"session"`
	Poll        PollConfig    `toml:"poll"`
	Charts      ChartsConfig  `toml:"charts"`
	Logging     LoggingConfig `toml:"logging"`
}

// APIConfig holds the portfolio backend connection settings
type APIConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"` // requests per second
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *APIConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// ServerConfig holds the local web dashboard configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// SessionConfig holds where the local session store lives.
type SessionConfig struct {
	Path string `toml:"path"` // JSON key/value file standing in for browser local storage
}

// PollConfig holds the quote polling interval used by the widgets view.
type PollConfig struct {
	Interval string `toml:"interval"`
}

// GetInterval parses and returns the poll interval
func (c *PollConfig) GetInterval() time.Duration {
	d, err := time.ParseDuration(c.Interval)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// ChartsConfig holds PNG chart dimensions
type ChartsConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		API: APIConfig{
			BaseURL:   "http://localhost:5000",
			RateLimit: 10,
			Timeout:   "30s",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 4300,
		},
		Session: SessionConfig{
			Path: defaultSessionPath(),
		},
		Poll: PollConfig{
			Interval: "5m",
		},
		Charts: ChartsConfig{
			Width:  900,
			Height: 400,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// defaultSessionPath places the session file under the user config dir,
// falling back to the working directory.
func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join(".folio", "session.json")
	}
	return filepath.Join(dir, "folio", "session.json")
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// A .env next to the working directory is optional; real env vars win.
	_ = godotenv.Load()

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if url := os.Getenv("FOLIO_API_URL"); url != "" {
		config.API.BaseURL = strings.TrimRight(url, "/")
	}

	if timeout := os.Getenv("FOLIO_API_TIMEOUT"); timeout != "" {
		config.API.Timeout = timeout
	}

	if host := os.Getenv("FOLIO_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FOLIO_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("FOLIO_DATA_PATH"); path != "" {
		config.Session.Path = filepath.Join(path, "session.json")
	}

	if interval := os.Getenv("FOLIO_POLL_INTERVAL"); interval != "" {
		config.Poll.Interval = interval
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ServerAddr returns host:port for the web dashboard listener.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
