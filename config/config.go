// Package config resolves dslreviews settings from defaults, the YAML config
// file and DSLREVIEWS_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pevans/dslreviews/page"
)

// Environment variables that override the config file.
const (
	EnvDSN          = "DSLREVIEWS_DSN"
	EnvFetchTimeout = "DSLREVIEWS_FETCH_TIMEOUT"
	EnvUserAgent    = "DSLREVIEWS_USER_AGENT"
	EnvFormat       = "DSLREVIEWS_FORMAT"
	EnvLogLevel     = "DSLREVIEWS_LOG_LEVEL"
)

// Config is the resolved configuration.
type Config struct {
	DSN          string
	FetchTimeout time.Duration
	UserAgent    string
	Format       string
	LogLevel     string
	LogPretty    bool
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DSN:          "reviews.db",
		FetchTimeout: 10 * time.Second,
		UserAgent:    page.DefaultUserAgent,
		Format:       "csv",
		LogLevel:     "info",
		LogPretty:    true,
	}
}

// Load resolves the configuration using the file at path, or the default
// config file location when path is empty.
func Load(path string) (*Config, error) {
	var fc *FileConfig
	var err error
	if path == "" {
		fc, err = LoadConfigFile()
	} else {
		fc, err = LoadConfigFileFrom(path)
	}
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := cfg.ApplyFile(fc); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyFile overlays the non-empty settings of fc. A nil fc is ignored.
func (c *Config) ApplyFile(fc *FileConfig) error {
	if fc == nil {
		return nil
	}

	if fc.Storage.DSN != "" {
		c.DSN = fc.Storage.DSN
	}
	if fc.Fetch.Timeout != "" {
		timeout, err := time.ParseDuration(fc.Fetch.Timeout)
		if err != nil {
			return fmt.Errorf("invalid fetch timeout in config file: %w", err)
		}
		c.FetchTimeout = timeout
	}
	if fc.Fetch.UserAgent != "" {
		c.UserAgent = fc.Fetch.UserAgent
	}
	if fc.Output.Format != "" {
		c.Format = fc.Output.Format
	}
	if fc.Log.Level != "" {
		c.LogLevel = fc.Log.Level
	}
	if fc.Log.Pretty != nil {
		c.LogPretty = *fc.Log.Pretty
	}

	return nil
}

// ApplyEnv overlays settings from environment variables read with getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if value := getenv(EnvDSN); value != "" {
		c.DSN = value
	}
	if value := getenv(EnvFetchTimeout); value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvFetchTimeout, err)
		}
		c.FetchTimeout = timeout
	}
	if value := getenv(EnvUserAgent); value != "" {
		c.UserAgent = value
	}
	if value := getenv(EnvFormat); value != "" {
		c.Format = value
	}
	if value := getenv(EnvLogLevel); value != "" {
		c.LogLevel = value
	}

	return nil
}
