package adapter

import (
	"fmt"
	"os"
	"time"
)

// Environment variable names for adapter configuration overrides.
const (
	EnvAdapterBaseURL = "CHRONICLE_ADAPTER_BASE_URL"
	EnvAdapterToken   = "CHRONICLE_ADAPTER_TOKEN"
	EnvAdapterModel   = "CHRONICLE_ADAPTER_MODEL"
	EnvAdapterTimeout = "CHRONICLE_ADAPTER_TIMEOUT"
)

// Config holds connection parameters for the model endpoint.
type Config struct {
	BaseURL string `toml:"base_url"`
	Token   string `toml:"token"`
	Model   string `toml:"model"`
	Timeout string `toml:"timeout"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Token != "" {
		c.Token = overlay.Token
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *Config) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:11434/v1"
	}
	if c.Model == "" {
		c.Model = "llama3.2"
	}
	if c.Timeout == "" {
		c.Timeout = "60s"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvAdapterBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvAdapterToken); v != "" {
		c.Token = v
	}
	if v := os.Getenv(EnvAdapterModel); v != "" {
		c.Model = v
	}
	if v := os.Getenv(EnvAdapterTimeout); v != "" {
		c.Timeout = v
	}
}

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url required")
	}
	if c.Model == "" {
		return fmt.Errorf("model required")
	}
	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("timeout must be a positive duration")
	}
	return nil
}
