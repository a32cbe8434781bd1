package ratelimit

import (
	"fmt"
	"time"
)

// Config holds token bucket parameters shared by all keys of a Limiter.
type Config struct {
	// MaxCalls is the number of calls admitted per Window. It is also the
	// bucket burst capacity.
	MaxCalls int `toml:"max_calls" json:"max_calls"`
	// Window is the period over which MaxCalls applies.
	Window string `toml:"window" json:"window"`
	// MaxWait bounds how long a caller may block waiting for admission.
	MaxWait string `toml:"max_wait" json:"max_wait"`
}

// WindowDuration returns Window as a time.Duration.
func (c *Config) WindowDuration() time.Duration {
	d, _ := time.ParseDuration(c.Window)
	return d
}

// MaxWaitDuration returns MaxWait as a time.Duration.
func (c *Config) MaxWaitDuration() time.Duration {
	d, _ := time.ParseDuration(c.MaxWait)
	return d
}

// Finalize applies defaults and validation.
func (c *Config) Finalize() error {
	c.loadDefaults()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.MaxCalls != 0 {
		c.MaxCalls = overlay.MaxCalls
	}
	if overlay.Window != "" {
		c.Window = overlay.Window
	}
	if overlay.MaxWait != "" {
		c.MaxWait = overlay.MaxWait
	}
}

func (c *Config) loadDefaults() {
	if c.MaxCalls == 0 {
		c.MaxCalls = 10
	}
	if c.Window == "" {
		c.Window = "1m"
	}
	if c.MaxWait == "" {
		c.MaxWait = "5s"
	}
}

func (c *Config) validate() error {
	if c.MaxCalls < 1 {
		return fmt.Errorf("max_calls must be positive")
	}
	if d, err := time.ParseDuration(c.Window); err != nil || d <= 0 {
		return fmt.Errorf("window must be a positive duration")
	}
	if _, err := time.ParseDuration(c.MaxWait); err != nil {
		return fmt.Errorf("max_wait: %w", err)
	}
	return nil
}
