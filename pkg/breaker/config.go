package breaker

import (
	"fmt"
	"time"
)

// Config holds circuit breaker thresholds and timing.
type Config struct {
	// FailureThreshold is the number of consecutive counted failures that
	// opens the circuit.
	FailureThreshold int `toml:"failure_threshold" json:"failure_threshold"`
	// RecoveryTimeout is how long the circuit stays open before probing.
	RecoveryTimeout string `toml:"recovery_timeout" json:"recovery_timeout"`
	// SuccessThreshold is the number of consecutive half-open successes
	// required to close the circuit.
	SuccessThreshold int `toml:"success_threshold" json:"success_threshold"`
}

// RecoveryTimeoutDuration returns RecoveryTimeout as a time.Duration.
func (c *Config) RecoveryTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RecoveryTimeout)
	return d
}

// Finalize applies defaults and validation.
func (c *Config) Finalize() error {
	c.loadDefaults()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.FailureThreshold != 0 {
		c.FailureThreshold = overlay.FailureThreshold
	}
	if overlay.RecoveryTimeout != "" {
		c.RecoveryTimeout = overlay.RecoveryTimeout
	}
	if overlay.SuccessThreshold != 0 {
		c.SuccessThreshold = overlay.SuccessThreshold
	}
}

func (c *Config) loadDefaults() {
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 5
	}
	if c.RecoveryTimeout == "" {
		c.RecoveryTimeout = "30s"
	}
	if c.SuccessThreshold == 0 {
		c.SuccessThreshold = 2
	}
}

func (c *Config) validate() error {
	if c.FailureThreshold < 1 {
		return fmt.Errorf("failure_threshold must be positive")
	}
	if c.SuccessThreshold < 1 {
		return fmt.Errorf("success_threshold must be positive")
	}
	if _, err := time.ParseDuration(c.RecoveryTimeout); err != nil {
		return fmt.Errorf("recovery_timeout: %w", err)
	}
	return nil
}
