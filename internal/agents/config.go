package agents

import (
	"fmt"
	"time"

	"github.com/chronicle-ai/chronicle/internal/costs"
	"github.com/chronicle-ai/chronicle/pkg/breaker"
	"github.com/chronicle-ai/chronicle/pkg/ratelimit"
)

// RetryConfig bounds transient-failure retries within a unit execution.
type RetryConfig struct {
	// MaxAttempts is the total number of adapter attempts, including the first.
	MaxAttempts int `toml:"max_attempts" json:"max_attempts"`
	// BaseDelay is the first backoff interval; it doubles per attempt.
	BaseDelay string `toml:"base_delay" json:"base_delay"`
}

// BaseDelayDuration returns BaseDelay as a time.Duration.
func (c *RetryConfig) BaseDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.BaseDelay)
	return d
}

// UnitConfig holds the per-unit reliability and cost parameters.
type UnitConfig struct {
	RateLimit   ratelimit.Config `toml:"rate_limit"`
	Breaker     breaker.Config   `toml:"breaker"`
	Retry       RetryConfig      `toml:"retry"`
	Pricing     costs.Pricing    `toml:"pricing"`
	Temperature float64          `toml:"temperature"`
	MaxTokens   int              `toml:"max_tokens"`
}

// Finalize applies defaults and validation across all sub-configs.
func (c *UnitConfig) Finalize() error {
	if err := c.RateLimit.Finalize(); err != nil {
		return fmt.Errorf("rate_limit: %w", err)
	}
	if err := c.Breaker.Finalize(); err != nil {
		return fmt.Errorf("breaker: %w", err)
	}

	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.BaseDelay == "" {
		c.Retry.BaseDelay = "200ms"
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry: max_attempts must be positive")
	}
	if _, err := time.ParseDuration(c.Retry.BaseDelay); err != nil {
		return fmt.Errorf("retry: base_delay: %w", err)
	}

	if c.Temperature == 0 {
		c.Temperature = 0.2
	}

	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *UnitConfig) Merge(overlay *UnitConfig) {
	c.RateLimit.Merge(&overlay.RateLimit)
	c.Breaker.Merge(&overlay.Breaker)
	if overlay.Retry.MaxAttempts != 0 {
		c.Retry.MaxAttempts = overlay.Retry.MaxAttempts
	}
	if overlay.Retry.BaseDelay != "" {
		c.Retry.BaseDelay = overlay.Retry.BaseDelay
	}
	if overlay.Pricing.PromptPer1K != 0 {
		c.Pricing.PromptPer1K = overlay.Pricing.PromptPer1K
	}
	if overlay.Pricing.CompletionPer1K != 0 {
		c.Pricing.CompletionPer1K = overlay.Pricing.CompletionPer1K
	}
	if overlay.Temperature != 0 {
		c.Temperature = overlay.Temperature
	}
	if overlay.MaxTokens != 0 {
		c.MaxTokens = overlay.MaxTokens
	}
}
