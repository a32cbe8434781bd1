package agents

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/chronicle-ai/chronicle/internal/adapter"
	"github.com/chronicle-ai/chronicle/internal/costs"
	"github.com/chronicle-ai/chronicle/internal/prompts"
	"github.com/chronicle-ai/chronicle/pkg/breaker"
	"github.com/chronicle-ai/chronicle/pkg/formatting"
	"github.com/chronicle-ai/chronicle/pkg/ratelimit"
)

// validateFunc checks an input against a unit's declared schema.
// It must be free of side effects.
type validateFunc func(Input) error

// baseUnit implements the shared execution contract for all unit variants:
// circuit breaker admission, rate limit admission, validation, adapter
// invocation with bounded retries, and cost/metrics accounting.
type baseUnit struct {
	name      string
	taskTypes []TaskType
	system    string
	validate  validateFunc

	cfg     UnitConfig
	ai      adapter.Adapter
	breaker *breaker.Breaker
	limiter *ratelimit.Limiter
	tracker *costs.Tracker
	metrics *Metrics
	logger  *slog.Logger
}

func newBaseUnit(
	name string,
	taskTypes []TaskType,
	system string,
	validate validateFunc,
	cfg UnitConfig,
	ai adapter.Adapter,
	tracker *costs.Tracker,
	logger *slog.Logger,
) *baseUnit {
	return &baseUnit{
		name:      name,
		taskTypes: taskTypes,
		system:    system,
		validate:  validate,
		cfg:       cfg,
		ai:        ai,
		breaker:   breaker.New(cfg.Breaker),
		limiter:   ratelimit.New(cfg.RateLimit),
		tracker:   tracker,
		metrics:   NewMetrics(name),
		logger:    logger.With("unit", name),
	}
}

func (u *baseUnit) Name() string { return u.name }

func (u *baseUnit) TaskTypes() []TaskType {
	return slices.Clone(u.taskTypes)
}

func (u *baseUnit) Metrics() *Metrics { return u.metrics }

// BreakerState exposes the circuit position for reporting.
func (u *baseUnit) BreakerState() breaker.State {
	return u.breaker.State()
}

func (u *baseUnit) Execute(ctx context.Context, input Input) (*Result, error) {
	start := time.Now()

	if err := u.breaker.Allow(); err != nil {
		u.metrics.RecordFailure(time.Since(start), "unit_unavailable")
		return nil, &UnitUnavailableError{Unit: u.name}
	}

	if err := u.limiter.Wait(ctx, u.name); err != nil {
		if ctx.Err() != nil {
			u.metrics.RecordFailure(time.Since(start), "cancelled")
			return nil, ctx.Err()
		}
		u.metrics.RecordFailure(time.Since(start), "rate_limited")
		return nil, &RateLimitExceededError{Unit: u.name}
	}

	if err := u.validate(input); err != nil {
		u.metrics.RecordFailure(time.Since(start), "validation")
		return nil, err
	}

	resp, err := u.invoke(ctx, input)
	if err != nil {
		u.metrics.RecordFailure(time.Since(start), classify(err))
		return nil, err
	}

	record := costs.Record{
		UnitName:         u.name,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
		CostUSD:          u.cfg.Pricing.Cost(resp.Usage.PromptTokens, resp.Usage.CompletionTokens),
	}
	u.tracker.Add(ctx, record)
	u.breaker.RecordSuccess()

	output, parseErr := formatting.Parse[map[string]any](resp.Content)
	if parseErr != nil {
		// Model ignored the response specification. Keep the raw content
		// so callers can still surface it.
		output = map[string]any{"content": resp.Content}
	}

	duration := time.Since(start)
	u.metrics.RecordSuccess(duration, record.CostUSD)

	u.logger.InfoContext(
		ctx, "unit execution complete",
		"task", input.TaskType,
		"tokens", resp.Usage.TotalTokens,
		"cost", record.CostUSD,
		"duration", duration,
	)

	return &Result{
		TaskType: input.TaskType,
		UnitName: u.name,
		Output:   output,
		Raw:      resp.Content,
		Cost:     record,
		Duration: duration,
	}, nil
}

// invoke calls the adapter, retrying transient failures with exponential
// backoff up to the configured attempt bound. Every transient failure
// counts against the circuit breaker; permanent failures never do.
func (u *baseUnit) invoke(ctx context.Context, input Input) (*adapter.Response, error) {
	prompt := input.Prompt
	if prompt == "" {
		prompt = prompts.ComposeAnalysis(input.Text, input.Parameters)
	}

	req := adapter.Request{
		System:      u.system,
		Prompt:      prompt,
		Temperature: u.cfg.Temperature,
		MaxTokens:   u.cfg.MaxTokens,
	}

	delay := u.cfg.Retry.BaseDelayDuration()
	var lastErr error

	for attempt := 1; attempt <= u.cfg.Retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := u.breaker.Allow(); err != nil {
				return nil, &UnitUnavailableError{Unit: u.name}
			}

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			delay *= 2
		}

		resp, err := u.ai.Invoke(ctx, u.name, req)
		if err == nil {
			return resp, nil
		}

		if adapter.IsPermanent(err) {
			return nil, &PermanentAdapterError{Unit: u.name, Err: err}
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		u.breaker.RecordFailure()
		lastErr = err

		u.logger.WarnContext(
			ctx, "transient adapter failure",
			"task", input.TaskType,
			"attempt", attempt,
			"error", err,
		)
	}

	return nil, &TransientAdapterError{Unit: u.name, Err: lastErr}
}

func classify(err error) string {
	switch err.(type) {
	case *UnitUnavailableError:
		return "unit_unavailable"
	case *RateLimitExceededError:
		return "rate_limited"
	case *ValidationError:
		return "validation"
	case *TransientAdapterError:
		return "transient"
	case *PermanentAdapterError:
		return "permanent"
	default:
		return "other"
	}
}
