package agents

import (
	"errors"
	"fmt"
)

// ErrNoUnit indicates no unit is registered for a task type.
var ErrNoUnit = errors.New("no unit registered for task type")

// ValidationError indicates input that fails a unit's declared schema.
// It is permanent: never retried and never counted against the circuit
// breaker.
type ValidationError struct {
	Unit   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("unit %s: invalid input: %s", e.Unit, e.Reason)
}

// UnitUnavailableError indicates the unit's circuit breaker is open and the
// adapter was not invoked.
type UnitUnavailableError struct {
	Unit string
}

func (e *UnitUnavailableError) Error() string {
	return fmt.Sprintf("unit %s unavailable: circuit open", e.Unit)
}

// RateLimitExceededError indicates admission would exceed the configured
// maximum wait. The caller may retry later.
type RateLimitExceededError struct {
	Unit string
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("unit %s: rate limit exceeded", e.Unit)
}

// TransientAdapterError wraps an adapter failure that may succeed on retry.
// Each occurrence counts against the unit's circuit breaker.
type TransientAdapterError struct {
	Unit string
	Err  error
}

func (e *TransientAdapterError) Error() string {
	return fmt.Sprintf("unit %s: transient adapter failure: %v", e.Unit, e.Err)
}

func (e *TransientAdapterError) Unwrap() error { return e.Err }

// PermanentAdapterError wraps an adapter rejection that retrying will not
// fix. It does not count against the circuit breaker.
type PermanentAdapterError struct {
	Unit string
	Err  error
}

func (e *PermanentAdapterError) Error() string {
	return fmt.Sprintf("unit %s: permanent adapter failure: %v", e.Unit, e.Err)
}

func (e *PermanentAdapterError) Unwrap() error { return e.Err }
