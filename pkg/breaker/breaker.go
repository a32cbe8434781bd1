// Package breaker provides a three-state circuit breaker for guarding
// calls to external collaborators that may fail persistently.
package breaker

import (
	"sync"
	"time"
)

// State represents the circuit breaker position.
type State string

// Circuit breaker states.
const (
	StateClosed   State = "CLOSED"
	StateOpen     State = "OPEN"
	StateHalfOpen State = "HALF_OPEN"
)

// Breaker tracks consecutive failures for a single collaborator and blocks
// calls once the failure threshold is reached. After the recovery timeout
// a limited number of probe calls is admitted; enough consecutive successes
// close the circuit, any failure reopens it.
type Breaker struct {
	cfg Config

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	openedAt  time.Time
}

// New creates a closed Breaker with the given configuration.
// The configuration must already be finalized.
func New(cfg Config) *Breaker {
	return &Breaker{
		cfg:   cfg,
		state: StateClosed,
	}
}

// Allow reports whether a call may proceed. While open, it returns ErrOpen
// until the recovery timeout elapses, at which point the breaker moves to
// half-open and admits probe calls.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if time.Since(b.openedAt) < b.cfg.RecoveryTimeoutDuration() {
			return ErrOpen
		}
		b.state = StateHalfOpen
		b.successes = 0
	}

	return nil
}

// RecordSuccess registers a successful call. In half-open state it counts
// toward the consecutive-success threshold that closes the circuit; in
// closed state it resets the failure count.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		b.successes++
		if b.successes >= b.cfg.SuccessThreshold {
			b.state = StateClosed
			b.failures = 0
			b.successes = 0
		}
	case StateClosed:
		b.failures = 0
	}
}

// RecordFailure registers a failed call. A half-open failure reopens the
// circuit immediately; closed failures accumulate until the failure
// threshold opens it. Callers decide which failures count — permanent
// input errors should not be recorded.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		b.open()
	case StateClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.open()
		}
	}
}

// open must be called with the mutex held.
func (b *Breaker) open() {
	b.state = StateOpen
	b.openedAt = time.Now()
	b.failures = 0
	b.successes = 0
}

// State returns the current breaker state without side effects.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
