package pipeline

import (
	"errors"
	"fmt"
)

// Sentinel errors for pipeline operations.
var (
	ErrJobNotFound  = errors.New("job not found")
	ErrJobExists    = errors.New("job already exists")
	ErrNoCheckpoint = errors.New("no checkpoint for job")
	ErrJobTerminal  = errors.New("job is in a terminal state")
)

// StateError reports which state a handler failure occurred in. It marks
// the job FAILED and triggers rollback.
type StateError struct {
	State State
	Err   error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state %s failed: %v", e.State, e.Err)
}

func (e *StateError) Unwrap() error { return e.Err }
