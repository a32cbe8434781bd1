package adapter

import (
	"errors"
	"fmt"
)

// TransientError indicates a failure that may succeed on retry: timeouts,
// throttling, network interruptions, or provider-side outages.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient adapter failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError indicates a failure that retrying will not fix: semantic
// rejections, unsupported operations, or malformed requests.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent adapter failure: %v", e.Err)
}

func (e *PermanentError) Unwrap() error { return e.Err }

// Transient wraps err as a TransientError.
func Transient(err error) error {
	return &TransientError{Err: err}
}

// Permanent wraps err as a PermanentError.
func Permanent(err error) error {
	return &PermanentError{Err: err}
}

// IsTransient reports whether err is classified as transient.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// IsPermanent reports whether err is classified as permanent.
func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}
