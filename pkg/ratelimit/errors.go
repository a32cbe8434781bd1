package ratelimit

import "errors"

// ErrWaitExceeded indicates admission would exceed the configured maximum wait.
var ErrWaitExceeded = errors.New("rate limit wait exceeded")
