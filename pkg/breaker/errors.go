package breaker

import "errors"

// ErrOpen indicates the circuit is open and calls are being rejected.
var ErrOpen = errors.New("circuit breaker open")
