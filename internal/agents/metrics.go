package agents

import (
	"sync"
	"time"
)

// MetricsSnapshot is a point-in-time copy of a unit's rolling metrics.
type MetricsSnapshot struct {
	UnitName      string         `json:"unit_name"`
	Requests      int            `json:"requests"`
	Successes     int            `json:"successes"`
	Failures      int            `json:"failures"`
	ErrorCounts   map[string]int `json:"error_counts"`
	TotalDuration time.Duration  `json:"total_duration"`
	TotalCost     float64        `json:"total_cost"`
}

// SuccessRate returns successes over requests, or zero before any request.
func (s MetricsSnapshot) SuccessRate() float64 {
	if s.Requests == 0 {
		return 0
	}
	return float64(s.Successes) / float64(s.Requests)
}

// AverageDuration returns the mean request duration, or zero before any request.
func (s MetricsSnapshot) AverageDuration() time.Duration {
	if s.Requests == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(s.Requests)
}

// AverageCost returns the mean cost per successful request, or zero.
func (s MetricsSnapshot) AverageCost() float64 {
	if s.Successes == 0 {
		return 0
	}
	return s.TotalCost / float64(s.Successes)
}

// Metrics accumulates per-unit request outcomes for the process lifetime.
// All mutation happens under the unit's own lock; units never contend with
// each other.
type Metrics struct {
	unitName string

	mu            sync.Mutex
	requests      int
	successes     int
	failures      int
	errorCounts   map[string]int
	totalDuration time.Duration
	totalCost     float64
}

// NewMetrics creates an empty Metrics record for the named unit.
func NewMetrics(unitName string) *Metrics {
	return &Metrics{
		unitName:    unitName,
		errorCounts: make(map[string]int),
	}
}

// RecordSuccess registers a successful invocation.
func (m *Metrics) RecordSuccess(duration time.Duration, cost float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests++
	m.successes++
	m.totalDuration += duration
	m.totalCost += cost
}

// RecordFailure registers a failed invocation under an error class.
func (m *Metrics) RecordFailure(duration time.Duration, errorClass string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests++
	m.failures++
	m.totalDuration += duration
	m.errorCounts[errorClass]++
}

// Snapshot returns a copy of the current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[string]int, len(m.errorCounts))
	for k, v := range m.errorCounts {
		counts[k] = v
	}

	return MetricsSnapshot{
		UnitName:      m.unitName,
		Requests:      m.requests,
		Successes:     m.successes,
		Failures:      m.failures,
		ErrorCounts:   counts,
		TotalDuration: m.totalDuration,
		TotalCost:     m.totalCost,
	}
}

// Reset clears all counters. Administrative use only.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = 0
	m.successes = 0
	m.failures = 0
	m.errorCounts = make(map[string]int)
	m.totalDuration = 0
	m.totalCost = 0
}
