// Package costs implements usage and cost accounting for processing units.
// Records are append-only; aggregation happens in memory with best-effort
// persistence for later reporting.
package costs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Record captures the usage and computed cost of a single unit invocation.
// Records are never mutated after creation.
type Record struct {
	ID               uuid.UUID `json:"id"`
	UnitName         string    `json:"unit_name"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens"`
	CostUSD          float64   `json:"cost_usd"`
	CreatedAt        time.Time `json:"created_at"`
}

// UnitReport aggregates records for one unit.
type UnitReport struct {
	UnitName    string  `json:"unit_name"`
	Invocations int     `json:"invocations"`
	TotalTokens int     `json:"total_tokens"`
	TotalCost   float64 `json:"total_cost"`
}

// Store persists cost records. Implementations must treat writes as
// append-only.
type Store interface {
	Save(ctx context.Context, record Record) error
}

// Tracker accumulates cost records and exposes aggregate reporting.
// A single coarse lock guards append and aggregation; contention is low
// because records arrive at most once per adapter invocation.
type Tracker struct {
	store  Store
	logger *slog.Logger

	mu      sync.Mutex
	records []Record
}

// NewTracker creates a Tracker. The store may be nil, in which case records
// are kept in memory only.
func NewTracker(store Store, logger *slog.Logger) *Tracker {
	return &Tracker{
		store:  store,
		logger: logger.With("system", "costs"),
	}
}

// Add appends a record and persists it best-effort. Persistence failures
// are logged and never propagate; the in-memory aggregate stays authoritative
// for the process lifetime.
func (t *Tracker) Add(ctx context.Context, record Record) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	t.mu.Lock()
	t.records = append(t.records, record)
	t.mu.Unlock()

	if t.store != nil {
		if err := t.store.Save(ctx, record); err != nil {
			t.logger.Warn("cost record persist failed",
				"unit", record.UnitName,
				"error", err,
			)
		}
	}
}

// Total returns the accumulated cost across all units.
func (t *Tracker) Total() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	var total float64
	for _, r := range t.records {
		total += r.CostUSD
	}
	return total
}

// TotalForUnit returns the accumulated cost for a single unit.
func (t *Tracker) TotalForUnit(name string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	var total float64
	for _, r := range t.records {
		if r.UnitName == name {
			total += r.CostUSD
		}
	}
	return total
}

// Count returns the number of recorded invocations.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// Report returns per-unit aggregates keyed by unit name.
func (t *Tracker) Report() map[string]UnitReport {
	t.mu.Lock()
	defer t.mu.Unlock()

	report := make(map[string]UnitReport)
	for _, r := range t.records {
		agg := report[r.UnitName]
		agg.UnitName = r.UnitName
		agg.Invocations++
		agg.TotalTokens += r.TotalTokens
		agg.TotalCost += r.CostUSD
		report[r.UnitName] = agg
	}
	return report
}
