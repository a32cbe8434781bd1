package orchestrator

import "github.com/chronicle-ai/chronicle/internal/agents"

// Stats reports per-unit metrics alongside orchestrator-wide totals.
type Stats struct {
	Units               []agents.MetricsSnapshot `json:"units"`
	TotalRequests       int                      `json:"total_requests"`
	TotalCost           float64                  `json:"total_cost"`
	ActiveConversations int                      `json:"active_conversations"`
}

// Stats snapshots every registered unit's metrics and the process-wide
// totals. Unit snapshots are taken under each unit's own lock; totals come
// from the cost tracker and conversation memory.
func (o *Orchestrator) Stats() Stats {
	units := o.registeredUnits()

	stats := Stats{
		Units:               make([]agents.MetricsSnapshot, 0, len(units)),
		TotalCost:           o.tracker.Total(),
		ActiveConversations: o.memory.ActiveConversations(),
	}

	for _, u := range units {
		snap := u.Metrics().Snapshot()
		stats.Units = append(stats.Units, snap)
		stats.TotalRequests += snap.Requests
	}

	return stats
}
