// Package orchestrator routes tasks to registered processing units,
// coordinates multi-unit document analyses, and drives retrieval-augmented
// conversational question answering.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chronicle-ai/chronicle/internal/agents"
	"github.com/chronicle-ai/chronicle/internal/costs"
	"github.com/chronicle-ai/chronicle/internal/memory"
	"github.com/chronicle-ai/chronicle/internal/retrieval"
)

// Orchestrator is constructed once at startup and passed by reference to
// every call site; it holds no hidden global state.
type Orchestrator struct {
	tracker  *costs.Tracker
	memory   *memory.Memory
	searcher retrieval.Searcher
	logger   *slog.Logger

	mu    sync.RWMutex
	units map[agents.TaskType]agents.Unit
}

// New creates an Orchestrator. The searcher may be nil when question
// answering is not used.
func New(
	tracker *costs.Tracker,
	mem *memory.Memory,
	searcher retrieval.Searcher,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		tracker:  tracker,
		memory:   mem,
		searcher: searcher,
		logger:   logger.With("system", "orchestrator"),
		units:    make(map[agents.TaskType]agents.Unit),
	}
}

// Register associates a unit with one or more task types. The last
// registration for a task type wins; replacing a prior unit is an explicit
// override, not a merge.
func (o *Orchestrator) Register(unit agents.Unit, taskTypes ...agents.TaskType) {
	if len(taskTypes) == 0 {
		taskTypes = unit.TaskTypes()
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	for _, t := range taskTypes {
		if prior, ok := o.units[t]; ok && prior.Name() != unit.Name() {
			o.logger.Info("unit registration override",
				"task", t,
				"previous", prior.Name(),
				"unit", unit.Name(),
			)
		}
		o.units[t] = unit
	}
}

// RouteTask delegates a single task to its registered unit. Unit failures
// are returned as the typed errors from internal/agents.
func (o *Orchestrator) RouteTask(ctx context.Context, taskType agents.TaskType, input agents.Input) (*agents.Result, error) {
	unit, err := o.unit(taskType)
	if err != nil {
		return nil, err
	}

	input.TaskType = taskType
	return unit.Execute(ctx, input)
}

// ClearConversation purges stored turns for the conversation id.
// Subsequent questions with that id start fresh.
func (o *Orchestrator) ClearConversation(conversationID string) {
	o.memory.Clear(conversationID)
}

func (o *Orchestrator) unit(taskType agents.TaskType) (agents.Unit, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	unit, ok := o.units[taskType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", agents.ErrNoUnit, taskType)
	}
	return unit, nil
}

// registeredUnits returns the distinct units currently registered.
func (o *Orchestrator) registeredUnits() []agents.Unit {
	o.mu.RLock()
	defer o.mu.RUnlock()

	seen := make(map[string]bool, len(o.units))
	units := make([]agents.Unit, 0, len(o.units))
	for _, u := range o.units {
		if seen[u.Name()] {
			continue
		}
		seen[u.Name()] = true
		units = append(units, u)
	}
	return units
}
