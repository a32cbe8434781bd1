// Package pipeline drives documents through an ordered sequence of
// processing states with checkpoint persistence, resume, cooperative
// cancellation, and compensating rollback on failure.
package pipeline

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// State names a pipeline stage. Non-terminal states form a strict forward
// order; FAILED and CANCELLED are terminal and reachable from any
// non-terminal state.
type State string

// Pipeline states in execution order, then terminals.
const (
	StateSubmitted         State = "SUBMITTED"
	StateStoring           State = "STORING"
	StateExtractingText    State = "EXTRACTING_TEXT"
	StateCleaning          State = "CLEANING"
	StateAnalyzingEntities State = "ANALYZING_ENTITIES"
	StateExtractingActions State = "EXTRACTING_ACTIONS"
	StateExtractingRisks   State = "EXTRACTING_RISKS"
	StateSummarizing       State = "SUMMARIZING"
	StateEmbedding         State = "EMBEDDING"
	StatePersistingResults State = "PERSISTING_RESULTS"
	StateCompleted         State = "COMPLETED"
	StateFailed            State = "FAILED"
	StateCancelled         State = "CANCELLED"
)

// order lists the working states a job moves through. COMPLETED follows
// the last entry.
var order = []State{
	StateSubmitted,
	StateStoring,
	StateExtractingText,
	StateCleaning,
	StateAnalyzingEntities,
	StateExtractingActions,
	StateExtractingRisks,
	StateSummarizing,
	StateEmbedding,
	StatePersistingResults,
}

// Terminal reports whether the state ends a job's lifecycle.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// Next returns the state following s in pipeline order. The final working
// state advances to COMPLETED; terminal states return themselves.
func (s State) Next() State {
	if s.Terminal() {
		return s
	}

	idx := slices.Index(order, s)
	if idx < 0 || idx == len(order)-1 {
		return StateCompleted
	}
	return order[idx+1]
}

// Progress maps a state to a 0-100 completion percentage.
func (s State) Progress() int {
	switch s {
	case StateCompleted:
		return 100
	case StateFailed, StateCancelled:
		return 0
	}

	idx := slices.Index(order, s)
	if idx < 0 {
		return 0
	}
	return idx * 100 / len(order)
}

// Valid reports whether s is a known pipeline state.
func (s State) Valid() bool {
	return s.Terminal() || slices.Contains(order, s)
}

// Job tracks one document's journey through the pipeline. It is mutated
// exclusively by the Machine; terminal jobs are immutable.
type Job struct {
	ID        uuid.UUID      `json:"id"`
	OwnerID   string         `json:"owner_id"`
	State     State          `json:"state"`
	History   []State        `json:"history"`
	Payload   map[string]any `json:"payload"`
	Failure   *string        `json:"failure,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Payload keys written by the standard handlers.
const (
	KeyDocumentID = "document_id"
	KeyFilename   = "filename"
	KeyContent    = "content"
	KeyText       = "text"
	KeyEntities   = "entities"
	KeyActions    = "actions"
	KeyRisks      = "risks"
	KeySummary    = "summary"
	KeyChunkCount = "chunk_count"
	KeyArtifacts  = "artifacts"
)

// Artifacts returns the storage keys recorded for rollback, oldest first.
func (j *Job) Artifacts() []string {
	raw, ok := j.Payload[KeyArtifacts].([]any)
	if ok {
		keys := make([]string, 0, len(raw))
		for _, v := range raw {
			if s, ok := v.(string); ok {
				keys = append(keys, s)
			}
		}
		return keys
	}

	if keys, ok := j.Payload[KeyArtifacts].([]string); ok {
		return slices.Clone(keys)
	}
	return nil
}

// AddArtifact records a storage key for compensating rollback.
func (j *Job) AddArtifact(key string) {
	j.Payload[KeyArtifacts] = append(j.Artifacts(), key)
}
