package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/chronicle-ai/chronicle/pkg/pagination"
)

// CheckpointVersion is the current checkpoint serialization version.
// Bump when the state name or payload shape changes incompatibly.
const CheckpointVersion = "1.0"

// Checkpoint is an immutable snapshot of a job taken after each successful
// state transition and before declaring failure. Superseded checkpoints
// may be pruned by a retention policy outside this core.
type Checkpoint struct {
	ID        uuid.UUID      `json:"id"`
	JobID     uuid.UUID      `json:"job_id"`
	Version   string         `json:"version"`
	State     State          `json:"state"`
	History   []State        `json:"history"`
	Payload   map[string]any `json:"payload"`
	Error     *string        `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// CheckpointStore persists checkpoints. Implementations must provide
// read-your-writes consistency for the saving process.
type CheckpointStore interface {
	Save(ctx context.Context, cp Checkpoint) error
	// LoadLatest returns the most recent checkpoint for the job, or
	// ErrNoCheckpoint when none exists.
	LoadLatest(ctx context.Context, jobID uuid.UUID) (*Checkpoint, error)
	// Count returns the number of checkpoints stored for the job.
	Count(ctx context.Context, jobID uuid.UUID) (int, error)
}

// JobStore persists job rows.
type JobStore interface {
	Create(ctx context.Context, job *Job) error
	Update(ctx context.Context, job *Job) error
	Find(ctx context.Context, id uuid.UUID) (*Job, error)
	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters JobFilters,
	) (*pagination.PageResult[Job], error)
}

// newCheckpoint snapshots a job. The payload and history are copied so
// later job mutations cannot alter a persisted checkpoint.
func newCheckpoint(job *Job, errDetail *string) Checkpoint {
	payload := make(map[string]any, len(job.Payload))
	for k, v := range job.Payload {
		payload[k] = v
	}

	history := make([]State, len(job.History))
	copy(history, job.History)

	return Checkpoint{
		ID:        uuid.New(),
		JobID:     job.ID,
		Version:   CheckpointVersion,
		State:     job.State,
		History:   history,
		Payload:   payload,
		Error:     errDetail,
		CreatedAt: time.Now(),
	}
}
