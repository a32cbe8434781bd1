package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chronicle-ai/chronicle/pkg/notify"
	"github.com/chronicle-ai/chronicle/pkg/pagination"
	"github.com/chronicle-ai/chronicle/pkg/storage"
)

// TopicProgress is the notification topic for job progress events.
const TopicProgress = "pipeline.progress"

// Handler executes the work of one pipeline state, mutating the job
// payload. Handlers must be deterministic for a given payload and safe to
// re-run: resume may re-execute a state after a crash between the state's
// side effect and its checkpoint.
type Handler func(ctx context.Context, job *Job) error

// Document is the submission input for a pipeline run.
type Document struct {
	OwnerID     string
	Filename    string
	ContentType string
	Content     string
}

// Machine drives jobs through the pipeline. State transitions for one job
// are strictly sequential; the Machine never runs two handlers for the
// same job concurrently.
type Machine struct {
	jobs        JobStore
	checkpoints CheckpointStore
	store       storage.System
	notifier    notify.Publisher
	logger      *slog.Logger

	handlers map[State]Handler
	onFail   func(ctx context.Context, job *Job)

	mu      sync.Mutex
	cancels map[uuid.UUID]bool
}

// NewMachine creates a Machine. Handlers are registered separately so the
// standard pipeline and tests can wire their own.
func NewMachine(
	jobs JobStore,
	checkpoints CheckpointStore,
	store storage.System,
	notifier notify.Publisher,
	logger *slog.Logger,
) *Machine {
	return &Machine{
		jobs:        jobs,
		checkpoints: checkpoints,
		store:       store,
		notifier:    notifier,
		logger:      logger.With("system", "pipeline"),
		handlers:    make(map[State]Handler),
		cancels:     make(map[uuid.UUID]bool),
	}
}

// Register installs the handler for a state, replacing any prior handler.
func (m *Machine) Register(state State, h Handler) {
	m.handlers[state] = h
}

// OnFailure installs a hook invoked after a job is marked FAILED and
// rolled back. The hook must not mutate the job.
func (m *Machine) OnFailure(fn func(ctx context.Context, job *Job)) {
	m.onFail = fn
}

// Submit creates a new job in SUBMITTED and persists it. The first
// checkpoint is written by the first Advance.
func (m *Machine) Submit(ctx context.Context, doc Document) (*Job, error) {
	now := time.Now()
	job := &Job{
		ID:      uuid.New(),
		OwnerID: doc.OwnerID,
		State:   StateSubmitted,
		History: []State{},
		Payload: map[string]any{
			KeyFilename:    doc.Filename,
			KeyContent:     doc.Content,
			"content_type": doc.ContentType,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := m.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	m.logger.InfoContext(ctx, "job submitted",
		"job_id", job.ID,
		"owner", job.OwnerID,
		"filename", doc.Filename,
	)

	return job, nil
}

// Advance executes the handler for the job's current state. On success it
// records the completed state, moves to the next state, persists a
// checkpoint and the job, and emits a progress event. On handler failure
// it marks the job FAILED, persists a failure checkpoint, rolls back
// recorded artifacts, and returns the failed job with a nil error —
// expected failures do not raise past this boundary. The returned error
// is reserved for persistence faults.
func (m *Machine) Advance(ctx context.Context, job *Job) (*Job, error) {
	if job.State.Terminal() {
		return job, nil
	}

	handler, ok := m.handlers[job.State]
	if !ok {
		return m.fail(ctx, job, &StateError{
			State: job.State,
			Err:   fmt.Errorf("no handler registered"),
		})
	}

	if err := handler(ctx, job); err != nil {
		return m.fail(ctx, job, &StateError{State: job.State, Err: err})
	}

	job.History = append(job.History, job.State)
	job.State = job.State.Next()
	job.UpdatedAt = time.Now()

	cp := newCheckpoint(job, nil)
	if err := m.checkpoints.Save(ctx, cp); err != nil {
		return job, fmt.Errorf("save checkpoint: %w", err)
	}
	if err := m.jobs.Update(ctx, job); err != nil {
		return job, fmt.Errorf("update job: %w", err)
	}

	m.publishProgress(ctx, job, fmt.Sprintf("reached %s", job.State))

	return job, nil
}

// Run advances the job until it reaches a terminal state, honoring
// cooperative cancellation at each checkpoint boundary.
func (m *Machine) Run(ctx context.Context, jobID uuid.UUID) (*Job, error) {
	job, err := m.jobs.Find(ctx, jobID)
	if err != nil {
		return nil, err
	}

	return m.run(ctx, job)
}

func (m *Machine) run(ctx context.Context, job *Job) (*Job, error) {
	for !job.State.Terminal() {
		if cancelled, err := m.checkCancelled(ctx, job); err != nil {
			return job, err
		} else if cancelled {
			return job, nil
		}

		if err := ctx.Err(); err != nil {
			return job, err
		}

		advanced, err := m.Advance(ctx, job)
		if err != nil {
			return advanced, err
		}
		job = advanced
	}

	return job, nil
}

// Resume reconstructs a job from its latest checkpoint and continues
// execution. Resuming a COMPLETED job is a no-op returning the job
// unchanged. A job with no checkpoint restarts from its persisted row.
func (m *Machine) Resume(ctx context.Context, jobID uuid.UUID) (*Job, error) {
	job, err := m.jobs.Find(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.State.Terminal() {
		return job, nil
	}

	cp, err := m.checkpoints.LoadLatest(ctx, jobID)
	switch {
	case err == nil:
		job.State = cp.State
		job.History = cp.History
		job.Payload = cp.Payload
	case err == ErrNoCheckpoint:
		// First advance never completed; continue from the job row.
	default:
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	m.logger.InfoContext(ctx, "job resumed",
		"job_id", jobID,
		"state", job.State,
	)

	return m.run(ctx, job)
}

// Cancel requests cooperative cancellation. The job is marked CANCELLED
// at its next checkpoint boundary; an in-flight handler is not
// interrupted.
func (m *Machine) Cancel(jobID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancels[jobID] = true
}

// GetJob returns the persisted job.
func (m *Machine) GetJob(ctx context.Context, jobID uuid.UUID) (*Job, error) {
	return m.jobs.Find(ctx, jobID)
}

// ListJobs returns a page of persisted jobs for administrative inspection.
func (m *Machine) ListJobs(
	ctx context.Context,
	page pagination.PageRequest,
	filters JobFilters,
) (*pagination.PageResult[Job], error) {
	return m.jobs.List(ctx, page, filters)
}

func (m *Machine) checkCancelled(ctx context.Context, job *Job) (bool, error) {
	m.mu.Lock()
	requested := m.cancels[job.ID]
	if requested {
		delete(m.cancels, job.ID)
	}
	m.mu.Unlock()

	if !requested {
		return false, nil
	}

	job.State = StateCancelled
	job.UpdatedAt = time.Now()

	cp := newCheckpoint(job, nil)
	if err := m.checkpoints.Save(ctx, cp); err != nil {
		return true, fmt.Errorf("save cancel checkpoint: %w", err)
	}
	if err := m.jobs.Update(ctx, job); err != nil {
		return true, fmt.Errorf("update cancelled job: %w", err)
	}

	m.publishProgress(ctx, job, "cancelled")
	m.logger.InfoContext(ctx, "job cancelled", "job_id", job.ID)

	return true, nil
}

// fail marks the job FAILED, persists a failure checkpoint, rolls back
// recorded artifacts, and emits a failure event. Rollback problems are
// logged and never mask the original failure.
func (m *Machine) fail(ctx context.Context, job *Job, stateErr *StateError) (*Job, error) {
	detail := stateErr.Error()
	job.Failure = &detail
	job.State = StateFailed
	job.UpdatedAt = time.Now()

	cp := newCheckpoint(job, &detail)
	if err := m.checkpoints.Save(ctx, cp); err != nil {
		m.logger.ErrorContext(ctx, "failure checkpoint persist failed",
			"job_id", job.ID,
			"error", err,
		)
	}
	if err := m.jobs.Update(ctx, job); err != nil {
		m.logger.ErrorContext(ctx, "failed job persist failed",
			"job_id", job.ID,
			"error", err,
		)
	}

	m.rollback(ctx, job)
	if m.onFail != nil {
		m.onFail(ctx, job)
	}
	m.publishProgress(ctx, job, detail)

	m.logger.WarnContext(ctx, "job failed",
		"job_id", job.ID,
		"state", stateErr.State,
		"error", stateErr.Err,
	)

	return job, nil
}

// rollback deletes externally-stored artifacts recorded by completed
// states, newest first.
func (m *Machine) rollback(ctx context.Context, job *Job) {
	artifacts := job.Artifacts()
	for i := len(artifacts) - 1; i >= 0; i-- {
		key := artifacts[i]
		if err := m.store.Delete(ctx, key); err != nil {
			m.logger.WarnContext(ctx, "rollback delete failed",
				"job_id", job.ID,
				"key", key,
				"error", err,
			)
		}
	}
}

func (m *Machine) publishProgress(ctx context.Context, job *Job, message string) {
	if m.notifier == nil {
		return
	}

	kind := "progress"
	if job.State == StateFailed {
		kind = "failed"
	}

	m.notifier.Publish(ctx, TopicProgress, notify.Event{
		Kind: kind,
		Data: map[string]any{
			"job_id":   job.ID.String(),
			"state":    string(job.State),
			"progress": job.State.Progress(),
			"message":  message,
		},
	})
}
