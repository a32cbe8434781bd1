package pipeline

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/chronicle-ai/chronicle/pkg/pagination"
	"github.com/chronicle-ai/chronicle/pkg/query"
	"github.com/chronicle-ai/chronicle/pkg/repository"
)

// NewJobStore returns a postgres-backed JobStore.
func NewJobStore(db *sql.DB, pg pagination.Config) JobStore {
	return &pgJobStore{db: db, pagination: pg}
}

// NewCheckpointStore returns a postgres-backed CheckpointStore.
func NewCheckpointStore(db *sql.DB) CheckpointStore {
	return &pgCheckpointStore{db: db}
}

type pgJobStore struct {
	db         *sql.DB
	pagination pagination.Config
}

const createJobQuery = `
	INSERT INTO jobs (id, owner_id, state, history, payload, failure, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

func (s *pgJobStore) Create(ctx context.Context, job *Job) error {
	history, payload, err := marshalJobBody(job)
	if err != nil {
		return err
	}

	err = repository.ExecExpectOne(ctx, s.db, createJobQuery,
		job.ID, job.OwnerID, string(job.State), history, payload,
		job.Failure, job.CreatedAt, job.UpdatedAt,
	)
	return repository.MapError(err, ErrJobNotFound, ErrJobExists)
}

const updateJobQuery = `
	UPDATE jobs
	SET state = $2, history = $3, payload = $4, failure = $5, updated_at = $6
	WHERE id = $1`

func (s *pgJobStore) Update(ctx context.Context, job *Job) error {
	history, payload, err := marshalJobBody(job)
	if err != nil {
		return err
	}

	err = repository.ExecExpectOne(ctx, s.db, updateJobQuery,
		job.ID, string(job.State), history, payload, job.Failure, job.UpdatedAt,
	)
	return repository.MapError(err, ErrJobNotFound, ErrJobExists)
}

const findJobQuery = `
	SELECT id, owner_id, state, history, payload, failure, created_at, updated_at
	FROM jobs
	WHERE id = $1`

func (s *pgJobStore) Find(ctx context.Context, id uuid.UUID) (*Job, error) {
	job, err := repository.QueryOne(ctx, s.db, findJobQuery, []any{id}, scanJob)
	if err != nil {
		return nil, repository.MapError(err, ErrJobNotFound, ErrJobExists)
	}
	return job, nil
}

func (s *pgJobStore) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters JobFilters,
) (*pagination.PageResult[Job], error) {
	page.Normalize(s.pagination)

	qb := query.
		NewBuilder(jobProjection, jobDefaultSort).
		WhereSearch(page.Search, "OwnerID")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	jobs, err := repository.QueryMany(ctx, s.db, pageSQL, pageArgs, scanJobValue)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}

	result := pagination.NewPageResult(jobs, total, page.Page, page.PageSize)
	return &result, nil
}

func scanJobValue(s repository.Scanner) (Job, error) {
	job, err := scanJob(s)
	if err != nil {
		return Job{}, err
	}
	return *job, nil
}

func scanJob(s repository.Scanner) (*Job, error) {
	var (
		job     Job
		state   string
		history []byte
		payload []byte
	)

	err := s.Scan(
		&job.ID, &job.OwnerID, &state, &history, &payload,
		&job.Failure, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	job.State = State(state)
	if err := json.Unmarshal(history, &job.History); err != nil {
		return nil, fmt.Errorf("decode job history: %w", err)
	}
	if err := json.Unmarshal(payload, &job.Payload); err != nil {
		return nil, fmt.Errorf("decode job payload: %w", err)
	}

	return &job, nil
}

func marshalJobBody(job *Job) ([]byte, []byte, error) {
	history, err := json.Marshal(job.History)
	if err != nil {
		return nil, nil, fmt.Errorf("encode job history: %w", err)
	}

	payload, err := json.Marshal(job.Payload)
	if err != nil {
		return nil, nil, fmt.Errorf("encode job payload: %w", err)
	}

	return history, payload, nil
}

type pgCheckpointStore struct {
	db *sql.DB
}

const saveCheckpointQuery = `
	INSERT INTO checkpoints (id, job_id, version, state, history, payload, error, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

func (s *pgCheckpointStore) Save(ctx context.Context, cp Checkpoint) error {
	history, err := json.Marshal(cp.History)
	if err != nil {
		return fmt.Errorf("encode checkpoint history: %w", err)
	}

	payload, err := json.Marshal(cp.Payload)
	if err != nil {
		return fmt.Errorf("encode checkpoint payload: %w", err)
	}

	return repository.ExecExpectOne(ctx, s.db, saveCheckpointQuery,
		cp.ID, cp.JobID, cp.Version, string(cp.State), history, payload,
		cp.Error, cp.CreatedAt,
	)
}

const loadLatestCheckpointQuery = `
	SELECT id, job_id, version, state, history, payload, error, created_at
	FROM checkpoints
	WHERE job_id = $1
	ORDER BY created_at DESC, id DESC
	LIMIT 1`

func (s *pgCheckpointStore) LoadLatest(ctx context.Context, jobID uuid.UUID) (*Checkpoint, error) {
	cp, err := repository.QueryOne(ctx, s.db, loadLatestCheckpointQuery, []any{jobID}, scanCheckpoint)
	if err != nil {
		return nil, repository.MapError(err, ErrNoCheckpoint, ErrNoCheckpoint)
	}
	return cp, nil
}

const countCheckpointsQuery = `
	SELECT COUNT(*) FROM checkpoints WHERE job_id = $1`

func (s *pgCheckpointStore) Count(ctx context.Context, jobID uuid.UUID) (int, error) {
	return repository.QueryOne(ctx, s.db, countCheckpointsQuery, []any{jobID},
		func(sc repository.Scanner) (int, error) {
			var n int
			err := sc.Scan(&n)
			return n, err
		},
	)
}

func scanCheckpoint(s repository.Scanner) (*Checkpoint, error) {
	var (
		cp      Checkpoint
		state   string
		history []byte
		payload []byte
	)

	err := s.Scan(
		&cp.ID, &cp.JobID, &cp.Version, &state, &history, &payload,
		&cp.Error, &cp.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	cp.State = State(state)
	if err := json.Unmarshal(history, &cp.History); err != nil {
		return nil, fmt.Errorf("decode checkpoint history: %w", err)
	}
	if err := json.Unmarshal(payload, &cp.Payload); err != nil {
		return nil, fmt.Errorf("decode checkpoint payload: %w", err)
	}

	return &cp, nil
}
