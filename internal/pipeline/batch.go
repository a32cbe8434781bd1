package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/google/uuid"
)

// DefaultBatchConcurrency bounds parallel pipeline runs in a batch.
const DefaultBatchConcurrency = 3

// BatchItem reports the outcome of one document within a batch run.
// Failures are isolated: a failed item carries its error while the rest of
// the batch proceeds.
type BatchItem struct {
	Filename string    `json:"filename"`
	JobID    uuid.UUID `json:"job_id"`
	State    State     `json:"state"`
	Error    string    `json:"error,omitempty"`
}

// BatchReport summarizes a batch run. Items preserve submission order.
type BatchReport struct {
	Items     []BatchItem   `json:"items"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// Batch runs multiple documents through the pipeline with bounded
// concurrency. Per-document failures never abort the batch.
type Batch struct {
	machine     *Machine
	concurrency int
	logger      *slog.Logger
}

// NewBatch creates a batch coordinator over a machine. Concurrency values
// below one fall back to the default.
func NewBatch(machine *Machine, concurrency int, logger *slog.Logger) *Batch {
	if concurrency < 1 {
		concurrency = DefaultBatchConcurrency
	}
	return &Batch{
		machine:     machine,
		concurrency: concurrency,
		logger:      logger.With("system", "pipeline"),
	}
}

// Process submits and runs every document, returning a per-item report in
// submission order.
func (b *Batch) Process(ctx context.Context, docs []Document) (*BatchReport, error) {
	started := time.Now()
	items := make([]BatchItem, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, doc := range docs {
		g.Go(func() error {
			items[i] = b.processOne(gctx, doc)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &BatchReport{
		Items:    items,
		Duration: time.Since(started),
	}
	for _, item := range items {
		if item.State == StateCompleted {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}

	b.logger.InfoContext(ctx, "batch complete",
		"total", len(items),
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"duration", report.Duration,
	)

	return report, nil
}

func (b *Batch) processOne(ctx context.Context, doc Document) BatchItem {
	item := BatchItem{Filename: doc.Filename}

	job, err := b.machine.Submit(ctx, doc)
	if err != nil {
		item.Error = fmt.Sprintf("submit: %v", err)
		return item
	}
	item.JobID = job.ID

	job, err = b.machine.run(ctx, job)
	if err != nil {
		item.State = job.State
		item.Error = err.Error()
		return item
	}

	item.State = job.State
	if job.Failure != nil {
		item.Error = *job.Failure
	}
	return item
}
