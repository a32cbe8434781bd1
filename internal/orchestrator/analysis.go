package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/chronicle-ai/chronicle/internal/agents"
)

// TaskStatus reports the outcome of one task within an analysis.
type TaskStatus string

// Task outcome statuses.
const (
	TaskSucceeded TaskStatus = "succeeded"
	TaskFailed    TaskStatus = "failed"
	TaskSkipped   TaskStatus = "skipped"
)

// TaskRequest names one task within a multi-unit analysis. Required marks
// a task whose failure short-circuits a sequential analysis; it has no
// effect in parallel mode, which always collects every outcome.
type TaskRequest struct {
	TaskType   agents.TaskType `json:"task_type"`
	Parameters map[string]any  `json:"parameters,omitempty"`
	Required   bool            `json:"required,omitempty"`
}

// TaskOutcome is one entry of an analysis report, in request order.
type TaskOutcome struct {
	TaskType agents.TaskType `json:"task_type"`
	UnitName string          `json:"unit_name,omitempty"`
	Status   TaskStatus      `json:"status"`
	Result   *agents.Result  `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
	Cost     float64         `json:"cost"`
	Duration time.Duration   `json:"duration"`
}

// AnalysisReport aggregates a multi-unit analysis. Outcomes appear in
// request order regardless of completion order; TotalCost sums successful
// tasks only.
type AnalysisReport struct {
	DocumentID uuid.UUID     `json:"document_id"`
	Outcomes   []TaskOutcome `json:"outcomes"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	TotalCost  float64       `json:"total_cost"`
	Duration   time.Duration `json:"duration"`
}

// RunMultiUnitAnalysis executes the requested tasks against one document.
// Parallel mode fans out concurrently and never fails fast: every outcome,
// success or failure, lands in the report. Sequential mode runs in request
// order and stops early only when a Required task fails, marking the
// remaining tasks skipped.
func (o *Orchestrator) RunMultiUnitAnalysis(
	ctx context.Context,
	documentID uuid.UUID,
	text string,
	requests []TaskRequest,
	parallel bool,
) *AnalysisReport {
	start := time.Now()
	outcomes := make([]TaskOutcome, len(requests))

	if parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i, req := range requests {
			g.Go(func() error {
				outcomes[i] = o.runTask(gctx, documentID, text, req)
				return nil
			})
		}
		// Workers only record outcomes; the group never returns an error.
		_ = g.Wait()
	} else {
		for i, req := range requests {
			outcomes[i] = o.runTask(ctx, documentID, text, req)
			if req.Required && outcomes[i].Status == TaskFailed {
				for j := i + 1; j < len(requests); j++ {
					outcomes[j] = TaskOutcome{
						TaskType: requests[j].TaskType,
						Status:   TaskSkipped,
						Error:    "skipped: required task " + string(req.TaskType) + " failed",
					}
				}
				break
			}
		}
	}

	report := &AnalysisReport{
		DocumentID: documentID,
		Outcomes:   outcomes,
		Duration:   time.Since(start),
	}

	for _, out := range outcomes {
		switch out.Status {
		case TaskSucceeded:
			report.Succeeded++
			report.TotalCost += out.Cost
		case TaskFailed:
			report.Failed++
		}
	}

	o.logger.InfoContext(
		ctx, "multi-unit analysis complete",
		"document_id", documentID,
		"tasks", len(requests),
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"cost", report.TotalCost,
		"duration", report.Duration,
	)

	return report
}

func (o *Orchestrator) runTask(
	ctx context.Context,
	documentID uuid.UUID,
	text string,
	req TaskRequest,
) TaskOutcome {
	input := agents.Input{
		TaskType:   req.TaskType,
		DocumentID: documentID,
		Text:       text,
		Parameters: req.Parameters,
	}

	result, err := o.RouteTask(ctx, req.TaskType, input)
	if err != nil {
		return TaskOutcome{
			TaskType: req.TaskType,
			Status:   TaskFailed,
			Error:    err.Error(),
		}
	}

	return TaskOutcome{
		TaskType: req.TaskType,
		UnitName: result.UnitName,
		Status:   TaskSucceeded,
		Result:   result,
		Cost:     result.Cost.CostUSD,
		Duration: result.Duration,
	}
}
