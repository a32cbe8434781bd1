// Package agents implements the processing unit abstraction: named
// capabilities that validate input, apply rate limiting and circuit
// breaking, invoke the AI adapter, and account for cost and metrics.
package agents

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/chronicle-ai/chronicle/internal/costs"
	"github.com/chronicle-ai/chronicle/internal/prompts"
)

// TaskType identifies the kind of work a unit performs. Values align with
// the prompt tasks in internal/prompts.
type TaskType string

// Supported task types.
const (
	TaskDeepAnalysis      TaskType = TaskType(prompts.TaskDeepAnalysis)
	TaskEntityExtraction  TaskType = TaskType(prompts.TaskEntityExtraction)
	TaskActionItems       TaskType = TaskType(prompts.TaskActionItems)
	TaskRiskAssessment    TaskType = TaskType(prompts.TaskRiskAssessment)
	TaskSummarization     TaskType = TaskType(prompts.TaskSummarization)
	TaskQuestionAnswering TaskType = TaskType(prompts.TaskQuestionAnswering)
)

// Input carries the material for one unit invocation. Text holds document
// content for analysis tasks; Prompt holds a precomposed user prompt for
// question answering. Parameters are task-specific tuning values echoed
// into the prompt.
type Input struct {
	TaskType   TaskType
	DocumentID uuid.UUID
	Text       string
	Prompt     string
	Parameters map[string]any
}

// Result is the typed outcome of a successful unit invocation.
type Result struct {
	TaskType TaskType       `json:"task_type"`
	UnitName string         `json:"unit_name"`
	Output   map[string]any `json:"output"`
	Raw      string         `json:"raw"`
	Cost     costs.Record   `json:"cost"`
	Duration time.Duration  `json:"duration"`
}

// Unit is an executable processing capability. Execute returns a typed
// result or one of the typed errors in this package; it never panics
// across the orchestrator boundary.
type Unit interface {
	Name() string
	TaskTypes() []TaskType
	Execute(ctx context.Context, input Input) (*Result, error)
	Metrics() *Metrics
}
