// Package prompts provides the system prompts and response specifications
// for each analysis task, plus prompt composition for retrieval-augmented
// question answering.
package prompts

import "errors"

// ErrInvalidTask indicates an unrecognized task identifier.
var ErrInvalidTask = errors.New("invalid task")

// Task identifies an analysis capability with its own prompt material.
type Task string

// Analysis tasks.
const (
	TaskDeepAnalysis      Task = "deep_analysis"
	TaskEntityExtraction  Task = "entity_extraction"
	TaskActionItems       Task = "action_items"
	TaskRiskAssessment    Task = "risk_assessment"
	TaskSummarization     Task = "summarization"
	TaskQuestionAnswering Task = "question_answering"
)

// System returns the composed system prompt (instructions plus response
// specification) for a task. Returns ErrInvalidTask for unknown tasks.
func System(task Task) (string, error) {
	inst, ok := instructions[task]
	if !ok {
		return "", ErrInvalidTask
	}

	spec, ok := specs[task]
	if !ok {
		return inst, nil
	}

	return inst + "\n\n" + spec, nil
}
