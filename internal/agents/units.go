package agents

import (
	"fmt"
	"log/slog"

	"github.com/chronicle-ai/chronicle/internal/adapter"
	"github.com/chronicle-ai/chronicle/internal/costs"
	"github.com/chronicle-ai/chronicle/internal/prompts"
)

// maxDocumentChars bounds the document text accepted by analysis units.
// Longer inputs must be chunked upstream.
const maxDocumentChars = 400_000

func validateDocumentText(unit string) validateFunc {
	return func(input Input) error {
		if input.Text == "" {
			return &ValidationError{Unit: unit, Reason: "document text required"}
		}
		if len(input.Text) > maxDocumentChars {
			return &ValidationError{
				Unit:   unit,
				Reason: fmt.Sprintf("document text exceeds %d characters", maxDocumentChars),
			}
		}
		return nil
	}
}

func validateQuestionPrompt(unit string) validateFunc {
	return func(input Input) error {
		if input.Prompt == "" {
			return &ValidationError{Unit: unit, Reason: "composed prompt required"}
		}
		return nil
	}
}

func newAnalysisUnit(
	name string,
	task TaskType,
	cfg UnitConfig,
	ai adapter.Adapter,
	tracker *costs.Tracker,
	logger *slog.Logger,
) (Unit, error) {
	system, err := prompts.System(prompts.Task(task))
	if err != nil {
		return nil, fmt.Errorf("unit %s: %w", name, err)
	}

	return newBaseUnit(
		name,
		[]TaskType{task},
		system,
		validateDocumentText(name),
		cfg,
		ai,
		tracker,
		logger,
	), nil
}

// NewDeepAnalysisUnit creates the unit for comprehensive document review.
func NewDeepAnalysisUnit(cfg UnitConfig, ai adapter.Adapter, tracker *costs.Tracker, logger *slog.Logger) (Unit, error) {
	return newAnalysisUnit("deep-analyzer", TaskDeepAnalysis, cfg, ai, tracker, logger)
}

// NewEntityUnit creates the unit for entity extraction.
func NewEntityUnit(cfg UnitConfig, ai adapter.Adapter, tracker *costs.Tracker, logger *slog.Logger) (Unit, error) {
	return newAnalysisUnit("entity-extractor", TaskEntityExtraction, cfg, ai, tracker, logger)
}

// NewActionItemUnit creates the unit for action item extraction.
func NewActionItemUnit(cfg UnitConfig, ai adapter.Adapter, tracker *costs.Tracker, logger *slog.Logger) (Unit, error) {
	return newAnalysisUnit("action-extractor", TaskActionItems, cfg, ai, tracker, logger)
}

// NewRiskUnit creates the unit for risk assessment.
func NewRiskUnit(cfg UnitConfig, ai adapter.Adapter, tracker *costs.Tracker, logger *slog.Logger) (Unit, error) {
	return newAnalysisUnit("risk-assessor", TaskRiskAssessment, cfg, ai, tracker, logger)
}

// NewSummaryUnit creates the unit for executive summarization.
func NewSummaryUnit(cfg UnitConfig, ai adapter.Adapter, tracker *costs.Tracker, logger *slog.Logger) (Unit, error) {
	return newAnalysisUnit("summarizer", TaskSummarization, cfg, ai, tracker, logger)
}

// NewQuestionUnit creates the unit for retrieval-augmented question
// answering. It expects a precomposed prompt carrying context passages
// and conversation turns.
func NewQuestionUnit(cfg UnitConfig, ai adapter.Adapter, tracker *costs.Tracker, logger *slog.Logger) (Unit, error) {
	system, err := prompts.System(prompts.TaskQuestionAnswering)
	if err != nil {
		return nil, fmt.Errorf("unit question-answerer: %w", err)
	}

	return newBaseUnit(
		"question-answerer",
		[]TaskType{TaskQuestionAnswering},
		system,
		validateQuestionPrompt("question-answerer"),
		cfg,
		ai,
		tracker,
		logger,
	), nil
}
