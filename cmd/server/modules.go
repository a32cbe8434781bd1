package main

import (
	"github.com/chronicle-ai/chronicle/internal/adapter"
	"github.com/chronicle-ai/chronicle/internal/agents"
	"github.com/chronicle-ai/chronicle/internal/config"
	"github.com/chronicle-ai/chronicle/internal/costs"
	"github.com/chronicle-ai/chronicle/internal/documents"
	"github.com/chronicle-ai/chronicle/internal/infrastructure"
	"github.com/chronicle-ai/chronicle/internal/memory"
	"github.com/chronicle-ai/chronicle/internal/orchestrator"
	"github.com/chronicle-ai/chronicle/internal/pipeline"
	"github.com/chronicle-ai/chronicle/internal/retrieval"
)

// Modules assembles the domain systems over shared infrastructure.
type Modules struct {
	Documents    documents.System
	Tracker      *costs.Tracker
	Memory       *memory.Memory
	Orchestrator *orchestrator.Orchestrator
	Machine      *pipeline.Machine
	Batch        *pipeline.Batch
}

// NewModules wires every domain system: document persistence, cost
// accounting, conversation memory, the orchestrator with its processing
// units, and the pipeline machine with its standard handlers.
func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	db := infra.Database.Connection()
	logger := infra.Logger

	docs := documents.New(db, infra.Storage, logger, cfg.Pagination)
	tracker := costs.NewTracker(costs.NewStore(db, logger), logger)
	mem := memory.New(cfg.Pipeline.MemoryCap)
	searcher := retrieval.New(db, cfg.Pipeline.RetrievalLimit, logger)
	chunks := retrieval.NewChunkStore(db)

	ai := adapter.NewClient(cfg.Adapter, logger)
	orch := orchestrator.New(tracker, mem, searcher, logger)

	units := []struct {
		name string
		make func(agents.UnitConfig) (agents.Unit, error)
	}{
		{"deep-analyzer", func(uc agents.UnitConfig) (agents.Unit, error) {
			return agents.NewDeepAnalysisUnit(uc, ai, tracker, logger)
		}},
		{"entity-extractor", func(uc agents.UnitConfig) (agents.Unit, error) {
			return agents.NewEntityUnit(uc, ai, tracker, logger)
		}},
		{"action-extractor", func(uc agents.UnitConfig) (agents.Unit, error) {
			return agents.NewActionItemUnit(uc, ai, tracker, logger)
		}},
		{"risk-assessor", func(uc agents.UnitConfig) (agents.Unit, error) {
			return agents.NewRiskUnit(uc, ai, tracker, logger)
		}},
		{"summarizer", func(uc agents.UnitConfig) (agents.Unit, error) {
			return agents.NewSummaryUnit(uc, ai, tracker, logger)
		}},
		{"question-answerer", func(uc agents.UnitConfig) (agents.Unit, error) {
			return agents.NewQuestionUnit(uc, ai, tracker, logger)
		}},
	}

	for _, u := range units {
		uc, err := cfg.UnitConfigFor(u.name)
		if err != nil {
			return nil, err
		}

		unit, err := u.make(uc)
		if err != nil {
			return nil, err
		}
		orch.Register(unit)
	}

	machine := pipeline.NewMachine(
		pipeline.NewJobStore(db, cfg.Pagination),
		pipeline.NewCheckpointStore(db),
		infra.Storage,
		infra.Notify,
		logger,
	)

	handlers := pipeline.NewHandlers(
		docs,
		infra.Storage,
		orch,
		chunks,
		cfg.MaxUploadSizeBytes(),
		cfg.Pipeline.ChunkSize,
		logger,
	)
	handlers.Wire(machine)

	batch := pipeline.NewBatch(machine, cfg.Pipeline.BatchConcurrency, logger)

	return &Modules{
		Documents:    docs,
		Tracker:      tracker,
		Memory:       mem,
		Orchestrator: orch,
		Machine:      machine,
		Batch:        batch,
	}, nil
}
