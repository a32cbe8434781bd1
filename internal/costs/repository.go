package costs

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/chronicle-ai/chronicle/pkg/repository"
)

type pgStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore creates a postgres-backed cost record store.
func NewStore(db *sql.DB, logger *slog.Logger) Store {
	return &pgStore{
		db:     db,
		logger: logger.With("system", "costs"),
	}
}

func (s *pgStore) Save(ctx context.Context, record Record) error {
	q := `
		INSERT INTO cost_records(id, unit_name, prompt_tokens, completion_tokens, total_tokens, cost_usd, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	err := repository.ExecExpectOne(ctx, s.db, q,
		record.ID,
		record.UnitName,
		record.PromptTokens,
		record.CompletionTokens,
		record.TotalTokens,
		record.CostUSD,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cost record: %w", err)
	}

	return nil
}
