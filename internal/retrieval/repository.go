package retrieval

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/chronicle-ai/chronicle/pkg/repository"
)

type pgSearcher struct {
	db     *sql.DB
	limit  int
	logger *slog.Logger
}

// New creates a postgres full-text searcher over document chunks.
// Limit bounds the number of chunks returned per search.
func New(db *sql.DB, limit int, logger *slog.Logger) Searcher {
	if limit < 1 {
		limit = 5
	}
	return &pgSearcher{
		db:     db,
		limit:  limit,
		logger: logger.With("system", "retrieval"),
	}
}

func (s *pgSearcher) Search(ctx context.Context, query string, filters Filters) ([]Chunk, error) {
	q := `
		SELECT id, document_id, ordinal, content,
		       ts_rank(tsv, plainto_tsquery('english', $1)) AS rank
		FROM document_chunks
		WHERE tsv @@ plainto_tsquery('english', $1)`

	args := []any{query}
	if filters.DocumentID != nil {
		q += ` AND document_id = $2`
		args = append(args, *filters.DocumentID)
	}

	q += fmt.Sprintf(` ORDER BY rank DESC LIMIT %d`, s.limit)

	chunks, err := repository.QueryMany(ctx, s.db, q, args, scanChunk)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	return chunks, nil
}

func scanChunk(s repository.Scanner) (Chunk, error) {
	var c Chunk
	err := s.Scan(&c.ID, &c.DocumentID, &c.Ordinal, &c.Content, &c.Rank)
	return c, err
}
