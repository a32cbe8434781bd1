package retrieval

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/chronicle-ai/chronicle/pkg/repository"
)

// ChunkStore persists the searchable chunks for a document.
type ChunkStore interface {
	// Replace atomically swaps a document's chunks for the given contents.
	// Re-running with the same contents is a no-op in effect, which keeps
	// re-executed pipeline stages safe.
	Replace(ctx context.Context, documentID uuid.UUID, contents []string) error
	// CountForDocument returns the number of stored chunks for a document.
	CountForDocument(ctx context.Context, documentID uuid.UUID) (int, error)
}

// NewChunkStore returns a postgres-backed ChunkStore. The search vector
// column is generated by the database from chunk content.
func NewChunkStore(db *sql.DB) ChunkStore {
	return &pgChunkStore{db: db}
}

type pgChunkStore struct {
	db *sql.DB
}

func (s *pgChunkStore) Replace(ctx context.Context, documentID uuid.UUID, contents []string) error {
	_, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		if _, err := tx.ExecContext(
			ctx,
			"DELETE FROM document_chunks WHERE document_id = $1",
			documentID,
		); err != nil {
			return struct{}{}, fmt.Errorf("clear chunks: %w", err)
		}

		for i, content := range contents {
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO document_chunks (id, document_id, ordinal, content)
				 VALUES ($1, $2, $3, $4)`,
				uuid.New(), documentID, i, content,
			); err != nil {
				return struct{}{}, fmt.Errorf("insert chunk %d: %w", i, err)
			}
		}

		return struct{}{}, nil
	})
	return err
}

func (s *pgChunkStore) CountForDocument(ctx context.Context, documentID uuid.UUID) (int, error) {
	return repository.QueryOne(ctx, s.db,
		"SELECT COUNT(*) FROM document_chunks WHERE document_id = $1",
		[]any{documentID},
		func(sc repository.Scanner) (int, error) {
			var n int
			err := sc.Scan(&n)
			return n, err
		},
	)
}

// DefaultChunkSize bounds the length of a chunk produced by Split.
const DefaultChunkSize = 1200

// Split breaks text into chunks of at most size runes, preferring
// paragraph boundaries and falling back to hard cuts for oversized
// paragraphs. Empty paragraphs are dropped.
func Split(text string, size int) []string {
	if size < 1 {
		size = DefaultChunkSize
	}

	paragraphs := strings.Split(text, "\n\n")
	chunks := make([]string, 0, len(paragraphs))
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		runes := []rune(p)
		for len(runes) > size {
			flush()
			chunks = append(chunks, string(runes[:size]))
			runes = runes[size:]
		}
		p = string(runes)

		if current.Len() > 0 && current.Len()+len(p)+2 > size {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	flush()

	return chunks
}
