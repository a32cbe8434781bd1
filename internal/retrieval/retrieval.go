// Package retrieval provides ranked chunk search used to build context for
// retrieval-augmented question answering.
package retrieval

import (
	"context"

	"github.com/google/uuid"
)

// Chunk is a ranked passage of a document.
type Chunk struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"document_id"`
	Ordinal    int       `json:"ordinal"`
	Content    string    `json:"content"`
	Rank       float64   `json:"rank"`
}

// Filters narrows a search. A nil DocumentID searches all documents.
type Filters struct {
	DocumentID *uuid.UUID
}

// Searcher returns the most relevant chunks for a query, best first.
type Searcher interface {
	Search(ctx context.Context, query string, filters Filters) ([]Chunk, error)
}
