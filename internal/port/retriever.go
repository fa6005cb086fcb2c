package port

import (
	"context"

	"clinrag/internal/domain"
)

// Retriever defines the interface for searching indexed content.
type Retriever interface {
	// Retrieve returns the top-k fused chunks for the query, best first.
	Retrieve(ctx context.Context, query string, k int, filter SearchFilter) ([]domain.RetrievedChunk, error)
}
