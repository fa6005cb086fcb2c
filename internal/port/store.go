package port

import (
	"context"

	"clinrag/internal/domain"
)

// SearchFilter narrows a retrieval branch to a slice of the corpus.
// Zero value means no filtering.
type SearchFilter struct {
	Specialty string
	Publisher string
}

// ChunkStore persists documents and their chunks, and serves both
// retrieval branches. The vector index and the generated lexical index
// are maintained by the store on write.
type ChunkStore interface {
	// UpsertDocument writes the document row and all of its chunks as a
	// single atomic unit. Re-ingesting the same document version with the
	// same chunk identities upserts rather than duplicates.
	UpsertDocument(ctx context.Context, doc domain.Document, chunks []domain.Chunk) error

	// VectorSearch returns the k nearest chunks by cosine similarity.
	VectorSearch(ctx context.Context, embedding []float32, k int, filter SearchFilter) ([]domain.RetrievedChunk, error)

	// LexicalSearch returns the k highest-ranked chunks by keyword
	// relevance. A query of nothing but stopwords yields an empty result,
	// not an error.
	LexicalSearch(ctx context.Context, query string, k int, filter SearchFilter) ([]domain.RetrievedChunk, error)

	GetDocument(ctx context.Context, id string) (domain.Document, error)

	GetDocumentByPath(ctx context.Context, path string) (domain.Document, error)

	DeleteDocument(ctx context.Context, id string) error

	Stats(ctx context.Context) (domain.Stats, error)

	Close()
}
