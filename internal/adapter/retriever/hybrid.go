package retriever

import (
	"context"
	"sort"

	"clinrag/internal/domain"
	"clinrag/internal/logger"
	"clinrag/internal/port"
)

// HybridRetriever combines vector similarity search with lexical
// full-text search over the chunk store, fusing the two rankings with
// weighted reciprocal rank fusion.
type HybridRetriever struct {
	store        port.ChunkStore
	embedder     port.Embedder
	rrfK         int     // RRF constant (typically 60)
	vectorWeight float64 // Weight for the vector branch (0-1)
	log          *logger.Logger
}

func NewHybridRetriever(
	store port.ChunkStore,
	embedder port.Embedder,
	rrfK int,
	vectorWeight float64,
	log *logger.Logger,
) *HybridRetriever {
	if rrfK <= 0 {
		rrfK = 60 // Standard default
	}
	if vectorWeight < 0 || vectorWeight > 1 {
		vectorWeight = 0.5 // Equal weighting
	}

	return &HybridRetriever{
		store:        store,
		embedder:     embedder,
		rrfK:         rrfK,
		vectorWeight: vectorWeight,
		log:          log.With("adapter", "hybrid_retriever"),
	}
}

// Retrieve runs both branches and returns the top-k fused chunks. One
// branch failing degrades to the other; both failing surfaces
// RetrievalUnavailable.
func (r *HybridRetriever) Retrieve(ctx context.Context, query string, k int, filter port.SearchFilter) ([]domain.RetrievedChunk, error) {
	// Expanded candidate pool from both branches
	candidateK := k * 3
	if candidateK < 20 {
		candidateK = 20
	}

	vectorResults, vectorErr := r.vectorSearch(ctx, query, candidateK, filter)
	if vectorErr != nil {
		r.log.Warn("vector branch failed", "error", vectorErr)
	}

	lexicalResults, lexicalErr := r.store.LexicalSearch(ctx, query, candidateK, filter)
	if lexicalErr != nil {
		r.log.Warn("lexical branch failed", "error", lexicalErr)
	}

	if vectorErr != nil && lexicalErr != nil {
		return nil, &domain.RetrievalUnavailable{Err: vectorErr}
	}

	fused := r.fuse(vectorResults, lexicalResults)

	if len(fused) > k {
		fused = fused[:k]
	}
	for i := range fused {
		fused[i].Rank = i + 1
	}

	return fused, nil
}

func (r *HybridRetriever) vectorSearch(ctx context.Context, query string, k int, filter port.SearchFilter) ([]domain.RetrievedChunk, error) {
	embeddings, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, nil
	}

	return r.store.VectorSearch(ctx, embeddings[0], k, filter)
}

// fuse combines both rankings with weighted reciprocal rank fusion:
// score = weight / (rrfK + rank) per list the chunk appears in. A chunk
// seen by only one branch still participates with that branch's
// contribution.
func (r *HybridRetriever) fuse(vectorResults, lexicalResults []domain.RetrievedChunk) []domain.RetrievedChunk {
	scores := make(map[string]float64)
	byID := make(map[string]domain.RetrievedChunk)

	for rank, result := range vectorResults {
		id := result.Chunk.ID
		scores[id] += r.vectorWeight / float64(r.rrfK+rank+1)
		if existing, ok := byID[id]; ok {
			existing.VectorScore = result.VectorScore
			byID[id] = existing
		} else {
			byID[id] = result
		}
	}

	lexicalWeight := 1.0 - r.vectorWeight
	for rank, result := range lexicalResults {
		id := result.Chunk.ID
		scores[id] += lexicalWeight / float64(r.rrfK+rank+1)
		if existing, ok := byID[id]; ok {
			existing.LexicalScore = result.LexicalScore
			byID[id] = existing
		} else {
			byID[id] = result
		}
	}

	fused := make([]domain.RetrievedChunk, 0, len(scores))
	for id, score := range scores {
		chunk := byID[id]
		chunk.FusedScore = score
		fused = append(fused, chunk)
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].FusedScore != fused[j].FusedScore {
			return fused[i].FusedScore > fused[j].FusedScore
		}
		// Ties: smaller chunk_index first, then the more recently
		// ingested document
		if fused[i].Chunk.ChunkIndex != fused[j].Chunk.ChunkIndex {
			return fused[i].Chunk.ChunkIndex < fused[j].Chunk.ChunkIndex
		}
		return fused[i].IngestedAt.After(fused[j].IngestedAt)
	})

	return fused
}
