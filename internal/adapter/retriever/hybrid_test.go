package retriever

import (
	"context"
	"errors"
	"testing"
	"time"

	"clinrag/internal/adapter/embedding"
	"clinrag/internal/domain"
	"clinrag/internal/logger"
	"clinrag/internal/port"
)

type fakeStore struct {
	vector     []domain.RetrievedChunk
	lexical    []domain.RetrievedChunk
	vectorErr  error
	lexicalErr error
}

func (s *fakeStore) UpsertDocument(ctx context.Context, doc domain.Document, chunks []domain.Chunk) error {
	return nil
}

func (s *fakeStore) VectorSearch(ctx context.Context, embedding []float32, k int, filter port.SearchFilter) ([]domain.RetrievedChunk, error) {
	if s.vectorErr != nil {
		return nil, s.vectorErr
	}
	return s.vector, nil
}

func (s *fakeStore) LexicalSearch(ctx context.Context, query string, k int, filter port.SearchFilter) ([]domain.RetrievedChunk, error) {
	if s.lexicalErr != nil {
		return nil, s.lexicalErr
	}
	return s.lexical, nil
}

func (s *fakeStore) GetDocument(ctx context.Context, id string) (domain.Document, error) {
	return domain.Document{}, nil
}

func (s *fakeStore) GetDocumentByPath(ctx context.Context, path string) (domain.Document, error) {
	return domain.Document{}, nil
}

func (s *fakeStore) DeleteDocument(ctx context.Context, id string) error { return nil }

func (s *fakeStore) Stats(ctx context.Context) (domain.Stats, error) { return domain.Stats{}, nil }

func (s *fakeStore) Close() {}

func retrieved(id string, index int, vectorScore, lexicalScore float64) domain.RetrievedChunk {
	return domain.RetrievedChunk{
		Chunk: domain.Chunk{
			ID:         id,
			ChunkIndex: index,
			Text:       "text for " + id,
		},
		VectorScore:  vectorScore,
		LexicalScore: lexicalScore,
		Filename:     "guide.pdf",
		IngestedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newTestRetriever(store port.ChunkStore) *HybridRetriever {
	return NewHybridRetriever(store, embedding.NewMockEmbedder(384), 60, 0.5, logger.NewNop())
}

func TestRetrieveFusesBothBranches(t *testing.T) {
	store := &fakeStore{
		vector: []domain.RetrievedChunk{
			retrieved("a", 0, 0.95, 0),
			retrieved("b", 1, 0.90, 0),
		},
		lexical: []domain.RetrievedChunk{
			retrieved("b", 1, 0, 0.8),
			retrieved("c", 2, 0, 0.5),
		},
	}
	r := newTestRetriever(store)

	results, err := r.Retrieve(context.Background(), "sepsis management", 5, port.SearchFilter{})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	// b appears in both lists and must rank first.
	if results[0].Chunk.ID != "b" {
		t.Errorf("top result = %q, want b", results[0].Chunk.ID)
	}
	if results[0].VectorScore == 0 || results[0].LexicalScore == 0 {
		t.Errorf("fused result should carry both branch scores, got vector=%v lexical=%v",
			results[0].VectorScore, results[0].LexicalScore)
	}
	for i, res := range results {
		if res.Rank != i+1 {
			t.Errorf("result %d has rank %d, want %d", i, res.Rank, i+1)
		}
		if res.FusedScore <= 0 {
			t.Errorf("result %d has non-positive fused score %v", i, res.FusedScore)
		}
	}
}

func TestRetrieveLexicalOnlyMatchSurfaces(t *testing.T) {
	// An exact-term match found only by the lexical branch must still
	// appear in the fused results.
	store := &fakeStore{
		vector: []domain.RetrievedChunk{
			retrieved("v1", 0, 0.9, 0),
			retrieved("v2", 1, 0.85, 0),
			retrieved("v3", 2, 0.80, 0),
		},
		lexical: []domain.RetrievedChunk{
			retrieved("lex-only", 7, 0, 0.9),
		},
	}
	r := newTestRetriever(store)

	results, err := r.Retrieve(context.Background(), "CURB-65 score", 5, port.SearchFilter{})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	found := false
	for _, res := range results {
		if res.Chunk.ID == "lex-only" {
			found = true
		}
	}
	if !found {
		t.Error("lexical-only match missing from fused results")
	}
}

func TestRetrieveTruncatesToK(t *testing.T) {
	store := &fakeStore{
		vector: []domain.RetrievedChunk{
			retrieved("a", 0, 0.9, 0),
			retrieved("b", 1, 0.8, 0),
			retrieved("c", 2, 0.7, 0),
			retrieved("d", 3, 0.6, 0),
		},
	}
	r := newTestRetriever(store)

	results, err := r.Retrieve(context.Background(), "dosing", 2, port.SearchFilter{})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
}

func TestRetrieveDegradesWhenOneBranchFails(t *testing.T) {
	store := &fakeStore{
		vectorErr: errors.New("embedding endpoint down"),
		lexical: []domain.RetrievedChunk{
			retrieved("a", 0, 0, 0.7),
		},
	}
	r := newTestRetriever(store)

	results, err := r.Retrieve(context.Background(), "anticoagulation", 5, port.SearchFilter{})
	if err != nil {
		t.Fatalf("Retrieve should degrade, got error: %v", err)
	}
	if len(results) != 1 || results[0].Chunk.ID != "a" {
		t.Errorf("expected lexical results to survive, got %+v", results)
	}
}

func TestRetrieveBothBranchesFail(t *testing.T) {
	store := &fakeStore{
		vectorErr:  errors.New("pool closed"),
		lexicalErr: errors.New("pool closed"),
	}
	r := newTestRetriever(store)

	_, err := r.Retrieve(context.Background(), "triage", 5, port.SearchFilter{})
	if err == nil {
		t.Fatal("expected error when both branches fail")
	}
	var unavailable *domain.RetrievalUnavailable
	if !errors.As(err, &unavailable) {
		t.Errorf("error = %T, want RetrievalUnavailable", err)
	}
}

func TestFuseTieBreaksOnChunkIndex(t *testing.T) {
	// Two chunks each seen by exactly one branch at the same rank get
	// equal fused scores; the smaller chunk index wins.
	store := &fakeStore{
		vector: []domain.RetrievedChunk{
			retrieved("later", 9, 0.9, 0),
		},
		lexical: []domain.RetrievedChunk{
			retrieved("earlier", 2, 0, 0.9),
		},
	}
	r := newTestRetriever(store)

	results, err := r.Retrieve(context.Background(), "fluids", 5, port.SearchFilter{})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Chunk.ID != "earlier" {
		t.Errorf("tie break chose %q, want earlier", results[0].Chunk.ID)
	}
}
