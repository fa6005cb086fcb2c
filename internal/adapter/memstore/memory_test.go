package memstore

import (
	"context"
	"testing"
	"time"

	"clinrag/internal/domain"
	"clinrag/internal/port"
)

func seed(t *testing.T, s *MemoryStore) {
	t.Helper()
	ctx := context.Background()

	err := s.UpsertDocument(ctx, domain.Document{
		ID: "doc-cardio", Filename: "af.pdf", Specialty: "cardiology",
		Publisher: "esc", FilePath: "/c/af.pdf", IngestedAt: time.Now(),
	}, []domain.Chunk{
		{ID: "c1", DocumentID: "doc-cardio", Text: "anticoagulation for atrial fibrillation", Embedding: []float32{1, 0, 0}},
		{ID: "c2", DocumentID: "doc-cardio", Text: "rate control with beta blockers", Embedding: []float32{0, 1, 0}},
	})
	if err != nil {
		t.Fatal(err)
	}

	err = s.UpsertDocument(ctx, domain.Document{
		ID: "doc-pulm", Filename: "copd.pdf", Specialty: "pulmonology",
		Publisher: "gold", FilePath: "/p/copd.pdf", IngestedAt: time.Now(),
	}, []domain.Chunk{
		{ID: "p1", DocumentID: "doc-pulm", Text: "bronchodilators in stable copd", Embedding: []float32{0, 0, 1}},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestVectorSearchRanksByCosine(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s)

	results, err := s.VectorSearch(context.Background(), []float32{0.9, 0.1, 0}, 2, port.SearchFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[0].Chunk.ID != "c1" {
		t.Errorf("results = %+v", results)
	}
}

func TestLexicalSearchAndFilter(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s)

	results, err := s.LexicalSearch(context.Background(), "anticoagulation", 5, port.SearchFilter{Specialty: "cardiology"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Chunk.ID != "c1" {
		t.Errorf("results = %+v", results)
	}

	// Filter excludes the matching document entirely.
	results, err = s.LexicalSearch(context.Background(), "anticoagulation", 5, port.SearchFilter{Specialty: "pulmonology"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("filtered results = %+v", results)
	}
}

func TestUpsertReplacesChunks(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s)
	ctx := context.Background()

	err := s.UpsertDocument(ctx, domain.Document{
		ID: "doc-cardio", Filename: "af.pdf", Specialty: "cardiology",
		Publisher: "esc", FilePath: "/c/af.pdf",
	}, []domain.Chunk{
		{ID: "c1", DocumentID: "doc-cardio", Text: "revised guidance", Embedding: []float32{1, 0, 0}},
	})
	if err != nil {
		t.Fatal(err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalDocs != 2 || stats.TotalChunks != 2 {
		t.Errorf("stats = %+v", stats)
	}

	doc, err := s.GetDocumentByPath(ctx, "/c/af.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if doc.TotalChunks != 1 {
		t.Errorf("TotalChunks = %d, want 1", doc.TotalChunks)
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.GetDocument(context.Background(), "missing"); err != domain.ErrDocumentNotFound {
		t.Errorf("err = %v", err)
	}
}
