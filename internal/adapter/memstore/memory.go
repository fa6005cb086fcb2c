package memstore

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"clinrag/internal/domain"
	"clinrag/internal/port"
)

// MemoryStore is an in-process ChunkStore with brute-force cosine search
// and naive keyword matching. Meant for examples and offline tests; the
// Postgres store is the production path.
type MemoryStore struct {
	mu     sync.RWMutex
	docs   map[string]domain.Document
	chunks map[string][]domain.Chunk // keyed by document id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:   make(map[string]domain.Document),
		chunks: make(map[string][]domain.Chunk),
	}
}

func (s *MemoryStore) UpsertDocument(ctx context.Context, doc domain.Document, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc.TotalChunks = len(chunks)
	s.docs[doc.ID] = doc
	s.chunks[doc.ID] = append([]domain.Chunk(nil), chunks...)
	return nil
}

func (s *MemoryStore) VectorSearch(ctx context.Context, embedding []float32, k int, filter port.SearchFilter) ([]domain.RetrievedChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []domain.RetrievedChunk
	for docID, chunks := range s.chunks {
		doc := s.docs[docID]
		if !matches(doc, filter) {
			continue
		}
		for _, chunk := range chunks {
			score := cosine(embedding, chunk.Embedding)
			results = append(results, domain.RetrievedChunk{
				Chunk:       chunk,
				VectorScore: score,
				Filename:    doc.Filename,
				IngestedAt:  doc.IngestedAt,
			})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].VectorScore > results[j].VectorScore
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (s *MemoryStore) LexicalSearch(ctx context.Context, query string, k int, filter port.SearchFilter) ([]domain.RetrievedChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil, nil
	}

	var results []domain.RetrievedChunk
	for docID, chunks := range s.chunks {
		doc := s.docs[docID]
		if !matches(doc, filter) {
			continue
		}
		for _, chunk := range chunks {
			text := strings.ToLower(chunk.Text)
			hits := 0
			for _, term := range terms {
				if strings.Contains(text, term) {
					hits++
				}
			}
			if hits == 0 {
				continue
			}
			results = append(results, domain.RetrievedChunk{
				Chunk:        chunk,
				LexicalScore: float64(hits) / float64(len(terms)),
				Filename:     doc.Filename,
				IngestedAt:   doc.IngestedAt,
			})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].LexicalScore > results[j].LexicalScore
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (s *MemoryStore) GetDocument(ctx context.Context, id string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	return doc, nil
}

func (s *MemoryStore) GetDocumentByPath(ctx context.Context, path string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.docs {
		if doc.FilePath == path {
			return doc, nil
		}
	}
	return domain.Document{}, domain.ErrDocumentNotFound
}

func (s *MemoryStore) DeleteDocument(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	delete(s.chunks, id)
	return nil
}

func (s *MemoryStore) Stats(ctx context.Context) (domain.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := domain.Stats{TotalDocs: len(s.docs)}
	for _, chunks := range s.chunks {
		stats.TotalChunks += len(chunks)
	}
	return stats, nil
}

func (s *MemoryStore) Close() {}

func matches(doc domain.Document, filter port.SearchFilter) bool {
	if filter.Specialty != "" && doc.Specialty != filter.Specialty {
		return false
	}
	if filter.Publisher != "" && doc.Publisher != filter.Publisher {
		return false
	}
	return true
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
