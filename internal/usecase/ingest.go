package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"clinrag/internal/adapter/cache"
	"clinrag/internal/adapter/cleaner"
	"clinrag/internal/adapter/fs"
	"clinrag/internal/domain"
	"clinrag/internal/logger"
	"clinrag/internal/port"
)

// IngestUseCase runs the ingestion pipeline for one file: extract pages,
// clean, chunk, embed, and write everything to the store in one
// transaction.
type IngestUseCase struct {
	extractor port.Extractor
	cleaner   *cleaner.Cleaner
	chunker   port.Chunker
	embedder  port.Embedder
	cache     *cache.EmbedCache
	store     port.ChunkStore
	log       *logger.Logger
}

// NewIngestUseCase creates a new ingest use case. The embedding cache is
// optional; pass nil to embed every chunk fresh.
func NewIngestUseCase(
	extractor port.Extractor,
	cleaner *cleaner.Cleaner,
	chunker port.Chunker,
	embedder port.Embedder,
	embedCache *cache.EmbedCache,
	store port.ChunkStore,
	log *logger.Logger,
) *IngestUseCase {
	return &IngestUseCase{
		extractor: extractor,
		cleaner:   cleaner,
		chunker:   chunker,
		embedder:  embedder,
		cache:     embedCache,
		store:     store,
		log:       log.With("usecase", "ingest"),
	}
}

// IngestResult contains the results of ingesting a single file.
type IngestResult struct {
	DocumentID    string
	Pages         int
	ChunksWritten int
	Skipped       bool
}

// CorpusResult aggregates an IngestCorpus run.
type CorpusResult struct {
	FilesIngested int
	FilesSkipped  int
	ChunksWritten int
	Errors        []string
}

// IngestFile ingests one corpus file. Re-ingesting an unchanged file
// (same path, same version) is a no-op; a changed file replaces its
// previous chunks atomically under the same document id.
func (u *IngestUseCase) IngestFile(ctx context.Context, file fs.CorpusFile) (*IngestResult, error) {
	version := fileVersion(file)

	docID, skip, err := u.resolveDocumentID(ctx, file.Path, version)
	if err != nil {
		return nil, err
	}
	if skip {
		u.log.Debug("file unchanged, skipping", "path", file.Path, "version", version)
		return &IngestResult{DocumentID: docID, Skipped: true}, nil
	}

	pages, err := u.extractor.Extract(file.Path)
	if err != nil {
		return nil, err
	}
	pages = u.cleaner.Clean(pages)

	doc := domain.Document{
		ID:         docID,
		Filename:   filepath.Base(file.Path),
		Specialty:  file.Specialty,
		Publisher:  file.Publisher,
		FilePath:   file.Path,
		Version:    version,
		TotalPages: len(pages),
		IngestedAt: time.Now().UTC(),
	}

	chunks, err := u.chunker.Chunk(doc, pages)
	if err != nil {
		return nil, fmt.Errorf("chunking %s: %w", file.Path, err)
	}
	if len(chunks) == 0 {
		u.log.Warn("no chunks produced", "path", file.Path)
		return &IngestResult{DocumentID: docID, Pages: len(pages)}, nil
	}

	if err := u.embedChunks(ctx, chunks); err != nil {
		return nil, err
	}

	if err := u.store.UpsertDocument(ctx, doc, chunks); err != nil {
		return nil, err
	}

	u.log.Info("ingested file",
		"path", file.Path,
		"document_id", docID,
		"pages", len(pages),
		"chunks", len(chunks))

	return &IngestResult{
		DocumentID:    docID,
		Pages:         len(pages),
		ChunksWritten: len(chunks),
	}, nil
}

// IngestCorpus walks the corpus and ingests every file with bounded
// concurrency. Per-file failures are collected, not fatal; onFile, when
// non-nil, is called after each file for progress reporting.
func (u *IngestUseCase) IngestCorpus(ctx context.Context, files []fs.CorpusFile, workers int, onFile func(fs.CorpusFile)) (*CorpusResult, error) {
	if workers < 1 {
		workers = 1
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		sem    = make(chan struct{}, workers)
		result = &CorpusResult{}
	)

	for _, file := range files {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)

		go func(file fs.CorpusFile) {
			defer wg.Done()
			defer func() { <-sem }()

			res, err := u.IngestFile(ctx, file)

			mu.Lock()
			switch {
			case err != nil:
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", file.Path, err))
			case res.Skipped:
				result.FilesSkipped++
			default:
				result.FilesIngested++
				result.ChunksWritten += res.ChunksWritten
			}
			mu.Unlock()

			if onFile != nil {
				onFile(file)
			}
		}(file)
	}

	wg.Wait()
	return result, ctx.Err()
}

// resolveDocumentID reuses the existing document id for a known path so
// re-ingestion replaces rather than duplicates. skip is true when the
// stored version already matches.
func (u *IngestUseCase) resolveDocumentID(ctx context.Context, path, version string) (id string, skip bool, err error) {
	existing, err := u.store.GetDocumentByPath(ctx, path)
	if errors.Is(err, domain.ErrDocumentNotFound) {
		return uuid.NewString(), false, nil
	}
	if err != nil {
		return "", false, err
	}
	return existing.ID, existing.Version == version, nil
}

// embedChunks fills in the Embedding field for every chunk, consulting
// the cache first and embedding only the misses.
func (u *IngestUseCase) embedChunks(ctx context.Context, chunks []domain.Chunk) error {
	model := u.embedder.ModelName()

	missTexts := make([]string, 0, len(chunks))
	missIdx := make([]int, 0, len(chunks))

	for i := range chunks {
		if u.cache != nil {
			if vec, ok := u.cache.Get(model, chunks[i].Text); ok {
				chunks[i].Embedding = vec
				continue
			}
		}
		missTexts = append(missTexts, chunks[i].Text)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		return nil
	}

	vectors, err := u.embedder.Embed(ctx, missTexts)
	if err != nil {
		return err
	}
	if len(vectors) != len(missTexts) {
		return &domain.EmbeddingError{
			Model: model,
			Err:   fmt.Errorf("got %d vectors for %d texts", len(vectors), len(missTexts)),
		}
	}

	for j, i := range missIdx {
		chunks[i].Embedding = vectors[j]
		if u.cache != nil {
			if err := u.cache.Put(model, chunks[i].Text, vectors[j]); err != nil {
				u.log.Warn("embed cache write failed", "error", err)
			}
		}
	}
	return nil
}

// fileVersion derives a document version from the file's size and
// modification time, so unchanged files are skipped on re-ingest.
func fileVersion(file fs.CorpusFile) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%d", file.ModTime, file.Size)))
	return hex.EncodeToString(sum[:8])
}
