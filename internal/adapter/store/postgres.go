package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clinrag/internal/domain"
	"clinrag/internal/logger"
	"clinrag/internal/port"
)

// PostgresStore persists documents and chunks in Postgres with pgvector.
// The embedding column carries an HNSW index for approximate nearest
// neighbor search; the lexical index is a generated tsvector column with
// a GIN index, kept in sync by Postgres on every write.
type PostgresStore struct {
	pool      *pgxpool.Pool
	dimension int
	hnswM     int
	hnswEf    int
	log       *logger.Logger
}

func NewPostgresStore(ctx context.Context, databaseURL string, maxConns int32, dimension, hnswM, hnswEf int, log *logger.Logger) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{
		pool:      pool,
		dimension: dimension,
		hnswM:     hnswM,
		hnswEf:    hnswEf,
		log:       log.With("adapter", "postgres_store"),
	}, nil
}

// Migrate creates the extension, tables, and indexes if they don't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,

		`CREATE TABLE IF NOT EXISTS documents (
			id           TEXT        PRIMARY KEY,
			filename     TEXT        NOT NULL,
			specialty    TEXT        NOT NULL DEFAULT '',
			publisher    TEXT        NOT NULL DEFAULT '',
			file_path    TEXT        NOT NULL UNIQUE,
			version      TEXT        NOT NULL DEFAULT 'v1',
			total_pages  INT         NOT NULL DEFAULT 0,
			total_chunks INT         NOT NULL DEFAULT 0,
			ingested_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			metadata     JSONB       NOT NULL DEFAULT '{}'
		)`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id            BIGSERIAL   PRIMARY KEY,
			chunk_id      TEXT        NOT NULL,
			document_id   TEXT        NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			doc_version   TEXT        NOT NULL,
			chunk_index   INT         NOT NULL,
			text          TEXT        NOT NULL,
			embedding     VECTOR(%d)  NOT NULL,
			page_number   INT         NOT NULL DEFAULT 0,
			section_title TEXT        NOT NULL DEFAULT '',
			chunk_type    TEXT        NOT NULL DEFAULT 'text',
			token_count   INT         NOT NULL DEFAULT 0,
			metadata      JSONB       NOT NULL DEFAULT '{}',
			text_search_vector TSVECTOR GENERATED ALWAYS AS (to_tsvector('english', text)) STORED,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),

			CONSTRAINT chunks_identity UNIQUE (document_id, doc_version, chunk_id)
		)`, s.dimension),

		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_chunks_embedding_hnsw
			ON chunks USING hnsw (embedding vector_cosine_ops)
			WITH (m = %d, ef_construction = %d)`, s.hnswM, s.hnswEf),

		`CREATE INDEX IF NOT EXISTS idx_chunks_text_search
			ON chunks USING gin (text_search_vector)`,

		`CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON chunks (document_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return &domain.StoreError{Op: "migrate", Err: err}
		}
	}

	s.log.Info("store migrated", "dimension", s.dimension)
	return nil
}

// UpsertDocument writes the document row and all of its chunks in one
// transaction, so a reader never observes a partial chunk set. Chunks of
// older versions are removed in the same transaction; re-ingesting the
// same version with the same chunk identities upserts in place.
func (s *PostgresStore) UpsertDocument(ctx context.Context, doc domain.Document, chunks []domain.Chunk) error {
	for _, chunk := range chunks {
		if len(chunk.Embedding) != s.dimension {
			return &domain.StoreError{
				Op:  "upsert",
				Err: fmt.Errorf("chunk %d embedding dimension %d, store requires %d", chunk.ChunkIndex, len(chunk.Embedding), s.dimension),
			}
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return &domain.StoreError{Op: "begin", Err: err}
	}
	defer tx.Rollback(ctx)

	docMeta, err := json.Marshal(orEmpty(doc.Metadata))
	if err != nil {
		return &domain.StoreError{Op: "upsert", Err: err}
	}

	// total_chunks is written at the end, after all chunks commit
	_, err = tx.Exec(ctx, `
		INSERT INTO documents (id, filename, specialty, publisher, file_path, version, total_pages, total_chunks, ingested_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, NOW(), $8)
		ON CONFLICT (id) DO UPDATE SET
			filename    = EXCLUDED.filename,
			specialty   = EXCLUDED.specialty,
			publisher   = EXCLUDED.publisher,
			version     = EXCLUDED.version,
			total_pages = EXCLUDED.total_pages,
			ingested_at = NOW(),
			metadata    = EXCLUDED.metadata`,
		doc.ID, doc.Filename, doc.Specialty, doc.Publisher, doc.FilePath, doc.Version, doc.TotalPages, string(docMeta))
	if err != nil {
		return &domain.StoreError{Op: "upsert document", Err: err}
	}

	// Drop chunks from older versions and any trailing chunks a shorter
	// re-ingest leaves behind, keeping chunk_index contiguous 0..N-1.
	_, err = tx.Exec(ctx, `
		DELETE FROM chunks
		WHERE document_id = $1 AND (doc_version <> $2 OR chunk_index >= $3)`,
		doc.ID, doc.Version, len(chunks))
	if err != nil {
		return &domain.StoreError{Op: "prune chunks", Err: err}
	}

	batch := &pgx.Batch{}
	for _, chunk := range chunks {
		chunkMeta, err := json.Marshal(orEmpty(chunk.Metadata))
		if err != nil {
			return &domain.StoreError{Op: "upsert", Err: err}
		}
		batch.Queue(`
			INSERT INTO chunks (chunk_id, document_id, doc_version, chunk_index, text, embedding, page_number, section_title, chunk_type, token_count, metadata)
			VALUES ($1, $2, $3, $4, $5, $6::vector, $7, $8, $9, $10, $11)
			ON CONFLICT (document_id, doc_version, chunk_id) DO UPDATE SET
				chunk_index   = EXCLUDED.chunk_index,
				text          = EXCLUDED.text,
				embedding     = EXCLUDED.embedding,
				page_number   = EXCLUDED.page_number,
				section_title = EXCLUDED.section_title,
				chunk_type    = EXCLUDED.chunk_type,
				token_count   = EXCLUDED.token_count,
				metadata      = EXCLUDED.metadata,
				updated_at    = NOW()`,
			chunk.ID, doc.ID, doc.Version, chunk.ChunkIndex, chunk.Text, vectorLiteral(chunk.Embedding),
			chunk.PageNumber, chunk.SectionTitle, chunk.ChunkType, chunk.TokenCount, string(chunkMeta))
	}

	results := tx.SendBatch(ctx, batch)
	for range chunks {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return &domain.StoreError{Op: "upsert chunks", Err: err}
		}
	}
	if err := results.Close(); err != nil {
		return &domain.StoreError{Op: "upsert chunks", Err: err}
	}

	_, err = tx.Exec(ctx, `UPDATE documents SET total_chunks = $2 WHERE id = $1`, doc.ID, len(chunks))
	if err != nil {
		return &domain.StoreError{Op: "finalize document", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return &domain.StoreError{Op: "commit", Err: err}
	}

	s.log.Debug("document upserted", "document_id", doc.ID, "chunks", len(chunks))
	return nil
}

const retrievedColumns = `
	c.chunk_id, c.document_id, c.chunk_index, c.text, c.page_number,
	c.section_title, c.chunk_type, c.token_count, c.metadata,
	d.filename, d.ingested_at`

// VectorSearch returns the k nearest chunks by cosine similarity.
func (s *PostgresStore) VectorSearch(ctx context.Context, embedding []float32, k int, filter port.SearchFilter) ([]domain.RetrievedChunk, error) {
	if len(embedding) != s.dimension {
		return nil, fmt.Errorf("query embedding dimension %d, store requires %d", len(embedding), s.dimension)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+retrievedColumns+`,
			1 - (c.embedding <=> $1::vector) AS score
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE ($2 = '' OR d.specialty = $2)
		  AND ($3 = '' OR d.publisher = $3)
		ORDER BY c.embedding <=> $1::vector ASC
		LIMIT $4`,
		vectorLiteral(embedding), filter.Specialty, filter.Publisher, k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer rows.Close()

	return scanRetrieved(rows, func(rc *domain.RetrievedChunk, score float64) {
		rc.VectorScore = score
	})
}

// LexicalSearch returns the k highest-ranked chunks by full-text
// relevance. A query of nothing but stopwords produces an empty tsquery,
// which matches no rows.
func (s *PostgresStore) LexicalSearch(ctx context.Context, query string, k int, filter port.SearchFilter) ([]domain.RetrievedChunk, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+retrievedColumns+`,
			ts_rank(c.text_search_vector, plainto_tsquery('english', $1)) AS score
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE c.text_search_vector @@ plainto_tsquery('english', $1)
		  AND ($2 = '' OR d.specialty = $2)
		  AND ($3 = '' OR d.publisher = $3)
		ORDER BY score DESC
		LIMIT $4`,
		query, filter.Specialty, filter.Publisher, k)
	if err != nil {
		return nil, fmt.Errorf("lexical search failed: %w", err)
	}
	defer rows.Close()

	return scanRetrieved(rows, func(rc *domain.RetrievedChunk, score float64) {
		rc.LexicalScore = score
	})
}

func (s *PostgresStore) GetDocument(ctx context.Context, id string) (domain.Document, error) {
	return s.getDocument(ctx, `WHERE id = $1`, id)
}

func (s *PostgresStore) GetDocumentByPath(ctx context.Context, path string) (domain.Document, error) {
	return s.getDocument(ctx, `WHERE file_path = $1`, path)
}

func (s *PostgresStore) getDocument(ctx context.Context, where string, arg any) (domain.Document, error) {
	var doc domain.Document
	var meta []byte

	err := s.pool.QueryRow(ctx, `
		SELECT id, filename, specialty, publisher, file_path, version, total_pages, total_chunks, ingested_at, metadata
		FROM documents `+where, arg).Scan(
		&doc.ID, &doc.Filename, &doc.Specialty, &doc.Publisher, &doc.FilePath,
		&doc.Version, &doc.TotalPages, &doc.TotalChunks, &doc.IngestedAt, &meta)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("document lookup failed: %w", err)
	}

	if err := json.Unmarshal(meta, &doc.Metadata); err != nil {
		return domain.Document{}, fmt.Errorf("document metadata decode failed: %w", err)
	}
	return doc, nil
}

// DeleteDocument removes a document; its chunks cascade.
func (s *PostgresStore) DeleteDocument(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id); err != nil {
		return &domain.StoreError{Op: "delete document", Err: err}
	}
	return nil
}

func (s *PostgresStore) Stats(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats
	err := s.pool.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM documents), (SELECT COUNT(*) FROM chunks)`).
		Scan(&stats.TotalDocs, &stats.TotalChunks)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("stats query failed: %w", err)
	}
	return stats, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func scanRetrieved(rows pgx.Rows, setScore func(*domain.RetrievedChunk, float64)) ([]domain.RetrievedChunk, error) {
	var results []domain.RetrievedChunk

	for rows.Next() {
		var rc domain.RetrievedChunk
		var meta []byte
		var score float64

		err := rows.Scan(
			&rc.Chunk.ID, &rc.Chunk.DocumentID, &rc.Chunk.ChunkIndex, &rc.Chunk.Text,
			&rc.Chunk.PageNumber, &rc.Chunk.SectionTitle, &rc.Chunk.ChunkType,
			&rc.Chunk.TokenCount, &meta, &rc.Filename, &rc.IngestedAt, &score)
		if err != nil {
			return nil, fmt.Errorf("row scan failed: %w", err)
		}
		if err := json.Unmarshal(meta, &rc.Chunk.Metadata); err != nil {
			return nil, fmt.Errorf("chunk metadata decode failed: %w", err)
		}

		setScore(&rc, score)
		results = append(results, rc)
	}

	return results, rows.Err()
}

// vectorLiteral renders a pgvector input literal: [0.1,0.2,...].
func vectorLiteral(vec []float32) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
