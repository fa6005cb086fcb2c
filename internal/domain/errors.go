package domain

import (
	"errors"
	"fmt"
)

// ErrDocumentNotFound is returned by store lookups for an unknown
// document id or path.
var ErrDocumentNotFound = errors.New("document not found")

// ExtractionError means the source file could not be read at all.
// Individual unreadable pages are skipped and logged, not raised.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// EmbeddingError means vector computation failed and the document's
// ingestion was aborted.
type EmbeddingError struct {
	Model string
	Err   error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed (model %s): %v", e.Model, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// StoreError means a transactional write failed; the whole document
// was rolled back.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// RetrievalUnavailable means the index/store could not be reached.
// Surfaced to the caller synchronously, never retried internally.
type RetrievalUnavailable struct {
	Err error
}

func (e *RetrievalUnavailable) Error() string {
	return fmt.Sprintf("retrieval unavailable: %v", e.Err)
}

func (e *RetrievalUnavailable) Unwrap() error { return e.Err }

// RouterUpstreamError means one dispatch leg failed (timeout, non-success
// status, or an unparseable body). It triggers the single fallback hop.
type RouterUpstreamError struct {
	Target  Target
	Timeout bool
	Err     error
}

func (e *RouterUpstreamError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("target %s timed out: %v", e.Target, e.Err)
	}
	return fmt.Sprintf("target %s failed: %v", e.Target, e.Err)
}

func (e *RouterUpstreamError) Unwrap() error { return e.Err }

// GenerationFailed means both router targets were exhausted. Terminal.
type GenerationFailed struct {
	Primary  error
	Fallback error
}

func (e *GenerationFailed) Error() string {
	return fmt.Sprintf("generation failed on both targets: primary: %v; fallback: %v", e.Primary, e.Fallback)
}

func (e *GenerationFailed) Unwrap() error { return e.Primary }
