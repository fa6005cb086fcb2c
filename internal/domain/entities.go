package domain

import "time"

// Document is one ingested guideline source file.
type Document struct {
	ID          string
	Filename    string
	Specialty   string
	Publisher   string
	FilePath    string
	Version     string
	TotalPages  int
	TotalChunks int
	IngestedAt  time.Time
	Metadata    map[string]string
}

// Chunk is the unit of indexing and retrieval: a bounded slice of a
// document's text plus its embedding. The lexical search column is
// generated by the store from Text and is never set here.
type Chunk struct {
	ID           string
	DocumentID   string
	ChunkIndex   int
	Text         string
	Embedding    []float32
	PageNumber   int
	SectionTitle string
	ChunkType    string
	TokenCount   int
	Metadata     map[string]string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RetrievedChunk is a chunk scored against a query. Produced per query,
// never persisted.
type RetrievedChunk struct {
	Chunk        Chunk
	VectorScore  float64
	LexicalScore float64
	FusedScore   float64
	Rank         int

	// Owning document fields needed for citations and tie-breaking.
	Filename   string
	IngestedAt time.Time
}

// Target identifies one of the two model backends.
type Target string

const (
	TargetLocal Target = "local"
	TargetCloud Target = "cloud"
)

// RouteDecision records why a dispatch went to a given target.
type RouteDecision struct {
	Target       Target
	Reason       string
	FallbackUsed bool
}

// Citation references a source passage that was actually included in the
// prompt sent to the model.
type Citation struct {
	SourceIndex  int
	DocumentID   string
	Filename     string
	PageNumber   int
	SectionTitle string
}

// Answer is the result of a grounded generation.
type Answer struct {
	Text             string
	Citations        []Citation
	TargetUsed       Target
	FallbackUsed     bool
	CitationDegraded bool
}

// Stats summarizes the indexed corpus.
type Stats struct {
	TotalDocs   int
	TotalChunks int
}
