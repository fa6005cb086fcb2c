package port

import "clinrag/internal/domain"

// Page is the page-level text produced by an Extractor.
type Page struct {
	Number int
	Text   string
}

// Extractor pulls page-level text from a source file. A page that fails
// to parse is skipped, not fatal; an unreadable file is.
type Extractor interface {
	Extract(path string) ([]Page, error)
}

// Chunker splits cleaned pages into overlapping token windows.
type Chunker interface {
	Chunk(doc domain.Document, pages []Page) ([]domain.Chunk, error)
}
