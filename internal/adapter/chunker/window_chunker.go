package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"clinrag/internal/adapter/analyzer"
	"clinrag/internal/domain"
	"clinrag/internal/port"
)

// WindowChunker splits cleaned pages into overlapping token windows.
// Chunking stays within page boundaries so every chunk has exact page
// attribution for citations. The overlap guarantees no semantic boundary
// is lost between adjacent chunks.
type WindowChunker struct {
	maxTokens int
	overlap   int
	tokenizer *analyzer.Tokenizer
}

func NewWindowChunker(maxTokens, overlap int, tokenizer *analyzer.Tokenizer) *WindowChunker {
	if overlap >= maxTokens {
		overlap = maxTokens / 4
	}
	return &WindowChunker{
		maxTokens: maxTokens,
		overlap:   overlap,
		tokenizer: tokenizer,
	}
}

func (c *WindowChunker) Chunk(doc domain.Document, pages []port.Page) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	chunkIndex := 0

	for _, page := range pages {
		section := ""
		var words []string

		flush := func() {
			for start := 0; start < len(words); {
				end, tokens := c.window(words, start)
				text := strings.Join(words[start:end], " ")

				chunks = append(chunks, domain.Chunk{
					ID:           chunkID(doc.ID, doc.Version, chunkIndex),
					DocumentID:   doc.ID,
					ChunkIndex:   chunkIndex,
					Text:         text,
					PageNumber:   page.Number,
					SectionTitle: section,
					ChunkType:    "text",
					TokenCount:   tokens,
				})
				chunkIndex++

				if end >= len(words) {
					break
				}
				start = c.nextStart(words, start, end)
			}
			words = nil
		}

		for _, line := range strings.Split(page.Text, "\n") {
			if isHeading(line) {
				flush()
				section = line
				continue
			}
			words = append(words, strings.Fields(line)...)
		}
		flush()
	}

	return chunks, nil
}

// window grows a chunk from start until the token budget would overflow.
// Always takes at least one word so oversized words cannot stall progress.
func (c *WindowChunker) window(words []string, start int) (end, tokens int) {
	end = start
	for end < len(words) {
		wordTokens := c.tokenizer.CountTokens(words[end])
		if end > start && tokens+wordTokens > c.maxTokens {
			break
		}
		tokens += wordTokens
		end++
	}
	return end, tokens
}

// nextStart backs up from end by roughly the configured overlap budget.
func (c *WindowChunker) nextStart(words []string, start, end int) int {
	if c.overlap == 0 {
		return end
	}

	tokens := 0
	next := end
	for next > start+1 && tokens < c.overlap {
		next--
		tokens += c.tokenizer.CountTokens(words[next])
	}
	if next <= start {
		next = start + 1
	}
	return next
}

// isHeading reports whether a line looks like a section title: short, no
// sentence-ending punctuation, and either a numeric outline prefix
// ("1.2 Dosing"), ALL CAPS, or title case throughout.
func isHeading(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || len(line) > 80 {
		return false
	}
	if strings.HasSuffix(line, ".") || strings.HasSuffix(line, ",") || strings.HasSuffix(line, ";") {
		return false
	}
	words := strings.Fields(line)
	if len(words) == 0 || len(words) > 8 {
		return false
	}

	if unicode.IsDigit([]rune(words[0])[0]) {
		return true
	}
	if line == strings.ToUpper(line) && line != strings.ToLower(line) {
		return true
	}
	for _, w := range words {
		r := []rune(w)[0]
		// Short connectives ("of", "in") stay lowercase in title case
		if len(w) > 3 && !unicode.IsUpper(r) {
			return false
		}
	}
	return unicode.IsUpper([]rune(words[0])[0])
}

func chunkID(docID, version string, index int) string {
	data := fmt.Sprintf("%s:%s:%d", docID, version, index)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:8])
}
