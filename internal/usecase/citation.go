package usecase

import (
	"regexp"
	"strconv"

	"clinrag/internal/domain"
)

var citationRe = regexp.MustCompile(`\[(\d+)\]`)

// parseCitations extracts bracketed source markers from the answer text
// and resolves them against the passages that were actually in the
// prompt. Markers outside 1..len(sources) are dropped; duplicates keep
// first-occurrence order.
func parseCitations(text string, sources []domain.RetrievedChunk) []domain.Citation {
	var citations []domain.Citation
	seen := make(map[int]struct{})

	for _, match := range citationRe.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil || n < 1 || n > len(sources) {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}

		src := sources[n-1]
		citations = append(citations, domain.Citation{
			SourceIndex:  n,
			DocumentID:   src.Chunk.DocumentID,
			Filename:     src.Filename,
			PageNumber:   src.Chunk.PageNumber,
			SectionTitle: src.Chunk.SectionTitle,
		})
	}
	return citations
}
