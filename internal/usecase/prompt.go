package usecase

import (
	"fmt"
	"strings"

	"clinrag/internal/domain"
)

const systemPrompt = `You are a clinical guideline assistant. Answer using ONLY the numbered source passages provided. Cite every claim with the source number in square brackets, for example [1] or [2]. If the sources do not contain the answer, say so plainly instead of guessing. Do not give medical advice beyond what the guidelines state.`

// buildUserPrompt renders the retrieved chunks as numbered source
// passages followed by the question. The numbering here is what the
// model's bracket citations refer back to.
func buildUserPrompt(query string, chunks []domain.RetrievedChunk) string {
	var b strings.Builder

	b.WriteString("Source passages:\n\n")
	for i, chunk := range chunks {
		fmt.Fprintf(&b, "[%d] %s", i+1, chunk.Filename)
		if chunk.Chunk.PageNumber > 0 {
			fmt.Fprintf(&b, ", page %d", chunk.Chunk.PageNumber)
		}
		if chunk.Chunk.SectionTitle != "" {
			fmt.Fprintf(&b, ", section %q", chunk.Chunk.SectionTitle)
		}
		b.WriteString(":\n")
		b.WriteString(strings.TrimSpace(chunk.Chunk.Text))
		b.WriteString("\n\n")
	}

	b.WriteString("Question: ")
	b.WriteString(strings.TrimSpace(query))
	return b.String()
}
