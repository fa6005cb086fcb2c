package chunker

import (
	"strings"
	"testing"

	"clinrag/internal/adapter/analyzer"
	"clinrag/internal/domain"
	"clinrag/internal/port"
)

func testDoc() domain.Document {
	return domain.Document{ID: "doc1", Version: "v1"}
}

func TestChunk_RespectsTokenBudget(t *testing.T) {
	c := NewWindowChunker(50, 10, analyzer.NewTokenizer())

	text := strings.Repeat("metformin glycemic control dosing adjustment ", 60)
	chunks, err := c.Chunk(testDoc(), []port.Page{{Number: 1, Text: text}})
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for _, chunk := range chunks {
		if chunk.TokenCount > 50 {
			t.Errorf("chunk %d exceeds budget: %d tokens", chunk.ChunkIndex, chunk.TokenCount)
		}
	}
}

func TestChunk_IndexesAreContiguous(t *testing.T) {
	c := NewWindowChunker(30, 5, analyzer.NewTokenizer())

	pages := []port.Page{
		{Number: 1, Text: strings.Repeat("insulin titration protocol steps ", 30)},
		{Number: 3, Text: strings.Repeat("renal dosing thresholds egfr ", 30)},
	}
	chunks, err := c.Chunk(testDoc(), pages)
	if err != nil {
		t.Fatal(err)
	}

	for i, chunk := range chunks {
		if chunk.ChunkIndex != i {
			t.Errorf("expected chunk_index %d, got %d", i, chunk.ChunkIndex)
		}
	}
}

func TestChunk_OverlapSharesText(t *testing.T) {
	c := NewWindowChunker(40, 15, analyzer.NewTokenizer())

	words := make([]string, 120)
	for i := range words {
		words[i] = "word" + string(rune('a'+i%26))
	}
	chunks, err := c.Chunk(testDoc(), []port.Page{{Number: 1, Text: strings.Join(words, " ")}})
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}

	first := strings.Fields(chunks[0].Text)
	second := strings.Fields(chunks[1].Text)
	tail := first[len(first)-1]
	if !contains(second, tail) {
		t.Errorf("expected overlap: last word of chunk 0 (%q) not in chunk 1", tail)
	}
}

func TestChunk_TracksPageAndSection(t *testing.T) {
	c := NewWindowChunker(100, 0, analyzer.NewTokenizer())

	pages := []port.Page{
		{Number: 2, Text: "Insulin Dosing\nstart low and titrate the basal insulin dose weekly"},
	}
	chunks, err := c.Chunk(testDoc(), pages)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].PageNumber != 2 {
		t.Errorf("expected page 2, got %d", chunks[0].PageNumber)
	}
	if chunks[0].SectionTitle != "Insulin Dosing" {
		t.Errorf("expected section title, got %q", chunks[0].SectionTitle)
	}
}

func TestChunk_DeterministicIDs(t *testing.T) {
	c := NewWindowChunker(50, 10, analyzer.NewTokenizer())
	pages := []port.Page{{Number: 1, Text: strings.Repeat("anticoagulation bridging perioperative ", 20)}}

	a, err := c.Chunk(testDoc(), pages)
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Chunk(testDoc(), pages)
	if err != nil {
		t.Fatal(err)
	}

	if len(a) != len(b) {
		t.Fatalf("expected same chunk count, got %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Errorf("chunk %d: expected identical IDs across runs, got %s vs %s", i, a[i].ID, b[i].ID)
		}
	}
}

func TestIsHeading(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{"1.2 Dosing Recommendations", true},
		{"INSULIN SAFETY", true},
		{"Insulin Safety in Pregnancy", true},
		{"the dose should be reduced.", false},
		{"metformin is usually continued unless egfr falls", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := isHeading(tc.line); got != tc.want {
			t.Errorf("isHeading(%q) = %v, want %v", tc.line, got, tc.want)
		}
	}
}

func contains(words []string, w string) bool {
	for _, x := range words {
		if x == w {
			return true
		}
	}
	return false
}
