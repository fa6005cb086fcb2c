package analyzer

import "unicode"

// Tokenizer estimates token counts for chunk budgeting and router
// decisions. Counts are approximate; the only hard requirement is that
// the same estimator is used at ingestion and at query time.
type Tokenizer struct{}

func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

// CountTokens returns an approximate token count for LLM budget estimation.
func (t *Tokenizer) CountTokens(text string) int {
	words := countWords(text)
	if words == 0 {
		return 0
	}
	// Rough estimate: average English word is about 1.3 subword tokens
	return int(float64(words) * 1.3)
}

// countWords counts runs of letters, digits, and underscores.
func countWords(text string) int {
	count := 0
	inWord := false

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			if !inWord {
				count++
				inWord = true
			}
		} else {
			inWord = false
		}
	}

	return count
}
