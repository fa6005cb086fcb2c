package analyzer

import (
	"testing"
)

func TestTokenizer_CountTokens(t *testing.T) {
	tok := NewTokenizer()

	if got := tok.CountTokens(""); got != 0 {
		t.Errorf("expected 0 tokens for empty text, got %d", got)
	}

	// 10 words, ~1.3 tokens each
	got := tok.CountTokens("metformin is first line therapy for type two diabetes mellitus")
	if got != 13 {
		t.Errorf("expected 13 tokens, got %d", got)
	}
}

func TestTokenizer_CountTokens_Punctuation(t *testing.T) {
	tok := NewTokenizer()

	a := tok.CountTokens("insulin, glargine; dosing")
	b := tok.CountTokens("insulin glargine dosing")
	if a != b {
		t.Errorf("punctuation should not change the count: %d vs %d", a, b)
	}
}

func TestTokenizer_CountTokens_Monotonic(t *testing.T) {
	tok := NewTokenizer()

	short := tok.CountTokens("renal impairment")
	long := tok.CountTokens("renal impairment requires dose adjustment of metformin and careful monitoring")
	if long <= short {
		t.Errorf("longer text should count more tokens: short=%d long=%d", short, long)
	}
}
