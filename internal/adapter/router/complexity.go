package router

import "strings"

// KeywordComplexityScorer scores clinical queries for routing. Terms that
// tend to need the higher-capacity model each add a point, as do
// multi-question prompts and long prompts. The scorer is pluggable
// behind port.ComplexityScorer; this is the default heuristic.
type KeywordComplexityScorer struct {
	terms []string
}

func NewKeywordComplexityScorer() *KeywordComplexityScorer {
	return &KeywordComplexityScorer{
		terms: []string{
			"differential diagnosis",
			"contraindication",
			"drug interaction",
			"comorbidity",
			"refractory",
			"autoimmune",
			"red flag",
			"urgent",
			"escalation",
			"rare",
			"multisystem",
			"pregnancy",
			"renal impairment",
			"hepatotoxic",
		},
	}
}

func (s *KeywordComplexityScorer) Score(query string) int {
	lowered := strings.ToLower(query)
	score := 0

	for _, term := range s.terms {
		if strings.Contains(lowered, term) {
			score++
		}
	}

	if strings.Count(query, "?") >= 2 {
		score++
	}

	// Longer prompts tend to be clinically richer
	switch {
	case len(query) >= 1600:
		score += 2
	case len(query) >= 900:
		score++
	}

	return score
}
