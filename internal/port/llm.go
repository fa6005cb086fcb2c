package port

import (
	"context"

	"clinrag/internal/domain"
)

// GenerationParams bound a single model call.
type GenerationParams struct {
	MaxTokens   int
	Temperature float64
	// DoSample controls non-deterministic sampling for backends that
	// expose it; derived from Temperature > 0 when unset.
	DoSample bool
}

// ModelClient is the normalized adapter contract for one backend. The two
// wire shapes (simple-completion and chat-completion) both implement it,
// so the router's behavior is identical regardless of which shape the
// backend speaks.
type ModelClient interface {
	// Generate runs one completion. The context bounds the upstream HTTP
	// call; cancellation must propagate promptly.
	Generate(ctx context.Context, systemPrompt, userPrompt string, params GenerationParams) (string, error)

	// ModelName returns the name of the model behind this client.
	ModelName() string
}

// ComplexityScorer scores a query for router target selection. The exact
// heuristic is pluggable; the router only compares the score against its
// configured minimum.
type ComplexityScorer interface {
	Score(query string) int
}

// Completion is the normalized router result.
type Completion struct {
	Text         string
	TargetUsed   domain.Target
	FallbackUsed bool
}

// Router dispatches a prompt to one of two model backends with a single
// automatic fallback hop.
type Router interface {
	Dispatch(ctx context.Context, systemPrompt, userPrompt string, params GenerationParams) (Completion, error)
}
