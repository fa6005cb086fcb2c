package usecase

import (
	"context"
	"strings"

	"clinrag/internal/domain"
	"clinrag/internal/logger"
	"clinrag/internal/port"
)

// AnswerUseCase runs the full question flow: retrieve, build a grounded
// prompt, dispatch to a model through the router, and validate the
// answer's citations against the passages that were sent.
type AnswerUseCase struct {
	retriever port.Retriever
	router    port.Router
	topK      int
	system    string
	params    port.GenerationParams
	log       *logger.Logger
}

func NewAnswerUseCase(
	retriever port.Retriever,
	router port.Router,
	topK int,
	params port.GenerationParams,
	log *logger.Logger,
) *AnswerUseCase {
	if topK < 1 {
		topK = 5
	}
	return &AnswerUseCase{
		retriever: retriever,
		router:    router,
		topK:      topK,
		system:    systemPrompt,
		params:    params,
		log:       log.With("usecase", "answer"),
	}
}

// WithSystemPrompt overrides the built-in system prompt.
func (u *AnswerUseCase) WithSystemPrompt(prompt string) *AnswerUseCase {
	if strings.TrimSpace(prompt) != "" {
		u.system = prompt
	}
	return u
}

// Answer answers a query grounded in the indexed corpus. A query that
// retrieves nothing gets a fixed refusal instead of a model call. A
// model answer with no valid citations is returned degraded, not
// rejected.
func (u *AnswerUseCase) Answer(ctx context.Context, query string, filter port.SearchFilter) (*domain.Answer, error) {
	chunks, err := u.retriever.Retrieve(ctx, query, u.topK, filter)
	if err != nil {
		return nil, err
	}

	if len(chunks) == 0 {
		u.log.Info("no passages retrieved", "query", query)
		return &domain.Answer{
			Text: "I could not find relevant guideline passages for this question. Try rephrasing, or check that the relevant guidelines have been ingested.",
		}, nil
	}

	userPrompt := buildUserPrompt(query, chunks)

	completion, err := u.router.Dispatch(ctx, u.system, userPrompt, u.params)
	if err != nil {
		return nil, err
	}

	citations := parseCitations(completion.Text, chunks)
	degraded := len(citations) == 0 && strings.TrimSpace(completion.Text) != ""
	if degraded {
		u.log.Warn("answer carries no valid citations", "target", completion.TargetUsed)
	}

	return &domain.Answer{
		Text:             completion.Text,
		Citations:        citations,
		TargetUsed:       completion.TargetUsed,
		FallbackUsed:     completion.FallbackUsed,
		CitationDegraded: degraded,
	}, nil
}

// Sources returns just the retrieval stage's output, for inspecting
// what would ground an answer.
func (u *AnswerUseCase) Sources(ctx context.Context, query string, filter port.SearchFilter) ([]domain.RetrievedChunk, error) {
	return u.retriever.Retrieve(ctx, query, u.topK, filter)
}
