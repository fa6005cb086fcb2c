package router

import (
	"context"
	"errors"
	"time"

	"clinrag/internal/domain"
	"clinrag/internal/logger"
	"clinrag/internal/port"
)

// Routing reasons recorded on a RouteDecision.
const (
	ReasonForced              = "forced"
	ReasonTokenThreshold      = "token-threshold"
	ReasonComplexityThreshold = "complexity-threshold"
	ReasonDefault             = "default"
)

// Router selects between the local and cloud backends, dispatches with a
// bounded timeout, and falls back exactly once to the other target when
// the primary leg fails. Stateless between calls.
type Router struct {
	local         port.ModelClient
	cloud         port.ModelClient
	scorer        port.ComplexityScorer
	timeout       time.Duration
	minTokens     int
	minComplexity int
	forceTarget   domain.Target
	log           *logger.Logger
}

func New(
	local, cloud port.ModelClient,
	scorer port.ComplexityScorer,
	timeout time.Duration,
	minTokens, minComplexity int,
	forceTarget string,
	log *logger.Logger,
) *Router {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Router{
		local:         local,
		cloud:         cloud,
		scorer:        scorer,
		timeout:       timeout,
		minTokens:     minTokens,
		minComplexity: minComplexity,
		forceTarget:   domain.Target(forceTarget),
		log:           log.With("adapter", "router"),
	}
}

// Decide computes the target for a prompt without dispatching.
func (r *Router) Decide(systemPrompt, userPrompt string, params port.GenerationParams) domain.RouteDecision {
	if r.forceTarget == domain.TargetLocal || r.forceTarget == domain.TargetCloud {
		return domain.RouteDecision{Target: r.forceTarget, Reason: ReasonForced}
	}

	// Combined prompt plus expected output length
	estimated := estimateTokens(systemPrompt) + estimateTokens(userPrompt) + params.MaxTokens
	if estimated >= r.minTokens {
		return domain.RouteDecision{Target: domain.TargetCloud, Reason: ReasonTokenThreshold}
	}

	if r.scorer.Score(userPrompt) >= r.minComplexity {
		return domain.RouteDecision{Target: domain.TargetCloud, Reason: ReasonComplexityThreshold}
	}

	return domain.RouteDecision{Target: domain.TargetLocal, Reason: ReasonDefault}
}

// Dispatch runs the primary leg and, if it fails, exactly one fallback
// hop against the other target. A second failure is terminal — never a
// retry storm.
func (r *Router) Dispatch(ctx context.Context, systemPrompt, userPrompt string, params port.GenerationParams) (port.Completion, error) {
	decision := r.Decide(systemPrompt, userPrompt, params)
	r.log.Debug("target selected", "target", decision.Target, "reason", decision.Reason)

	text, primaryErr := r.dispatchLeg(ctx, decision.Target, systemPrompt, userPrompt, params)
	if primaryErr == nil {
		return port.Completion{Text: text, TargetUsed: decision.Target}, nil
	}

	// Caller cancellation is not a backend failure; don't burn the
	// fallback hop on a dead context.
	if ctx.Err() != nil {
		return port.Completion{}, &domain.GenerationFailed{Primary: primaryErr, Fallback: ctx.Err()}
	}

	fallback := otherTarget(decision.Target)
	r.log.Warn("primary target failed, falling back", "primary", decision.Target, "fallback", fallback, "error", primaryErr)

	text, fallbackErr := r.dispatchLeg(ctx, fallback, systemPrompt, userPrompt, params)
	if fallbackErr == nil {
		return port.Completion{Text: text, TargetUsed: fallback, FallbackUsed: true}, nil
	}

	return port.Completion{}, &domain.GenerationFailed{Primary: primaryErr, Fallback: fallbackErr}
}

// dispatchLeg runs one bounded call against one target.
func (r *Router) dispatchLeg(ctx context.Context, target domain.Target, systemPrompt, userPrompt string, params port.GenerationParams) (string, error) {
	client := r.client(target)

	legCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	text, err := client.Generate(legCtx, systemPrompt, userPrompt, params)
	if err != nil {
		return "", &domain.RouterUpstreamError{
			Target:  target,
			Timeout: errors.Is(err, context.DeadlineExceeded),
			Err:     err,
		}
	}
	return text, nil
}

func (r *Router) client(target domain.Target) port.ModelClient {
	if target == domain.TargetCloud {
		return r.cloud
	}
	return r.local
}

func otherTarget(target domain.Target) domain.Target {
	if target == domain.TargetCloud {
		return domain.TargetLocal
	}
	return domain.TargetCloud
}

// estimateTokens uses the 4-chars-per-token heuristic for English
// clinical text.
func estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	n := len(text) / 4
	if n < 1 {
		n = 1
	}
	return n
}
