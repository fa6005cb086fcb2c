package cli

import (
	"context"
	"fmt"

	"clinrag/internal/adapter/embedding"
	"clinrag/internal/adapter/llm"
	"clinrag/internal/adapter/retriever"
	"clinrag/internal/adapter/router"
	"clinrag/internal/adapter/store"
	"clinrag/internal/port"
	"clinrag/internal/usecase"
)

func newStore(ctx context.Context) (*store.PostgresStore, error) {
	return store.NewPostgresStore(ctx,
		cfg.Store.DatabaseURL,
		cfg.Store.MaxConns,
		cfg.Embedding.Dimension,
		cfg.Store.HNSWM,
		cfg.Store.HNSWEfConstruction,
		log)
}

func newEmbedder() (port.Embedder, error) {
	e := cfg.Embedding
	switch e.Provider {
	case "openai":
		return embedding.NewOpenAIEmbedder(e.APIKeyEnv, e.Model, e.BaseURL, e.Dimension, e.BatchSize)
	case "ollama":
		return embedding.NewOllamaEmbedder(e.Model, e.BaseURL, e.BatchSize)
	case "mock":
		return embedding.NewMockEmbedder(e.Dimension), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", e.Provider)
	}
}

func newRouter() (port.Router, error) {
	r := cfg.Router

	local, err := llm.New(r.Local.Style, r.Local.BaseURL, r.Local.Model, r.Local.APIKeyEnv, r.Timeout)
	if err != nil {
		return nil, fmt.Errorf("local target: %w", err)
	}
	cloud, err := llm.New(r.Cloud.Style, r.Cloud.BaseURL, r.Cloud.Model, r.Cloud.APIKeyEnv, r.Timeout)
	if err != nil {
		return nil, fmt.Errorf("cloud target: %w", err)
	}

	return router.New(local, cloud,
		router.NewKeywordComplexityScorer(),
		r.Timeout, r.MinTokens, r.MinComplexity, r.ForceTarget,
		log), nil
}

func newAnswerUseCase(st port.ChunkStore, embedder port.Embedder) (*usecase.AnswerUseCase, error) {
	rt, err := newRouter()
	if err != nil {
		return nil, err
	}

	hybrid := retriever.NewHybridRetriever(st, embedder,
		cfg.Retrieve.RRFK, cfg.Retrieve.VectorWeight, log)

	params := port.GenerationParams{
		MaxTokens:   cfg.Generation.MaxTokens,
		Temperature: cfg.Generation.Temperature,
		DoSample:    cfg.Generation.Temperature > 0,
	}

	return usecase.NewAnswerUseCase(hybrid, rt, cfg.Retrieve.TopK, params, log).
		WithSystemPrompt(cfg.Generation.SystemPrompt), nil
}
