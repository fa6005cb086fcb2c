// Command benchmark runs a query against the live store and prints the
// per-branch and fused rankings, for eyeballing retrieval quality after
// ingesting a corpus.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"clinrag/config"
	"clinrag/internal/adapter/embedding"
	"clinrag/internal/adapter/retriever"
	"clinrag/internal/adapter/store"
	"clinrag/internal/domain"
	"clinrag/internal/logger"
	"clinrag/internal/port"
)

func main() {
	cfgPath := flag.String("config", "", "config file (default is ./clinrag.yaml)")
	query := flag.String("q", "", "query to test")
	topK := flag.Int("k", 10, "number of results")
	specialty := flag.String("specialty", "", "restrict to one specialty")
	flag.Parse()

	if *query == "" {
		fmt.Println("Usage: go run cmd/benchmark/main.go -q \"query\"")
		fmt.Println("\nPrints, for one query:")
		fmt.Println("  1. The vector branch ranking (cosine similarity)")
		fmt.Println("  2. The lexical branch ranking (ts_rank)")
		fmt.Println("  3. The fused ranking the answer pipeline would use")
		os.Exit(1)
	}

	_ = godotenv.Load()

	var cfg *config.Config
	var err error
	if *cfgPath != "" {
		cfg, err = config.Load(*cfgPath)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewNop()
	ctx := context.Background()

	st, err := store.NewPostgresStore(ctx, cfg.Store.DatabaseURL, cfg.Store.MaxConns,
		cfg.Embedding.Dimension, cfg.Store.HNSWM, cfg.Store.HNSWEfConstruction, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	embedder, err := newEmbedder(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Embedding not available: %v\n", err)
		os.Exit(1)
	}

	filter := port.SearchFilter{Specialty: *specialty}

	fmt.Println("RETRIEVAL BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))

	stats, _ := st.Stats(ctx)
	fmt.Printf("Documents: %d  Chunks: %d\n", stats.TotalDocs, stats.TotalChunks)
	fmt.Printf("Model: %s (%s), dimension %d\n", cfg.Embedding.Model, cfg.Embedding.Provider, embedder.Dimension())
	fmt.Printf("Query: %q\n", *query)

	vectors, err := embedder.Embed(ctx, []string{*query})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Embedding failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nVector branch")
	fmt.Println(strings.Repeat("-", 70))
	vres, err := st.VectorSearch(ctx, vectors[0], *topK, filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Vector search failed: %v\n", err)
	}
	for i, r := range vres {
		printResult(i+1, r, r.VectorScore)
	}

	fmt.Println("\nLexical branch")
	fmt.Println(strings.Repeat("-", 70))
	lres, err := st.LexicalSearch(ctx, *query, *topK, filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lexical search failed: %v\n", err)
	}
	for i, r := range lres {
		printResult(i+1, r, r.LexicalScore)
	}

	fmt.Println("\nFused")
	fmt.Println(strings.Repeat("-", 70))
	hybrid := retriever.NewHybridRetriever(st, embedder, cfg.Retrieve.RRFK, cfg.Retrieve.VectorWeight, log)
	fused, err := hybrid.Retrieve(ctx, *query, *topK, filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Hybrid retrieval failed: %v\n", err)
		os.Exit(1)
	}
	for _, r := range fused {
		printResult(r.Rank, r, r.FusedScore)
	}
}

func printResult(rank int, r domain.RetrievedChunk, score float64) {
	preview := r.Chunk.Text
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	preview = strings.ReplaceAll(preview, "\n", " ")

	fmt.Printf("%2d. %.4f  %s", rank, score, r.Filename)
	if r.Chunk.PageNumber > 0 {
		fmt.Printf(" p.%d", r.Chunk.PageNumber)
	}
	fmt.Printf("\n    %s\n", preview)
}

func newEmbedder(cfg *config.Config) (port.Embedder, error) {
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
