package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"clinrag/internal/adapter/analyzer"
	"clinrag/internal/adapter/cache"
	"clinrag/internal/adapter/chunker"
	"clinrag/internal/adapter/cleaner"
	"clinrag/internal/adapter/extractor"
	"clinrag/internal/adapter/fs"
	"clinrag/internal/usecase"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest guideline documents into the store",
	Long: `Ingest guideline documents from a corpus directory laid out as
<root>/<specialty>/<publisher>/<file>. Unchanged files are skipped;
changed files replace their previous chunks atomically.

Examples:
  clinrag ingest ./rag_data
  clinrag ingest              # uses ingest.data_dir from config`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	root := cfg.Ingest.DataDir
	if len(args) > 0 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("corpus directory does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("corpus path is not a directory: %s", root)
	}

	ctx := cmd.Context()

	st, err := newStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	embedder, err := newEmbedder()
	if err != nil {
		return err
	}

	var embedCache *cache.EmbedCache
	if cfg.Embedding.CachePath != "" {
		embedCache, err = cache.NewEmbedCache(cfg.Embedding.CachePath)
		if err != nil {
			return fmt.Errorf("failed to open embedding cache: %w", err)
		}
		defer embedCache.Close()
	}

	walker := fs.NewCorpusWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes)
	files, err := walker.Walk(root)
	if err != nil {
		return fmt.Errorf("failed to walk corpus: %w", err)
	}
	if len(files) == 0 {
		fmt.Println("No matching files found.")
		return nil
	}

	tokenizer := analyzer.NewTokenizer()
	ingest := usecase.NewIngestUseCase(
		extractor.NewPDFExtractor(log),
		cleaner.New(),
		chunker.NewWindowChunker(cfg.Ingest.ChunkTokens, cfg.Ingest.ChunkOverlap, tokenizer),
		embedder,
		embedCache,
		st,
		log,
	)

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Ingesting[reset]"),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	result, err := ingest.IngestCorpus(ctx, files, cfg.Ingest.Parallelism, func(fs.CorpusFile) {
		_ = bar.Add(1)
	})
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %d file(s), skipped %d unchanged, wrote %d chunk(s).\n",
		result.FilesIngested, result.FilesSkipped, result.ChunksWritten)
	for _, e := range result.Errors {
		fmt.Fprintln(os.Stderr, "Error:", e)
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%d file(s) failed", len(result.Errors))
	}
	return nil
}
