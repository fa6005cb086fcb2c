package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"clinrag/config"
	"clinrag/internal/logger"
)

var (
	cfgFile string
	cfg     *config.Config
	log     *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "clinrag",
	Short: "Clinical guideline RAG - ingest guidelines and answer questions with citations",
	Long: `clinrag ingests clinical guideline documents into a Postgres vector store,
retrieves passages with hybrid (vector + keyword) search, and generates
answers grounded in the retrieved passages with bracketed citations.

Example usage:
  clinrag initdb                          # Create schema and indexes
  clinrag ingest ./rag_data               # Ingest the guideline corpus
  clinrag ask -q "sepsis fluid targets"   # Ask a grounded question
  clinrag stats                           # Show corpus counts`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Secrets live in .env during development; absence is fine.
		_ = godotenv.Load()

		var err error
		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			wd, wderr := os.Getwd()
			if wderr != nil {
				return fmt.Errorf("failed to get working directory: %w", wderr)
			}
			cfg, err = config.LoadFromDir(wd)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		log, err = logger.New(cfg.Logging.Mode)
		if err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./clinrag.yaml)")
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}
