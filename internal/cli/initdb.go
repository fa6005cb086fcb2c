package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initdbCmd = &cobra.Command{
	Use:   "initdb",
	Short: "Create the database schema and indexes",
	Long: `Create the pgvector extension, the documents and chunks tables, the
HNSW vector index and the GIN lexical index. Safe to run repeatedly.`,
	RunE: runInitDB,
}

func init() {
	rootCmd.AddCommand(initdbCmd)
}

func runInitDB(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	st, err := newStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Println("Schema ready.")
	return nil
}
