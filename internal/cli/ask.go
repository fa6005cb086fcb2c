package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"clinrag/internal/port"
)

var (
	askQuery       string
	askSpecialty   string
	askPublisher   string
	askJSON        bool
	askSourcesOnly bool
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a question grounded in the ingested guidelines",
	Long: `Ask a question. Passages are retrieved with hybrid search, sent to a
model as numbered sources, and the answer's bracketed citations are
resolved back to the documents they came from.

Examples:
  clinrag ask -q "first-line treatment for community acquired pneumonia"
  clinrag ask -q "DOAC dosing in CKD" --specialty cardiology --json
  clinrag ask -q "sepsis bundles" --sources`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuery, "query", "q", "", "question to answer (required)")
	askCmd.Flags().StringVar(&askSpecialty, "specialty", "", "restrict retrieval to one specialty")
	askCmd.Flags().StringVar(&askPublisher, "publisher", "", "restrict retrieval to one publisher")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
	askCmd.Flags().BoolVar(&askSourcesOnly, "sources", false, "show retrieved passages without generating")
	askCmd.MarkFlagRequired("query")
}

func runAsk(cmd *cobra.Command, args []string) error {
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

	answerer, err := newAnswerUseCase(st, embedder)
	if err != nil {
		return err
	}

	filter := port.SearchFilter{Specialty: askSpecialty, Publisher: askPublisher}

	if askSourcesOnly {
		chunks, err := answerer.Sources(ctx, askQuery, filter)
		if err != nil {
			return err
		}
		if askJSON {
			return json.NewEncoder(os.Stdout).Encode(chunks)
		}
		for _, c := range chunks {
			fmt.Printf("[%d] %s", c.Rank, c.Filename)
			if c.Chunk.PageNumber > 0 {
				fmt.Printf(", page %d", c.Chunk.PageNumber)
			}
			fmt.Printf(" (score %.4f)\n%s\n\n", c.FusedScore, c.Chunk.Text)
		}
		return nil
	}

	answer, err := answerer.Answer(ctx, askQuery, filter)
	if err != nil {
		return err
	}

	if askJSON {
		return json.NewEncoder(os.Stdout).Encode(answer)
	}

	fmt.Println(answer.Text)
	fmt.Println()
	if answer.CitationDegraded {
		fmt.Println("Warning: the answer contains no valid citations; verify against the sources.")
	}
	if len(answer.Citations) > 0 {
		fmt.Println("Sources:")
		for _, c := range answer.Citations {
			fmt.Printf("  [%d] %s", c.SourceIndex, c.Filename)
			if c.PageNumber > 0 {
				fmt.Printf(", page %d", c.PageNumber)
			}
			if c.SectionTitle != "" {
				fmt.Printf(" (%s)", c.SectionTitle)
			}
			fmt.Println()
		}
	}
	if answer.TargetUsed != "" {
		fmt.Printf("Answered by: %s", answer.TargetUsed)
		if answer.FallbackUsed {
			fmt.Print(" (after fallback)")
		}
		fmt.Println()
	}
	return nil
}
