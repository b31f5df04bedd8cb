package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

var (
	searchLimit     int
	searchThreshold float64
	searchDocument  string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Embeds the query and returns the most similar document chunks from the
vector index. No answer is generated; use "chat send" for that.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultMaxSources, "maximum number of results")
	searchCmd.Flags().Float64VarP(&searchThreshold, "threshold", "t", 0, "minimum similarity score (0-1)")
	searchCmd.Flags().StringVarP(&searchDocument, "document", "d", "", "restrict to one document id")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	hits, err := retrievalService.Retrieve(cmd.Context(), args[0], searchLimit, searchThreshold, searchDocument)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if jsonFlag {
		return printJSON(cmd, hits)
	}
	return outputSearchTable(cmd, hits)
}

func outputSearchTable(cmd *cobra.Command, hits []domain.SearchHit) error {
	if len(hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range hits {
		p := &hits[i].Payload
		// Format: [N] Filename #chunk (Score)
		cmd.Printf("  [%d] %s #%d (%.2f)\n", i+1, p.Filename, p.ChunkIndex, hits[i].Score)
		cmd.Printf("      Document: %s\n", p.DocumentID)
		cmd.Printf("      %s\n", domain.Snippet(p.Text, domain.SourceSnippetLength))
		cmd.Println()
	}
	return nil
}
