package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gitaqa/internal/chunkstore"
)

var searchLimit int

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchLimit, "limit", chunkstore.DefaultK, "Maximum number of results")
}

// ChunkSearchResult represents one chunk in search results.
type ChunkSearchResult struct {
	ID         string  `json:"id"`
	Similarity float32 `json:"similarity"`
	Source     string  `json:"source,omitempty"`
	ChunkIndex string  `json:"chunk_index,omitempty"`
	Text       string  `json:"text"`
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the chunk store by semantic similarity",
	Long: `Search the chunk store for chunks similar to the query and print
them ranked by cosine similarity. This is the raw retrieval step of
question answering, useful for inspecting what context a question
would be answered from.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := mustLoadConfig()
	mustRequireIndex(cfg)

	store := mustOpenStore(cfg, newProvider(cfg))

	query := strings.Join(args, " ")
	results, err := store.SimilaritySearch(ctx, query, searchLimit)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	out := make([]ChunkSearchResult, len(results))
	for i, r := range results {
		out[i] = ChunkSearchResult{
			ID:         r.ID,
			Similarity: r.Similarity,
			Source:     r.Metadata["source"],
			ChunkIndex: r.Metadata["chunk_index"],
			Text:       r.Text,
		}
	}

	if humanOutput {
		if len(out) == 0 {
			fmt.Println("No results.")
			return nil
		}
		for i, r := range out {
			fmt.Printf("%d. [%.2f] chunk %s\n", i+1, r.Similarity, r.ChunkIndex)
			fmt.Printf("   %s\n\n", truncateString(strings.ReplaceAll(r.Text, "\n", " "), 120))
		}
	} else {
		outputJSON(out)
	}

	return nil
}
