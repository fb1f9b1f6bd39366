package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(infoCmd)
}

// InfoResult is the response for the info command.
type InfoResult struct {
	Status         string `json:"status"`
	StoreDir       string `json:"store_dir"`
	Source         string `json:"source"`
	ChunkCount     int    `json:"chunk_count"`
	IndexSizeBytes int64  `json:"index_size_bytes"`
	EmbeddingModel string `json:"embedding_model"`
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show chunk store status",
	Long:  `Show the state of the chunk store: location, source, and chunk count.`,
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	mustRequireIndex(cfg)

	provider := newProvider(cfg)
	store := mustOpenStore(cfg, provider)

	indexSize, err := store.IndexSize()
	if err != nil {
		indexSize = 0 // Non-fatal
	}

	result := InfoResult{
		Status:         "ready",
		StoreDir:       store.Dir(),
		Source:         store.Source(),
		ChunkCount:     store.Count(),
		IndexSizeBytes: indexSize,
		EmbeddingModel: provider.ModelName(),
	}

	if humanOutput {
		fmt.Printf("Chunk Store Status: %s\n\n", result.Status)
		fmt.Printf("  Location: %s\n", result.StoreDir)
		fmt.Printf("  Source: %s\n", result.Source)
		fmt.Printf("  Chunks: %d\n", result.ChunkCount)
		fmt.Printf("  Index size: %s\n", formatBytes(result.IndexSizeBytes))
		fmt.Printf("  Embedding model: %s\n", result.EmbeddingModel)
	} else {
		outputJSON(result)
	}

	return nil
}
