package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gitaqa/internal/chunkstore"
	"gitaqa/internal/ingest"
	"gitaqa/internal/pdf"
)

var (
	ingestForce      bool
	ingestNoProgress bool
)

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().BoolVar(&ingestForce, "force", false, "Rebuild the chunk store even if it exists")
	ingestCmd.Flags().BoolVar(&ingestNoProgress, "no-progress", false, "Suppress progress output")
}

// IngestResult is the response for the ingest command.
type IngestResult struct {
	Status          string  `json:"status"`
	ChunksAdded     int     `json:"chunks_added"`
	Characters      int     `json:"characters"`
	Pages           int     `json:"pages"`
	DurationSeconds float64 `json:"duration_seconds"`
	Model           string  `json:"model"`
	IndexSizeBytes  int64   `json:"index_size_bytes"`
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the chunk store from the source PDF",
	Long: `Extract text from the source PDF, split it into overlapping chunks,
embed each chunk, and write the chunk store to disk.

Requires Ollama to be running with the embedding model available.
Run 'ollama pull all-minilm:l6-v2' to download the model.

Ingestion is skipped when a chunk store already exists; pass --force to
rebuild it.`,
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := mustLoadConfig()

	if err := cfg.ValidatePDFPath(); err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	if chunkstore.Exists(cfg.StoreDir) && !ingestForce {
		if humanOutput {
			fmt.Printf("Chunk store already exists at %s; use --force to rebuild.\n", cfg.StoreDir)
		} else {
			outputJSON(IngestResult{Status: "exists"})
		}
		return nil
	}

	provider := newProvider(cfg)
	if err := provider.IsAvailable(ctx); err != nil {
		exitWithError(ExitDataError, "Ollama is not running\n\nStart Ollama with 'ollama serve' or install from https://ollama.ai")
	}

	hasModel, err := provider.HasModel(ctx)
	if err != nil {
		exitWithError(ExitError, "checking model availability: %v", err)
	}
	if !hasModel {
		exitWithError(ExitModelNotFound, "Embedding model '%s' not found\n\nRun 'ollama pull %s' to download it.", provider.ModelName(), provider.ModelName())
	}

	text, err := pdf.ExtractText(cfg.PDFPath)
	if err != nil {
		exitWithError(ExitDataError, "extracting PDF text: %v", err)
	}
	pages, err := pdf.PageCount(cfg.PDFPath)
	if err != nil {
		pages = 0 // Non-fatal
	}

	store := mustOpenStore(cfg, provider)

	pipeline := ingest.New(store, cfg.ChunkSize, cfg.ChunkOverlap)
	if !ingestNoProgress && humanOutput {
		pipeline.SetProgressReporter(ingest.ProgressFunc(func(current, total int) {
			printProgress(current, total)
		}))
		fmt.Fprintf(os.Stderr, "Ingesting %s...\n", cfg.PDFPath)
	}

	stats, err := pipeline.Run(ctx, text)
	if err != nil {
		exitWithError(ExitError, "ingesting document: %v", err)
	}

	indexSize, err := store.IndexSize()
	if err != nil {
		indexSize = 0 // Non-fatal
	}

	if humanOutput && !ingestNoProgress {
		fmt.Fprintf(os.Stderr, "\r%s\r", "                                                  ")
	}

	if humanOutput {
		fmt.Printf("\nIngestion complete:\n")
		fmt.Printf("  Chunks added: %d\n", stats.ChunksAdded)
		fmt.Printf("  Characters: %d\n", stats.Characters)
		fmt.Printf("  Pages: %d\n", pages)
		fmt.Printf("  Time elapsed: %s\n", formatDuration(stats.Duration))
		fmt.Printf("  Index size: %s\n", formatBytes(indexSize))
		fmt.Printf("  Model: %s\n", provider.ModelName())
	} else {
		outputJSON(IngestResult{
			Status:          "complete",
			ChunksAdded:     stats.ChunksAdded,
			Characters:      stats.Characters,
			Pages:           pages,
			DurationSeconds: stats.Duration.Seconds(),
			Model:           provider.ModelName(),
			IndexSizeBytes:  indexSize,
		})
	}

	return nil
}
