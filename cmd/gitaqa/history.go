package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"gitaqa/internal/history"
)

var historyLimit int

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of entries")
}

// HistoryEntry is one recorded query in history output.
type HistoryEntry struct {
	ID       int64  `json:"id"`
	AskedAt  string `json:"asked_at"`
	Query    string `json:"query"`
	Tool     string `json:"tool"`
	Response string `json:"response"`
	Fallback bool   `json:"fallback,omitempty"`
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently answered queries",
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	db, err := history.Open(cfg.HistoryPath)
	if err != nil {
		exitWithError(ExitError, "opening history: %v", err)
	}
	defer db.Close()

	entries, err := db.Recent(historyLimit)
	if err != nil {
		exitWithError(ExitError, "reading history: %v", err)
	}

	out := make([]HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = HistoryEntry{
			ID:       e.ID,
			AskedAt:  e.AskedAt.Format(time.RFC3339),
			Query:    e.Query,
			Tool:     e.Tool,
			Response: e.Response,
			Fallback: e.Fallback,
		}
	}

	if humanOutput {
		if len(out) == 0 {
			fmt.Println("No history yet.")
			return nil
		}
		for _, e := range out {
			fmt.Printf("%s [%s]\n", e.AskedAt, e.Tool)
			fmt.Printf("  Q: %s\n", e.Query)
			fmt.Printf("  A: %s\n\n", truncateString(e.Response, 120))
		}
	} else {
		outputJSON(out)
	}

	return nil
}
