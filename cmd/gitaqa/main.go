// Package main provides the gitaqa CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// configPath is the configuration file to load.
var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gitaqa",
	Short: "Question answering over the Bhagavad Gita",
	Long: `gitaqa answers questions about the Bhagavad Gita using retrieval
over a local chunk store and the Gemini API for generation.

Run 'gitaqa ingest' once to build the chunk store from the source PDF,
then ask questions with 'gitaqa ask', 'gitaqa chat', or 'gitaqa serve'.
All commands output JSON by default for easy integration with other
tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(func() {
		// Missing .env is fine; keys may come from the environment.
		godotenv.Load()
	})

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default gitaqa.yml)")
	rootCmd.Version = Version
}
