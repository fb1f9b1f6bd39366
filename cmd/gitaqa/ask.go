package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(askCmd)
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question",
	Long: `Ask one question and print the answer. Arithmetic expressions are
computed directly; everything else is answered from the chunk store
with the Gemini API.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := mustLoadConfig()
	ag := mustNewAgent(cfg)

	hist := openHistory(cfg)
	if hist != nil {
		defer hist.Close()
	}

	query := strings.Join(args, " ")
	result, err := ag.Run(ctx, query)
	if err != nil {
		exitWithError(ExitError, "answering: %v", err)
	}

	recordQuery(hist, query, result)

	if humanOutput {
		fmt.Println(result.Response)
		if len(result.References) > 0 {
			fmt.Println("\nReferences:")
			for _, ref := range result.References {
				fmt.Printf("  - %s\n", ref)
			}
		}
	} else {
		outputJSON(AnswerResponse{
			Response:   result.Response,
			Tool:       result.Tool,
			References: result.References,
			IsFallback: result.IsFallback,
		})
	}

	return nil
}
