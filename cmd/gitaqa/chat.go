package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gitaqa/internal/answer"
)

func init() {
	rootCmd.AddCommand(chatCmd)
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question-answering loop",
	Long: `Start an interactive loop reading questions from stdin.

Type 'explain more' to elaborate on the previous answer, or 'exit' to
quit. Errors answering one question do not end the session.`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := mustLoadConfig()
	ag := mustNewAgent(cfg)

	hist := openHistory(cfg)
	if hist != nil {
		defer hist.Close()
	}

	fmt.Println("Welcome! Ask me anything about the Bhagavad Gita.")
	for _, tool := range ag.Tools() {
		fmt.Printf("  %s: %s\n", tool.Name, tool.Description)
	}
	fmt.Println("Type 'explain more' to expand the last answer, 'exit' to quit.")

	var lastResponse string
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}

		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if strings.EqualFold(query, "exit") || strings.EqualFold(query, "quit") {
			fmt.Println("Goodbye!")
			break
		}

		if strings.EqualFold(query, "explain more") {
			if lastResponse == "" {
				fmt.Println("Nothing to elaborate on yet; ask a question first.")
				continue
			}
			query = answer.ExplainMorePrefix + " " + lastResponse
		}

		result, err := ag.Run(ctx, query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		recordQuery(hist, query, result)
		lastResponse = result.Response

		fmt.Printf("\n%s\n", result.Response)
		for _, ref := range result.References {
			fmt.Printf("  [%s]\n", ref)
		}
	}

	return scanner.Err()
}
