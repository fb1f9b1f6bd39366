// Package agent routes a query to one of several named tools and applies
// the answer-quality fallback policy on the result.
package agent

import (
	"context"
	"fmt"
	"strings"

	"gitaqa/internal/answer"
)

// Tool names reported in responses.
const (
	ToolCalculator = "Calculator"
	ToolGitaQA     = "GitaQA"
	ToolDirect     = "Direct"
)

// unablePhrases mark a soft failure: an answer that admits it cannot
// answer. Matching is case-insensitive substring.
var unablePhrases = []string{
	"i am unable to answer",
	"i don't know",
	"i cannot answer",
	"i do not have",
	"not available in",
	"not found in the bhagavad gita",
}

// Tool is a named capability the agent can route a query to.
type Tool struct {
	Name        string
	Description string
	Run         func(ctx context.Context, query string) (*answer.Result, error)
}

// Result is the agent's final output for one query.
type Result struct {
	Response   string
	Tool       string
	References []string
	IsFallback bool
}

// Agent selects a tool per query. A query that parses as an arithmetic
// expression goes to the calculator; everything else goes to retrieval.
type Agent struct {
	tools  []Tool
	llm    answer.Generator
	source string
}

// New creates an agent over the answering flow, with the direct generator
// used for the ungrounded fallback.
func New(ans *answer.Answerer, llm answer.Generator, source string) *Agent {
	return &Agent{
		llm:    llm,
		source: source,
		tools: []Tool{
			{
				Name:        ToolCalculator,
				Description: "For math and calculation tasks; input is a mathematical expression.",
				Run:         runCalculator,
			},
			{
				Name:        ToolGitaQA,
				Description: "For questions about " + source + ". Use this for most questions.",
				Run:         ans.Answer,
			},
		},
	}
}

// Tools returns the agent's tool set.
func (a *Agent) Tools() []Tool {
	return a.tools
}

// Route selects the tool for a query.
func (a *Agent) Route(query string) *Tool {
	if IsExpression(query) {
		return &a.tools[0]
	}
	return &a.tools[1]
}

// Run routes the query, executes the selected tool, and falls back to a
// direct context-free generation when the tool errors or its answer
// matches an inability phrase. Fallback results are marked as such. The
// fallback's own failure is a hard error.
func (a *Agent) Run(ctx context.Context, query string) (*Result, error) {
	tool := a.Route(query)

	res, err := tool.Run(ctx, query)
	if err == nil && !cannotAnswer(res.Text) {
		return &Result{
			Response:   res.Text,
			Tool:       tool.Name,
			References: res.References,
		}, nil
	}

	prompt := fmt.Sprintf(
		"With reference to %s, please answer the following question in 60-70 words: %s",
		a.source, query)

	text, ferr := a.llm.Generate(ctx, prompt)
	if ferr != nil {
		if err != nil {
			return nil, fmt.Errorf("fallback after tool error (%v): %w", err, ferr)
		}
		return nil, fmt.Errorf("fallback generation: %w", ferr)
	}

	return &Result{
		Response:   text,
		Tool:       ToolDirect,
		IsFallback: true,
	}, nil
}

// runCalculator evaluates an arithmetic expression query.
func runCalculator(_ context.Context, query string) (*answer.Result, error) {
	v, err := Evaluate(strings.TrimSpace(query))
	if err != nil {
		return nil, fmt.Errorf("calculation error: %w", err)
	}
	return &answer.Result{Text: formatNumber(v)}, nil
}

// cannotAnswer reports whether the text matches an inability phrase.
func cannotAnswer(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range unablePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
