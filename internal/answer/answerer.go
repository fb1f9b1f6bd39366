// Package answer bridges the chunk store to the language model: it
// retrieves grounding context for a question and asks the model for a
// cited answer.
package answer

import (
	"context"
	"fmt"
	"strings"

	"gitaqa/internal/chunkstore"
)

const (
	// DefaultTopK is the number of chunks retrieved per question.
	DefaultTopK = 3

	// ExplainMorePrefix marks an elaboration request. The rest of the
	// query is treated as a previously returned answer, not a question.
	ExplainMorePrefix = "explain more:"

	// NoInformationReply is returned when retrieval finds nothing. The
	// language model is not consulted in that case.
	NoInformationReply = "I couldn't find any relevant information in the Bhagavad Gita to answer this question."
)

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Result is an answer with its supporting references.
type Result struct {
	Text       string
	References []string
	Grounded   bool // true when the answer was built from retrieved chunks
}

// Answerer runs the retrieval-augmented answering flow.
type Answerer struct {
	store  chunkstore.Searcher
	llm    Generator
	source string
	topK   int
}

// New creates an Answerer over the given store and generator. The source
// label names the corpus in prompts and references.
func New(store chunkstore.Searcher, llm Generator, source string) *Answerer {
	return &Answerer{store: store, llm: llm, source: source, topK: DefaultTopK}
}

// SetTopK overrides the number of chunks retrieved per question.
func (a *Answerer) SetTopK(k int) {
	if k > 0 {
		a.topK = k
	}
}

// Answer handles one query. Queries starting with "explain more:" (any
// case) skip retrieval and elaborate on the prior answer text that
// follows the marker; elaboration has no access to the original
// retrieval context. All other queries are answered from the top-k
// retrieved chunks, or with NoInformationReply when the store is empty.
func (a *Answerer) Answer(ctx context.Context, query string) (*Result, error) {
	if prior, ok := cutExplainMore(query); ok {
		return a.elaborate(ctx, prior)
	}

	results, err := a.store.SimilaritySearch(ctx, query, a.topK)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}

	if len(results) == 0 {
		return &Result{Text: NoInformationReply}, nil
	}

	text, err := a.llm.Generate(ctx, groundedPrompt(a.source, query, results))
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	return &Result{
		Text:       text,
		References: references(a.source, results),
		Grounded:   true,
	}, nil
}

// elaborate asks the model to expand on a previously returned answer.
func (a *Answerer) elaborate(ctx context.Context, prior string) (*Result, error) {
	prompt := fmt.Sprintf(
		"Please elaborate on the following information from %s in about 50-60 words, providing deeper insights: %s",
		a.source, prior)

	text, err := a.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("elaborating: %w", err)
	}

	return &Result{Text: text}, nil
}

// cutExplainMore strips the elaboration marker, case-insensitively.
func cutExplainMore(query string) (string, bool) {
	if len(query) < len(ExplainMorePrefix) {
		return "", false
	}
	if !strings.EqualFold(query[:len(ExplainMorePrefix)], ExplainMorePrefix) {
		return "", false
	}
	return strings.TrimSpace(query[len(ExplainMorePrefix):]), true
}

// groundedPrompt assembles the retrieval context and the question.
func groundedPrompt(source, query string, results []chunkstore.SearchResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are answering questions about %s using only the passages below.\n\n", source)
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] (%s)\n%s\n\n", i+1, referenceLabel(source, r), r.Text)
	}
	fmt.Fprintf(&b, `Question: %s

Answer in 60-70 words using only the passages above. Cite the passages you
used by their [number]. If the passages do not contain the answer, say so.`, query)

	return b.String()
}

// references builds one human-readable provenance label per result.
func references(source string, results []chunkstore.SearchResult) []string {
	refs := make([]string, len(results))
	for i, r := range results {
		refs[i] = referenceLabel(source, r)
	}
	return refs
}

// referenceLabel formats a result's provenance from its metadata, e.g.
// "The Bhagavad Gita, chunk 12".
func referenceLabel(source string, r chunkstore.SearchResult) string {
	label := source
	if s, ok := r.Metadata["source"]; ok && s != "" {
		label = s
	}
	if idx, ok := r.Metadata["chunk_index"]; ok && idx != "" {
		return fmt.Sprintf("%s, chunk %s", label, idx)
	}
	return label
}
