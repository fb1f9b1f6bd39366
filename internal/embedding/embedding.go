// Package embedding provides vector embedding generation for text.
package embedding

import "context"

// Embedding is a fixed-length numeric vector representing the semantic
// content of a piece of text.
type Embedding struct {
	Vector []float32 // e.g. 384 dimensions for all-minilm
}

// Dimensions returns the dimensionality of the embedding.
func (e Embedding) Dimensions() int {
	return len(e.Vector)
}

// Provider generates embeddings from text. For a fixed model, output is
// deterministic for identical input.
type Provider interface {
	// Embed generates an embedding for the given text.
	Embed(ctx context.Context, text string) (Embedding, error)

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Dimensions returns the expected vector dimensions.
	Dimensions() int
}
