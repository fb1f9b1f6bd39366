package chunkstore

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
)

// CosineSimilarity computes the cosine similarity between two vectors,
// a value in [-1, 1]. Degenerate inputs (zero vector, length mismatch,
// empty vectors) score 0 rather than NaN, so they sort behind every real
// match and never crash a search.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	denominator := float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB)))
	if denominator == 0 {
		return 0
	}

	return dot / denominator
}

// SimilaritySearch embeds the query once, scores every cataloged chunk
// against it, and returns at most k results ordered by descending
// similarity. Ties keep catalog (insertion) order. Chunk files referenced
// by the catalog but missing on disk are skipped rather than failing the
// whole search.
//
// An empty catalog returns immediately with no results and no embedding
// call. Every search re-reads every chunk file: cost is O(n) reads and
// O(n) similarity computations in the number of indexed chunks, a
// deliberate trade-off for a single-document corpus.
func (s *Store) SimilaritySearch(ctx context.Context, query string, k int) ([]SearchResult, error) {
	if k <= 0 {
		k = DefaultK
	}

	if len(s.index.Chunks) == 0 {
		return nil, nil
	}

	queryEmb, err := s.provider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results := make([]SearchResult, 0, len(s.index.Chunks))
	for _, entry := range s.index.Chunks {
		chunk, err := s.LoadChunk(entry.ID)
		if err != nil {
			if os.IsNotExist(err) {
				continue // indexed but not on disk, tolerate
			}
			return nil, fmt.Errorf("loading chunk %s: %w", entry.ID, err)
		}

		results = append(results, SearchResult{
			ID:         chunk.ID,
			Text:       chunk.Text,
			Metadata:   chunk.Metadata,
			Similarity: CosineSimilarity(queryEmb.Vector, chunk.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > k {
		results = results[:k]
	}

	return results, nil
}
