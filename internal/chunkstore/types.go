// Package chunkstore owns the persisted chunk corpus: content-addressed
// chunk records, a corpus-level catalog, and exhaustive cosine-similarity
// search over the stored embeddings.
package chunkstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Chunk is the full record for one unit of retrievable text. Records are
// created once at ingestion and never updated.
type Chunk struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	Embedding []float32         `json:"embedding"`
	Metadata  map[string]string `json:"metadata"`
}

// IndexEntry is one catalog entry: a chunk id plus its metadata. The
// catalog never carries embeddings; those live only in per-chunk files.
type IndexEntry struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata"`
}

// IndexMetadata describes the corpus as a whole. ChunkCount is recomputed
// from the entry list on every save, never hand-maintained.
type IndexMetadata struct {
	ChunkCount int    `json:"chunk_count"`
	Source     string `json:"source"`
}

// Index is the corpus-level catalog of chunks, in ingestion order.
type Index struct {
	Chunks   []IndexEntry  `json:"chunks"`
	Metadata IndexMetadata `json:"metadata"`
}

// SearchResult is one similarity-search hit.
type SearchResult struct {
	ID         string            `json:"id"`
	Text       string            `json:"text"`
	Metadata   map[string]string `json:"metadata"`
	Similarity float32           `json:"similarity"`
}

// Searcher is the read side of the store. The linear-scan Store satisfies
// it; an approximate-nearest-neighbor index could be substituted without
// touching ingestion or answering code.
type Searcher interface {
	SimilaritySearch(ctx context.Context, query string, k int) ([]SearchResult, error)
}

// ChunkID derives a chunk's identity from its exact text bytes. Two chunks
// with byte-identical text always share the same id, which makes
// re-ingesting the same document idempotent at the chunk level.
func ChunkID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
