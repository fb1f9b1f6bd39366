package chunkstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gitaqa/internal/embedding"
)

// Errors returned by store operations.
var (
	ErrIndexNotFound  = errors.New("chunk index not found")
	ErrMetadataLength = errors.New("metadata length does not match chunk count")
)

const (
	// IndexFileName is the name of the catalog file inside the store directory.
	IndexFileName = "index.json"

	// ChunksDirName is the subdirectory holding one JSON file per chunk.
	ChunksDirName = "chunks"

	// DefaultK is the result count for similarity search when the caller
	// does not specify one.
	DefaultK = 3
)

// Store is the sole owner of a chunk corpus on disk. It is safe for a
// single writer only: ingestion is expected to run once, offline, before
// any concurrent read traffic.
type Store struct {
	dir      string
	provider embedding.Provider
	index    *Index

	// progress, if set, is called after each chunk is embedded and written
	// during AddChunks.
	progress func(done, total int)
}

// IndexPath returns the path to the catalog file for a store directory.
func IndexPath(dir string) string {
	return filepath.Join(dir, IndexFileName)
}

// ChunkPath returns the path to the chunk file for the given id.
func ChunkPath(dir, id string) string {
	return filepath.Join(dir, ChunksDirName, id+".json")
}

// Exists reports whether a store directory already has a catalog.
func Exists(dir string) bool {
	_, err := os.Stat(IndexPath(dir))
	return err == nil
}

// Open opens the store at dir, creating the directory tree and an empty
// catalog in memory if none exists yet. The source label is recorded in
// fresh catalogs; existing catalogs keep theirs.
func Open(dir, source string, provider embedding.Provider) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, ChunksDirName), 0755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	idx, err := loadIndex(dir)
	if err != nil {
		if !errors.Is(err, ErrIndexNotFound) {
			return nil, err
		}
		idx = &Index{
			Chunks:   []IndexEntry{},
			Metadata: IndexMetadata{Source: source},
		}
	}

	return &Store{dir: dir, provider: provider, index: idx}, nil
}

// Dir returns the store's directory.
func (s *Store) Dir() string {
	return s.dir
}

// Source returns the corpus provenance label.
func (s *Store) Source() string {
	return s.index.Metadata.Source
}

// Count returns the number of catalog entries.
func (s *Store) Count() int {
	return len(s.index.Chunks)
}

// SetProgress registers a callback invoked after each chunk is persisted
// during AddChunks. Pass nil to disable.
func (s *Store) SetProgress(fn func(done, total int)) {
	s.progress = fn
}

// AddChunks embeds and persists each text, then rewrites the catalog once
// for the whole batch. If metadata is nil every chunk gets a default
// mapping carrying only the source label; otherwise it must be the same
// length as texts. Entries are keyed by chunk id: re-adding identical text
// overwrites the chunk file and updates the existing catalog entry in
// place rather than appending a duplicate.
func (s *Store) AddChunks(ctx context.Context, texts []string, metadata []map[string]string) error {
	if metadata != nil && len(metadata) != len(texts) {
		return fmt.Errorf("%w: got %d metadata for %d chunks", ErrMetadataLength, len(metadata), len(texts))
	}

	for i, text := range texts {
		meta := map[string]string{"source": s.index.Metadata.Source}
		if metadata != nil {
			meta = metadata[i]
		}

		id := ChunkID(text)
		emb, err := s.provider.Embed(ctx, text)
		if err != nil {
			return fmt.Errorf("embedding chunk %d: %w", i, err)
		}

		chunk := Chunk{ID: id, Text: text, Embedding: emb.Vector, Metadata: meta}
		if err := s.writeChunk(chunk); err != nil {
			return fmt.Errorf("writing chunk %s: %w", id, err)
		}

		s.upsertEntry(IndexEntry{ID: id, Metadata: meta})

		if s.progress != nil {
			s.progress(i+1, len(texts))
		}
	}

	s.index.Metadata.ChunkCount = len(s.index.Chunks)
	if err := s.saveIndex(); err != nil {
		return fmt.Errorf("saving index: %w", err)
	}

	return nil
}

// LoadChunk reads the full chunk record for an id from disk.
func (s *Store) LoadChunk(id string) (*Chunk, error) {
	data, err := os.ReadFile(ChunkPath(s.dir, id))
	if err != nil {
		return nil, err
	}

	var chunk Chunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return nil, fmt.Errorf("parsing chunk %s: %w", id, err)
	}

	return &chunk, nil
}

// IndexSize returns the size of the catalog file in bytes.
func (s *Store) IndexSize() (int64, error) {
	info, err := os.Stat(IndexPath(s.dir))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrIndexNotFound
		}
		return 0, err
	}
	return info.Size(), nil
}

// upsertEntry replaces the catalog entry with the same id in place, or
// appends when the id is new. Insertion order is preserved for existing
// entries so re-ingestion does not reorder the catalog.
func (s *Store) upsertEntry(entry IndexEntry) {
	for i := range s.index.Chunks {
		if s.index.Chunks[i].ID == entry.ID {
			s.index.Chunks[i] = entry
			return
		}
	}
	s.index.Chunks = append(s.index.Chunks, entry)
}

// writeChunk persists one chunk record keyed by its id.
func (s *Store) writeChunk(chunk Chunk) error {
	data, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("encoding chunk: %w", err)
	}
	return os.WriteFile(ChunkPath(s.dir, chunk.ID), data, 0644)
}

// saveIndex rewrites the catalog in full. Write to a temp file first, then
// rename for atomicity.
func (s *Store) saveIndex() error {
	data, err := json.MarshalIndent(s.index, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}

	indexPath := IndexPath(s.dir)
	tempPath := indexPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("writing temp index: %w", err)
	}

	if err := os.Rename(tempPath, indexPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming temp index: %w", err)
	}

	return nil
}

// loadIndex reads and parses the catalog file.
func loadIndex(dir string) (*Index, error) {
	data, err := os.ReadFile(IndexPath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrIndexNotFound
		}
		return nil, fmt.Errorf("reading index: %w", err)
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parsing index: %w", err)
	}

	return &idx, nil
}
