// Package ingest converts raw document text into indexed chunks.
package ingest

import (
	"context"
	"strconv"
	"time"

	"gitaqa/internal/chunkstore"
	"gitaqa/internal/splitter"
)

// ProgressReporter receives progress updates during ingestion.
type ProgressReporter interface {
	// OnProgress is called with the current progress.
	OnProgress(current, total int)
}

// ProgressFunc is a function adapter for ProgressReporter.
type ProgressFunc func(current, total int)

// OnProgress implements ProgressReporter.
func (f ProgressFunc) OnProgress(current, total int) {
	f(current, total)
}

// Stats contains statistics from an ingestion run.
type Stats struct {
	ChunksAdded int           `json:"chunks_added"`
	Characters  int           `json:"characters"`
	Duration    time.Duration `json:"duration"`
}

// Pipeline splits document text into chunks and populates the store.
// Splitting is deterministic, so re-running the pipeline over the same
// text with the same configuration produces a catalog with identical ids,
// count, and per-entry metadata.
type Pipeline struct {
	store        *chunkstore.Store
	chunkSize    int
	chunkOverlap int
	progress     ProgressReporter
}

// New creates a pipeline writing into the given store.
func New(store *chunkstore.Store, chunkSize, chunkOverlap int) *Pipeline {
	return &Pipeline{
		store:        store,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// SetProgressReporter sets the progress reporter for the pipeline.
func (p *Pipeline) SetProgressReporter(reporter ProgressReporter) {
	p.progress = reporter
}

// Run splits text, stamps each chunk with its ordinal position, and hands
// the whole batch to the store in a single AddChunks call, so the catalog
// is rewritten once at the end rather than once per chunk. A crash
// mid-run can leave chunk files on disk that are not yet cataloged; such
// orphans are invisible to search and are re-created by the next run.
func (p *Pipeline) Run(ctx context.Context, text string) (*Stats, error) {
	start := time.Now()

	chunks := splitter.Split(text, p.chunkSize, p.chunkOverlap)

	metadata := make([]map[string]string, len(chunks))
	for i := range chunks {
		metadata[i] = map[string]string{
			"source":      p.store.Source(),
			"chunk_index": strconv.Itoa(i),
		}
	}

	if p.progress != nil {
		p.store.SetProgress(func(done, total int) {
			p.progress.OnProgress(done, total)
		})
		defer p.store.SetProgress(nil)
	}

	if err := p.store.AddChunks(ctx, chunks, metadata); err != nil {
		return nil, err
	}

	return &Stats{
		ChunksAdded: len(chunks),
		Characters:  len(text),
		Duration:    time.Since(start),
	}, nil
}
