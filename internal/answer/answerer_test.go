package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gitaqa/internal/chunkstore"
)

// fakeSearcher returns canned search results.
type fakeSearcher struct {
	results []chunkstore.SearchResult
	err     error
	lastK   int
}

func (f *fakeSearcher) SimilaritySearch(_ context.Context, _ string, k int) ([]chunkstore.SearchResult, error) {
	f.lastK = k
	return f.results, f.err
}

// fakeGenerator records prompts and returns a fixed reply.
type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func gitaResults() []chunkstore.SearchResult {
	return []chunkstore.SearchResult{
		{
			ID:         chunkstore.ChunkID("The soul is eternal."),
			Text:       "The soul is eternal.",
			Metadata:   map[string]string{"source": "The Bhagavad Gita", "chunk_index": "4"},
			Similarity: 0.9,
		},
		{
			ID:         chunkstore.ChunkID("Action without attachment is true yoga."),
			Text:       "Action without attachment is true yoga.",
			Metadata:   map[string]string{"source": "The Bhagavad Gita", "chunk_index": "12"},
			Similarity: 0.7,
		},
	}
}

func TestAnswer_Grounded(t *testing.T) {
	ctx := context.Background()
	store := &fakeSearcher{results: gitaResults()}
	gen := &fakeGenerator{reply: "The soul never dies [1]."}

	a := New(store, gen, "The Bhagavad Gita")

	res, err := a.Answer(ctx, "what is the soul?")
	if err != nil {
		t.Fatalf("Answer() error: %v", err)
	}

	if res.Text != "The soul never dies [1]." {
		t.Errorf("Text = %q", res.Text)
	}
	if !res.Grounded {
		t.Error("Grounded = false for a retrieval-backed answer")
	}

	wantRefs := []string{"The Bhagavad Gita, chunk 4", "The Bhagavad Gita, chunk 12"}
	if len(res.References) != len(wantRefs) {
		t.Fatalf("got %d references, want %d", len(res.References), len(wantRefs))
	}
	for i, want := range wantRefs {
		if res.References[i] != want {
			t.Errorf("reference %d = %q, want %q", i, res.References[i], want)
		}
	}

	if len(gen.prompts) != 1 {
		t.Fatalf("made %d generation calls, want 1", len(gen.prompts))
	}
	prompt := gen.prompts[0]
	for _, passage := range []string{"The soul is eternal.", "Action without attachment is true yoga."} {
		if !strings.Contains(prompt, passage) {
			t.Errorf("prompt missing retrieved passage %q", passage)
		}
	}
	if !strings.Contains(prompt, "what is the soul?") {
		t.Error("prompt missing the question")
	}
}

func TestAnswer_EmptyStore(t *testing.T) {
	ctx := context.Background()
	store := &fakeSearcher{} // no results
	gen := &fakeGenerator{reply: "should not be used"}

	a := New(store, gen, "The Bhagavad Gita")

	res, err := a.Answer(ctx, "what is the soul?")
	if err != nil {
		t.Fatalf("Answer() error: %v", err)
	}

	if res.Text != NoInformationReply {
		t.Errorf("Text = %q, want NoInformationReply", res.Text)
	}
	if res.Grounded {
		t.Error("Grounded = true with no retrieval results")
	}
	if len(gen.prompts) != 0 {
		t.Errorf("made %d generation calls with no results, want 0", len(gen.prompts))
	}
}

func TestAnswer_TopK(t *testing.T) {
	ctx := context.Background()
	store := &fakeSearcher{results: gitaResults()}
	gen := &fakeGenerator{reply: "ok"}

	a := New(store, gen, "The Bhagavad Gita")
	a.SetTopK(7)

	if _, err := a.Answer(ctx, "q"); err != nil {
		t.Fatalf("Answer() error: %v", err)
	}
	if store.lastK != 7 {
		t.Errorf("search k = %d, want 7", store.lastK)
	}
}

func TestAnswer_ExplainMore(t *testing.T) {
	ctx := context.Background()
	store := &fakeSearcher{results: gitaResults()}
	gen := &fakeGenerator{reply: "a deeper answer"}

	a := New(store, gen, "The Bhagavad Gita")

	tests := []struct {
		name  string
		query string
	}{
		{"lower case", "explain more: the soul never dies"},
		{"mixed case", "Explain More: the soul never dies"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen.prompts = nil
			res, err := a.Answer(ctx, tt.query)
			if err != nil {
				t.Fatalf("Answer() error: %v", err)
			}
			if res.Text != "a deeper answer" {
				t.Errorf("Text = %q", res.Text)
			}
			if res.Grounded || len(res.References) != 0 {
				t.Error("elaboration result carries retrieval grounding")
			}
			if len(gen.prompts) != 1 {
				t.Fatalf("made %d generation calls, want 1", len(gen.prompts))
			}
			if !strings.Contains(gen.prompts[0], "the soul never dies") {
				t.Error("elaboration prompt missing the prior answer")
			}
			if !strings.Contains(gen.prompts[0], "elaborate") {
				t.Error("elaboration prompt missing elaboration instruction")
			}
		})
	}
}

func TestAnswer_SearchError(t *testing.T) {
	ctx := context.Background()
	store := &fakeSearcher{err: errors.New("store broken")}
	gen := &fakeGenerator{reply: "unused"}

	a := New(store, gen, "The Bhagavad Gita")

	if _, err := a.Answer(ctx, "q"); err == nil {
		t.Error("Answer() succeeded despite search failure")
	}
}

func TestAnswer_GenerateError(t *testing.T) {
	ctx := context.Background()
	store := &fakeSearcher{results: gitaResults()}
	gen := &fakeGenerator{err: errors.New("llm down")}

	a := New(store, gen, "The Bhagavad Gita")

	if _, err := a.Answer(ctx, "q"); err == nil {
		t.Error("Answer() succeeded despite generation failure")
	}
}

func TestReferenceLabel(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]string
		want     string
	}{
		{
			name:     "source and index",
			metadata: map[string]string{"source": "The Bhagavad Gita", "chunk_index": "3"},
			want:     "The Bhagavad Gita, chunk 3",
		},
		{
			name:     "missing index",
			metadata: map[string]string{"source": "The Bhagavad Gita"},
			want:     "The Bhagavad Gita",
		},
		{
			name:     "missing source falls back to corpus label",
			metadata: map[string]string{"chunk_index": "3"},
			want:     "Fallback Source, chunk 3",
		},
		{
			name:     "no metadata",
			metadata: nil,
			want:     "Fallback Source",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chunkstore.SearchResult{Metadata: tt.metadata}
			if got := referenceLabel("Fallback Source", r); got != tt.want {
				t.Errorf("referenceLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}
