package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gitaqa/internal/agent"
	"gitaqa/internal/answer"
	"gitaqa/internal/chunkstore"
)

type fakeSearcher struct {
	results []chunkstore.SearchResult
}

func (f *fakeSearcher) SimilaritySearch(_ context.Context, _ string, _ int) ([]chunkstore.SearchResult, error) {
	return f.results, nil
}

type fakeGenerator struct {
	reply string
}

func (f *fakeGenerator) Generate(_ context.Context, _ string) (string, error) {
	return f.reply, nil
}

func newTestHandler(t *testing.T, results []chunkstore.SearchResult, reply string) http.Handler {
	t.Helper()
	gen := &fakeGenerator{reply: reply}
	ans := answer.New(&fakeSearcher{results: results}, gen, "The Bhagavad Gita")
	ag := agent.New(ans, gen, "The Bhagavad Gita")
	return New(ag, nil, nil).Handler()
}

func postQuery(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleQuery_Calculator(t *testing.T) {
	h := newTestHandler(t, nil, "unused")

	rec := postQuery(t, h, `{"query": "2 + 2"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Response != "4" {
		t.Errorf("response = %q, want %q", resp.Response, "4")
	}
	if len(resp.ToolsUsed) != 1 || resp.ToolsUsed[0].Name != agent.ToolCalculator {
		t.Errorf("tools used = %+v, want Calculator", resp.ToolsUsed)
	}
	if resp.IsFallback {
		t.Error("is_fallback = true for arithmetic")
	}
	if resp.References == nil {
		t.Error("references field missing, want empty array")
	}
}

func TestHandleQuery_Grounded(t *testing.T) {
	results := []chunkstore.SearchResult{{
		ID:         chunkstore.ChunkID("The soul is eternal."),
		Text:       "The soul is eternal.",
		Metadata:   map[string]string{"source": "The Bhagavad Gita", "chunk_index": "2"},
		Similarity: 0.9,
	}}
	h := newTestHandler(t, results, "The soul never dies [1].")

	rec := postQuery(t, h, `{"query": "what is the soul?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Response != "The soul never dies [1]." {
		t.Errorf("response = %q", resp.Response)
	}
	if len(resp.References) != 1 || resp.References[0] != "The Bhagavad Gita, chunk 2" {
		t.Errorf("references = %v", resp.References)
	}
	if len(resp.ToolsUsed) != 1 || resp.ToolsUsed[0].Name != agent.ToolGitaQA {
		t.Errorf("tools used = %+v, want GitaQA", resp.ToolsUsed)
	}
	if resp.ToolsUsed[0].Input != "what is the soul?" {
		t.Errorf("tool input = %q, want the query", resp.ToolsUsed[0].Input)
	}
}

func TestHandleQuery_BadRequests(t *testing.T) {
	h := newTestHandler(t, nil, "unused")

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"malformed json", `{"query":`},
		{"missing query", `{}`},
		{"blank query", `{"query": "   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postQuery(t, h, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decoding error response: %v", err)
			}
			if resp.Error == "" {
				t.Error("error response has no message")
			}
		})
	}
}

func TestHandleQuery_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(t, nil, "unused")

	req := httptest.NewRequest(http.MethodGet, "/query", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	h := newTestHandler(t, nil, "unused")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q, want application/json", ct)
	}
}

func TestHandleQuery_Fallback(t *testing.T) {
	// The generator admits inability, so the agent retries without
	// retrieval context and the same scripted reply comes back flagged.
	results := []chunkstore.SearchResult{{
		ID:       chunkstore.ChunkID("text"),
		Text:     "text",
		Metadata: map[string]string{"source": "The Bhagavad Gita", "chunk_index": "0"},
	}}
	h := newTestHandler(t, results, "I am unable to answer this question.")

	rec := postQuery(t, h, `{"query": "what is dharma?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.IsFallback {
		t.Error("is_fallback = false, want true")
	}
	if len(resp.ToolsUsed) != 1 || resp.ToolsUsed[0].Name != agent.ToolDirect {
		t.Errorf("tools used = %+v, want Direct", resp.ToolsUsed)
	}
	if resp.ToolsUsed[0].Input != "Fallback mode - direct generation" {
		t.Errorf("tool input = %q", resp.ToolsUsed[0].Input)
	}
}
