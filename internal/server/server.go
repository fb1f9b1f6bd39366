// Package server exposes the query endpoint over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"gitaqa/internal/agent"
	"gitaqa/internal/history"
)

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Query string `json:"query"`
}

// ToolUse describes one tool invocation made for a query.
type ToolUse struct {
	Name  string `json:"name"`
	Input string `json:"input"`
}

// QueryResponse is the success body of POST /query.
type QueryResponse struct {
	Response   string    `json:"response"`
	References []string  `json:"references"`
	ToolsUsed  []ToolUse `json:"tools_used"`
	IsFallback bool      `json:"is_fallback,omitempty"`
}

// ErrorResponse is the failure body of any endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server handles query requests. The agent and history handle are built
// once at startup and shared by every request.
type Server struct {
	agent   *agent.Agent
	history *history.DB // optional, nil disables recording
	logger  *log.Logger
}

// New creates a server. hist may be nil to disable query recording.
func New(ag *agent.Agent, hist *history.DB, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{agent: ag, history: hist, logger: logger}
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/query", s.handleQuery)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "no query provided"})
		return
	}

	s.logger.Printf("query: %s", req.Query)

	result, err := s.agent.Run(r.Context(), req.Query)
	if err != nil {
		s.logger.Printf("query failed: %v", err)
		status := http.StatusInternalServerError
		if errors.Is(err, r.Context().Err()) {
			status = http.StatusRequestTimeout
		}
		writeJSON(w, status, ErrorResponse{Error: err.Error()})
		return
	}

	s.record(req.Query, result)

	toolInput := req.Query
	if result.IsFallback {
		toolInput = "Fallback mode - direct generation"
	}

	references := result.References
	if references == nil {
		references = []string{}
	}

	writeJSON(w, http.StatusOK, QueryResponse{
		Response:   result.Response,
		References: references,
		ToolsUsed:  []ToolUse{{Name: result.Tool, Input: toolInput}},
		IsFallback: result.IsFallback,
	})
}

// record logs the query to history, best effort.
func (s *Server) record(query string, result *agent.Result) {
	if s.history == nil {
		return
	}
	err := s.history.Record(history.Entry{
		Query:    query,
		Tool:     result.Tool,
		Response: result.Response,
		Fallback: result.IsFallback,
	})
	if err != nil {
		s.logger.Printf("recording history: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encoding response: %v", err)
	}
}
