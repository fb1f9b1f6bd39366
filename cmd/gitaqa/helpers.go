package main

import (
	"errors"
	"fmt"
	"os"

	"gitaqa/internal/agent"
	"gitaqa/internal/answer"
	"gitaqa/internal/chunkstore"
	"gitaqa/internal/config"
	"gitaqa/internal/embedding"
	"gitaqa/internal/history"
	"gitaqa/internal/llm"
)

// mustLoadConfig loads the configuration file, or exits on a parse error.
func mustLoadConfig() *config.Config {
	path := configPath
	if path == "" {
		path = config.DefaultFile
	}
	cfg, err := config.Load(path)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// newProvider builds the embedding provider from config.
func newProvider(cfg *config.Config) *embedding.OllamaProvider {
	var opts []embedding.OllamaOption
	if cfg.Embedding.BaseURL != "" {
		opts = append(opts, embedding.WithBaseURL(cfg.Embedding.BaseURL))
	}
	if cfg.Embedding.Model != "" {
		opts = append(opts, embedding.WithModel(cfg.Embedding.Model))
	}
	if cfg.Embedding.Dimensions > 0 {
		opts = append(opts, embedding.WithDimensions(cfg.Embedding.Dimensions))
	}
	return embedding.NewOllamaProvider(opts...)
}

// mustOpenStore opens the chunk store, or exits when it cannot be opened.
func mustOpenStore(cfg *config.Config, provider embedding.Provider) *chunkstore.Store {
	store, err := chunkstore.Open(cfg.StoreDir, cfg.Source, provider)
	if err != nil {
		exitWithError(ExitError, "opening chunk store: %v", err)
	}
	return store
}

// mustRequireIndex exits when no catalog has been built yet.
func mustRequireIndex(cfg *config.Config) {
	if !chunkstore.Exists(cfg.StoreDir) {
		exitWithError(ExitConfigError, "Chunk store not found at %s\n\nRun 'gitaqa ingest' to build it.", cfg.StoreDir)
	}
}

// mustNewLLM builds the Gemini client, or exits when no API key is set.
func mustNewLLM(cfg *config.Config) *llm.Client {
	var opts []llm.ClientOption
	if len(cfg.Models) > 0 {
		opts = append(opts, llm.WithModels(cfg.Models...))
	}
	client, err := llm.NewClient(opts...)
	if err != nil {
		if errors.Is(err, llm.ErrNoAPIKey) {
			exitWithError(ExitConfigError, "No Gemini API key found\n\nSet %s in the environment or a .env file.", llm.APIKeyEnv)
		}
		exitWithError(ExitConfigError, "creating Gemini client: %v", err)
	}
	return client
}

// openHistory opens the query history database. History is best effort:
// a nil return disables recording for this run.
func openHistory(cfg *config.Config) *history.DB {
	h, err := history.Open(cfg.HistoryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: query history disabled: %v\n", err)
		return nil
	}
	return h
}

// recordQuery appends one answered query to history. h may be nil.
func recordQuery(h *history.DB, query string, result *agent.Result) {
	if h == nil {
		return
	}
	err := h.Record(history.Entry{
		Query:    query,
		Tool:     result.Tool,
		Response: result.Response,
		Fallback: result.IsFallback,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: recording history: %v\n", err)
	}
}

// mustNewAgent assembles the full answering stack from config.
func mustNewAgent(cfg *config.Config) *agent.Agent {
	mustRequireIndex(cfg)

	provider := newProvider(cfg)
	store := mustOpenStore(cfg, provider)
	client := mustNewLLM(cfg)

	ans := answer.New(store, client, cfg.Source)
	ans.SetTopK(cfg.TopK)

	return agent.New(ans, client, cfg.Source)
}
