// Package config handles application configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "gitaqa.yml"

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	BaseURL    string `yaml:"base_url,omitempty"`
	Model      string `yaml:"model,omitempty"`
	Dimensions int    `yaml:"dimensions,omitempty"`
}

// Config is the application configuration, loaded from a YAML file with
// every field optional. API keys are never stored here; they come from
// the environment (or a .env file).
type Config struct {
	PDFPath      string          `yaml:"pdf_path,omitempty"`
	StoreDir     string          `yaml:"store_dir,omitempty"`
	Source       string          `yaml:"source,omitempty"`
	ChunkSize    int             `yaml:"chunk_size,omitempty"`
	ChunkOverlap int             `yaml:"chunk_overlap,omitempty"`
	TopK         int             `yaml:"top_k,omitempty"`
	ListenAddr   string          `yaml:"listen_addr,omitempty"`
	HistoryPath  string          `yaml:"history_path,omitempty"`
	Models       []string        `yaml:"models,omitempty"`
	Embedding    EmbeddingConfig `yaml:"embedding,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		PDFPath:      "Data/The_Bhagavad_Gita.pdf",
		StoreDir:     "data_blocks",
		Source:       "The Bhagavad Gita",
		ChunkSize:    500,
		ChunkOverlap: 50,
		TopK:         3,
		ListenAddr:   ":8080",
		HistoryPath:  "data_blocks/history.db",
	}
}

// Load reads configuration from path, filling unset fields with defaults.
// A missing file is not an error: defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.fillDefaults()

	return cfg, nil
}

// fillDefaults replaces zero values with defaults after parsing, so a
// partial config file only overrides what it names.
func (c *Config) fillDefaults() {
	d := Default()
	if c.PDFPath == "" {
		c.PDFPath = d.PDFPath
	}
	if c.StoreDir == "" {
		c.StoreDir = d.StoreDir
	}
	if c.Source == "" {
		c.Source = d.Source
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = d.ChunkSize
	}
	if c.ChunkOverlap < 0 {
		c.ChunkOverlap = d.ChunkOverlap
	}
	if c.TopK <= 0 {
		c.TopK = d.TopK
	}
	if c.ListenAddr == "" {
		c.ListenAddr = d.ListenAddr
	}
	if c.HistoryPath == "" {
		c.HistoryPath = d.HistoryPath
	}
}

// ValidatePDFPath checks that the source document exists. Its absence is
// a fatal configuration error for ingestion.
func (c *Config) ValidatePDFPath() error {
	info, err := os.Stat(c.PDFPath)
	if err != nil {
		return fmt.Errorf("source document not found at %s", c.PDFPath)
	}
	if info.IsDir() {
		return fmt.Errorf("source document path is a directory: %s", c.PDFPath)
	}
	return nil
}
