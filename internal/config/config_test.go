package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	def := Default()
	if cfg.PDFPath != def.PDFPath {
		t.Errorf("PDFPath = %q, want default %q", cfg.PDFPath, def.PDFPath)
	}
	if cfg.ChunkSize != 500 || cfg.ChunkOverlap != 50 || cfg.TopK != 3 {
		t.Errorf("chunking defaults = %d/%d/%d, want 500/50/3", cfg.ChunkSize, cfg.ChunkOverlap, cfg.TopK)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", cfg.ListenAddr)
	}
}

func TestLoad_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitaqa.yml")
	content := `
store_dir: /tmp/custom_blocks
chunk_size: 1000
models:
  - gemini-test-model
embedding:
  model: custom-embedder
  dimensions: 768
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.StoreDir != "/tmp/custom_blocks" {
		t.Errorf("StoreDir = %q", cfg.StoreDir)
	}
	if cfg.ChunkSize != 1000 {
		t.Errorf("ChunkSize = %d, want 1000", cfg.ChunkSize)
	}
	if len(cfg.Models) != 1 || cfg.Models[0] != "gemini-test-model" {
		t.Errorf("Models = %v", cfg.Models)
	}
	if cfg.Embedding.Model != "custom-embedder" || cfg.Embedding.Dimensions != 768 {
		t.Errorf("Embedding = %+v", cfg.Embedding)
	}

	// Unset fields fall back to defaults.
	if cfg.ChunkOverlap != 50 {
		t.Errorf("ChunkOverlap = %d, want default 50", cfg.ChunkOverlap)
	}
	if cfg.Source != "The Bhagavad Gita" {
		t.Errorf("Source = %q, want default", cfg.Source)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitaqa.yml")
	if err := os.WriteFile(path, []byte("chunk_size: [not a number"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() succeeded on malformed YAML")
	}
}

func TestValidatePDFPath(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		cfg := Default()
		cfg.PDFPath = filepath.Join(dir, "missing.pdf")
		if err := cfg.ValidatePDFPath(); err == nil {
			t.Error("ValidatePDFPath() succeeded for a missing file")
		}
	})

	t.Run("directory", func(t *testing.T) {
		cfg := Default()
		cfg.PDFPath = dir
		if err := cfg.ValidatePDFPath(); err == nil {
			t.Error("ValidatePDFPath() succeeded for a directory")
		}
	})

	t.Run("existing file", func(t *testing.T) {
		path := filepath.Join(dir, "book.pdf")
		if err := os.WriteFile(path, []byte("%PDF-1.4"), 0644); err != nil {
			t.Fatalf("writing file: %v", err)
		}
		cfg := Default()
		cfg.PDFPath = path
		if err := cfg.ValidatePDFPath(); err != nil {
			t.Errorf("ValidatePDFPath() error: %v", err)
		}
	})
}
