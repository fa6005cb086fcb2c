package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Ingest.ChunkTokens != 450 {
		t.Errorf("expected ChunkTokens=450, got %d", cfg.Ingest.ChunkTokens)
	}
	if cfg.Ingest.ChunkOverlap != 100 {
		t.Errorf("expected ChunkOverlap=100, got %d", cfg.Ingest.ChunkOverlap)
	}
	if cfg.Retrieve.RRFK != 60 {
		t.Errorf("expected RRFK=60, got %d", cfg.Retrieve.RRFK)
	}
	if cfg.Retrieve.VectorWeight != 0.5 {
		t.Errorf("expected VectorWeight=0.5, got %f", cfg.Retrieve.VectorWeight)
	}
	if cfg.Router.MinTokens != 500 {
		t.Errorf("expected MinTokens=500, got %d", cfg.Router.MinTokens)
	}
	if cfg.Router.MinComplexity != 2 {
		t.Errorf("expected MinComplexity=2, got %d", cfg.Router.MinComplexity)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "clinrag.yaml")

	content := `
ingest:
  chunk_tokens: 256
retrieve:
  top_k: 3
router:
  force_target: local
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Ingest.ChunkTokens != 256 {
		t.Errorf("expected ChunkTokens=256, got %d", cfg.Ingest.ChunkTokens)
	}
	if cfg.Retrieve.TopK != 3 {
		t.Errorf("expected TopK=3, got %d", cfg.Retrieve.TopK)
	}
	if cfg.Router.ForceTarget != "local" {
		t.Errorf("expected ForceTarget=local, got %s", cfg.Router.ForceTarget)
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "clinrag.yaml")

	content := `
generation:
  max_tokens: 1024
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Generation.MaxTokens != 1024 {
		t.Errorf("expected MaxTokens=1024, got %d", cfg.Generation.MaxTokens)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")
	t.Setenv("MODEL_ROUTER_FORCE_TARGET", "cloud")

	cfg, err := Load("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Store.DatabaseURL != "postgres://u:p@db:5432/x" {
		t.Errorf("expected DATABASE_URL override, got %s", cfg.Store.DatabaseURL)
	}
	if cfg.Router.ForceTarget != "cloud" {
		t.Errorf("expected ForceTarget=cloud, got %s", cfg.Router.ForceTarget)
	}
}
