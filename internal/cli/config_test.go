package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mhalvorsen/enrichmap/pkg/errors"
)

func TestLoadRunConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.toml")
	content := `
graph = "network.json"
features = ["expression.csv", "annotations.csv"]
output = "results"
formats = ["json", "csv"]

[options]
radius = 2
permutations = 500
alpha = 0.01
seed = 42
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadRunConfig(path)
	if err != nil {
		t.Fatalf("LoadRunConfig() error: %v", err)
	}

	if cfg.Graph != "network.json" {
		t.Errorf("Graph = %q, want %q", cfg.Graph, "network.json")
	}
	if len(cfg.Features) != 2 {
		t.Errorf("len(Features) = %d, want 2", len(cfg.Features))
	}
	if cfg.Output != "results" {
		t.Errorf("Output = %q, want %q", cfg.Output, "results")
	}
	if len(cfg.Formats) != 2 {
		t.Errorf("len(Formats) = %d, want 2", len(cfg.Formats))
	}
	if cfg.Options.Radius != 2 {
		t.Errorf("Options.Radius = %d, want 2", cfg.Options.Radius)
	}
	if cfg.Options.Permutations != 500 {
		t.Errorf("Options.Permutations = %d, want 500", cfg.Options.Permutations)
	}
	if cfg.Options.Alpha != 0.01 {
		t.Errorf("Options.Alpha = %g, want 0.01", cfg.Options.Alpha)
	}
	if cfg.Options.Seed != 42 {
		t.Errorf("Options.Seed = %d, want 42", cfg.Options.Seed)
	}
}

func TestLoadRunConfigMissingFile(t *testing.T) {
	_, err := LoadRunConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error code = %v, want FILE_NOT_FOUND", errors.GetCode(err))
	}
}

func TestLoadRunConfigInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("graph = [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadRunConfig(path)
	if err == nil {
		t.Fatal("expected error for invalid TOML")
	}
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error code = %v, want INVALID_CONFIG", errors.GetCode(err))
	}
}
