package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oaflang/oaf/lang/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.Default()
	if cfg.VM.ParallelWorkers != 8 {
		t.Fatalf("ParallelWorkers = %d, want 8", cfg.VM.ParallelWorkers)
	}
	if cfg.VM.FastPathCacheSize != 256 {
		t.Fatalf("FastPathCacheSize = %d, want 256", cfg.VM.FastPathCacheSize)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oaf.toml")
	body := "[VM]\nParallelWorkers = 2\nFastPathCacheSize = 64\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.VM.ParallelWorkers != 2 {
		t.Fatalf("ParallelWorkers = %d, want 2", cfg.VM.ParallelWorkers)
	}
	if cfg.VM.FastPathCacheSize != 64 {
		t.Fatalf("FastPathCacheSize = %d, want 64", cfg.VM.FastPathCacheSize)
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}
