package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Catalog.Path == "" {
		t.Error("default catalog path should be set")
	}
	if cfg.Import.Workers != 8 {
		t.Errorf("default workers = %d, want 8", cfg.Import.Workers)
	}
	if cfg.Cache.Capacity != 512 {
		t.Errorf("default cache capacity = %d, want 512", cfg.Cache.Capacity)
	}
	if cfg.Match.Threshold != 10 {
		t.Errorf("default match threshold = %d, want 10", cfg.Match.Threshold)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Import.Workers != 8 {
		t.Errorf("workers = %d, want default 8", cfg.Import.Workers)
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Cache.Capacity != 512 {
		t.Errorf("capacity = %d, want default 512", cfg.Cache.Capacity)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decimator.toml")
	content := `
[catalog]
path = "/data/photos.db"

[import]
workers = 4

[cache]
capacity = 64
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Catalog.Path != "/data/photos.db" {
		t.Errorf("catalog path = %q, want /data/photos.db", cfg.Catalog.Path)
	}
	if cfg.Import.Workers != 4 {
		t.Errorf("workers = %d, want 4", cfg.Import.Workers)
	}
	if cfg.Cache.Capacity != 64 {
		t.Errorf("capacity = %d, want 64", cfg.Cache.Capacity)
	}
	// Sections absent from the file keep defaults.
	if cfg.Match.Threshold != 10 {
		t.Errorf("threshold = %d, want default 10", cfg.Match.Threshold)
	}
}

func TestLoad_InvalidToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[[[not toml"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid toml")
	}
}

func TestLoad_ClampsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decimator.toml")
	content := `
[import]
workers = 0

[cache]
capacity = -10
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Import.Workers != 1 {
		t.Errorf("workers = %d, want clamped to 1", cfg.Import.Workers)
	}
	if cfg.Cache.Capacity != 1 {
		t.Errorf("capacity = %d, want clamped to 1", cfg.Cache.Capacity)
	}
}
