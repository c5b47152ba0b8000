package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/solisoft/soli-lang-sub002/internal/config"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "soli.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeFile(t, "backend = \"treewalk\"\ndatabase = \"app.db\"\n")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend != "treewalk" {
		t.Errorf("Backend = %q, want treewalk", cfg.Backend)
	}
	if cfg.Database != "app.db" {
		t.Errorf("Database = %q, want app.db", cfg.Database)
	}
	if cfg.Prompt != config.DefaultPrompt {
		t.Errorf("Prompt = %q, want default", cfg.Prompt)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "bakend = \"vm\"\n")
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestDefaults(t *testing.T) {
	cfg := config.Default()
	if cfg.Backend != config.DefaultBackend {
		t.Errorf("Backend = %q, want %q", cfg.Backend, config.DefaultBackend)
	}
	if cfg.NoColor {
		t.Error("NoColor should default to false")
	}
}
