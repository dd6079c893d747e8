package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.Draft.Rounds != 10 || cfg.Draft.TimePerPickSec != 45 {
		t.Fatalf("unexpected draft defaults: %+v", cfg.Draft)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("port: \"9090\"\ndraft:\n  rounds: 5\n  time_per_pick_sec: 60\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.Draft.Rounds != 5 || cfg.Draft.TimePerPickSec != 60 {
		t.Fatalf("unexpected draft settings: %+v", cfg.Draft)
	}
	// Untouched keys keep their defaults.
	if cfg.Scheduler.NumWorkers != 10 {
		t.Fatalf("expected default workers, got %d", cfg.Scheduler.NumWorkers)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: \"9090\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PORT", "7070")
	t.Setenv("DRAFT_ROUNDS", "3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "7070" {
		t.Fatalf("expected env to win, got %s", cfg.Port)
	}
	if cfg.Draft.Rounds != 3 {
		t.Fatalf("expected 3 rounds, got %d", cfg.Draft.Rounds)
	}
}

func TestLoadRejectsNonPositiveSettings(t *testing.T) {
	t.Setenv("DRAFT_ROUNDS", "0")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for zero rounds")
	}

	t.Setenv("DRAFT_ROUNDS", "10")
	t.Setenv("DRAFT_TIME_PER_PICK_SEC", "-5")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for negative pick time")
	}
}
