package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadOverlaysYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "galaxysim.yaml")
	data := []byte("seed: 99\nbattle:\n  loot_modifier: 3\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Seed != 99 {
		t.Errorf("expected seed 99, got %d", cfg.Seed)
	}
	if cfg.Battle.LootModifier != 3 {
		t.Errorf("expected loot modifier 3, got %d", cfg.Battle.LootModifier)
	}
	// Untouched keys keep their defaults.
	if cfg.Politics.ElectionCandidates != Default().Politics.ElectionCandidates {
		t.Errorf("expected default candidate count, got %d", cfg.Politics.ElectionCandidates)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GALAXYSIM_SEED", "7")
	t.Setenv("GALAXYSIM_DB", "/tmp/other.db")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Seed != 7 {
		t.Errorf("expected seed 7, got %d", cfg.Seed)
	}
	if cfg.DBPath != "/tmp/other.db" {
		t.Errorf("expected db path override, got %s", cfg.DBPath)
	}
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("GALAXYSIM_SEED", "not-a-number")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for malformed seed")
	}
}

func TestValidateRejectsSingleFaction(t *testing.T) {
	cfg := Default()
	cfg.Galaxy.Factions = 1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}
