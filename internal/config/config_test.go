package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	dir := setupHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Threshold != 0.6 {
		t.Fatalf("unexpected threshold: %v", cfg.Threshold)
	}
	if cfg.KnowledgePath != filepath.Join(dir, "knowledge") {
		t.Fatalf("unexpected knowledge path: %q", cfg.KnowledgePath)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	setupHome(t)

	cfg := &Config{KnowledgePath: "~/kb.json", Threshold: 0.75, HistoryPath: "/tmp/h.json"}
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	home, _ := os.UserHomeDir()
	if got.KnowledgePath != filepath.Join(home, "kb.json") {
		t.Fatalf("~ not expanded: %q", got.KnowledgePath)
	}
	if got.Threshold != 0.75 || got.HistoryPath != "/tmp/h.json" {
		t.Fatalf("unexpected config: %+v", got)
	}
	if got.ServerAddr != "127.0.0.1:8080" {
		t.Fatalf("default server addr lost: %q", got.ServerAddr)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := setupHome(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("KBOT_THRESHOLD=0.4\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvKnowledgePath, "/srv/kb")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Threshold != 0.4 {
		t.Fatalf("dotenv threshold not applied: %v", cfg.Threshold)
	}
	if cfg.KnowledgePath != "/srv/kb" {
		t.Fatalf("env knowledge path not applied: %q", cfg.KnowledgePath)
	}
}

func TestLoad_InvalidThreshold(t *testing.T) {
	setupHome(t)
	t.Setenv(EnvThreshold, "high")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric threshold")
	}
}

func TestLoad_NaNThresholdRejected(t *testing.T) {
	setupHome(t)
	t.Setenv(EnvThreshold, "NaN")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected Validate to reject a NaN threshold")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := setupHome(t)
	if err := os.WriteFile(filepath.Join(dir, "kbot.yaml"), []byte("threshold: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("expected YAML error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		cfg Config
		ok  bool
	}{
		{Config{KnowledgePath: "kb.json", Threshold: 0.6}, true},
		{Config{KnowledgePath: "kb.json", Threshold: 0}, true},
		{Config{KnowledgePath: "kb.json", Threshold: 1.2}, false},
		{Config{KnowledgePath: "kb.json", Threshold: -0.1}, false},
		{Config{KnowledgePath: "kb.json", Threshold: math.NaN()}, false},
		{Config{KnowledgePath: " ", Threshold: 0.6}, false},
	}
	for _, tt := range tests {
		err := tt.cfg.Validate()
		if (err == nil) != tt.ok {
			t.Errorf("Validate(%+v) = %v, want ok=%v", tt.cfg, err, tt.ok)
		}
	}
}
