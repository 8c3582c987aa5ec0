package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Defaults()
	if got != want {
		t.Errorf("got %+v, want defaults %+v", got, want)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".epp.toml")
	contents := "max_loop_iterations = 500\nlog_level = \"debug\"\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MaxLoopIterations != 500 {
		t.Errorf("got max_loop_iterations %d, want 500", got.MaxLoopIterations)
	}
	if got.LogLevel != "debug" {
		t.Errorf("got log_level %q, want debug", got.LogLevel)
	}
}

func TestLoadMalformedFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".epp.toml")
	if err := os.WriteFile(path, []byte("this is not = = toml"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestLoadRejectsNonPositiveMaxLoopIterations(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".epp.toml")
	if err := os.WriteFile(path, []byte("max_loop_iterations = 0\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MaxLoopIterations != Defaults().MaxLoopIterations {
		t.Errorf("got %d, want default %d", got.MaxLoopIterations, Defaults().MaxLoopIterations)
	}
}
