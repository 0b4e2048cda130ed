package config

import (
	"os"
	"path/filepath"
	"testing"

	"sift/internal/errors"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ProjectConfigFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFindRoot(t *testing.T) {
	t.Run("config in start dir", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "version = 1\n")

		root, ok := FindRoot(dir)
		if !ok {
			t.Fatal("expected to find root")
		}
		if root != dir {
			t.Errorf("root = %q, expected %q", root, dir)
		}
	})

	t.Run("config in ancestor", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "version = 1\n")
		nested := filepath.Join(dir, "internal", "engine")
		if err := os.MkdirAll(nested, 0755); err != nil {
			t.Fatal(err)
		}

		root, ok := FindRoot(nested)
		if !ok {
			t.Fatal("expected to find root from nested dir")
		}
		if root != dir {
			t.Errorf("root = %q, expected %q", root, dir)
		}
	})

	t.Run("no config anywhere", func(t *testing.T) {
		dir := t.TempDir()
		if _, ok := FindRoot(dir); ok {
			t.Error("expected no root in bare temp dir")
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "version = 1\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Runner.Report != "gotest-json" {
		t.Errorf("Runner.Report = %q, expected default gotest-json", cfg.Runner.Report)
	}
	if len(cfg.Runner.Patterns) == 0 {
		t.Error("expected default test-file patterns")
	}
	if cfg.Modules.File != "modules.toml" {
		t.Errorf("Modules.File = %q", cfg.Modules.File)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
version = 1

[runner]
command = "pytest {{files}}"
report = "none"
patterns = ["test_*.py"]

[logging]
level = "debug"
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Runner.Command != "pytest {{files}}" {
		t.Errorf("Runner.Command = %q", cfg.Runner.Command)
	}
	if cfg.Runner.Report != "none" {
		t.Errorf("Runner.Report = %q", cfg.Runner.Report)
	}
	if len(cfg.Runner.Patterns) != 1 || cfg.Runner.Patterns[0] != "test_*.py" {
		t.Errorf("Runner.Patterns = %v", cfg.Runner.Patterns)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestDiscoverMissingConfigIsConfigMissing(t *testing.T) {
	dir := t.TempDir()

	_, _, err := Discover(dir)
	if err == nil {
		t.Fatal("expected error for missing config")
	}
	if errors.CodeOf(err) != errors.ConfigMissing {
		t.Errorf("code = %q, expected CONFIG_MISSING", errors.CodeOf(err))
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Runner.Command = "go test -json ./internal/..."
	if err := cfg.Save(dir); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Runner.Command != cfg.Runner.Command {
		t.Errorf("Runner.Command = %q, expected %q", loaded.Runner.Command, cfg.Runner.Command)
	}
}
