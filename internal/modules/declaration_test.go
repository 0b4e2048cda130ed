package modules

import (
	"os"
	"path/filepath"
	"testing"
)

func writeModules(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "modules.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDeclarationsMissingFile(t *testing.T) {
	dir := t.TempDir()

	set, err := LoadDeclarations(dir, "modules.toml")
	if err != nil {
		t.Fatal(err)
	}
	if !set.Empty() {
		t.Error("missing file should produce an empty set")
	}
}

func TestLoadDeclarationsInvalidToml(t *testing.T) {
	dir := t.TempDir()
	writeModules(t, dir, "[[module\nname=broken")

	if _, err := LoadDeclarations(dir, "modules.toml"); err == nil {
		t.Error("expected parse error")
	}
}

func TestOwner(t *testing.T) {
	dir := t.TempDir()
	for _, sub := range []string{"core", "core/auth", "web"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			t.Fatal(err)
		}
	}
	writeModules(t, dir, `
[[module]]
name = "core"
path = "core"

[[module]]
name = "core.auth"
path = "core/auth"

[[module]]
name = "web"
path = "web"
depends_on = ["core"]
`)

	set, err := LoadDeclarations(dir, "modules.toml")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path     string
		expected string
	}{
		{"core/service.py", "core"},
		{"core/auth/token.py", "core.auth"},
		{"web/app.py", "web"},
	}
	for _, tt := range tests {
		decl, ok := set.Owner(filepath.Join(dir, tt.path))
		if !ok {
			t.Errorf("Owner(%q): no module found", tt.path)
			continue
		}
		if decl.Name != tt.expected {
			t.Errorf("Owner(%q) = %q, expected %q", tt.path, decl.Name, tt.expected)
		}
	}

	if _, ok := set.Owner(filepath.Join(dir, "scripts/tool.py")); ok {
		t.Error("undeclared path should have no owner")
	}
}

func TestDependentsClosure(t *testing.T) {
	dir := t.TempDir()
	writeModules(t, dir, `
[[module]]
name = "core"
path = "core"

[[module]]
name = "api"
path = "api"
depends_on = ["core"]

[[module]]
name = "web"
path = "web"
depends_on = ["api"]

[[module]]
name = "tools"
path = "tools"
`)

	set, err := LoadDeclarations(dir, "modules.toml")
	if err != nil {
		t.Fatal(err)
	}

	closure := set.DependentsClosure(map[string]bool{"core": true})

	for _, want := range []string{"core", "api", "web"} {
		if !closure[want] {
			t.Errorf("closure should contain %q", want)
		}
	}
	if closure["tools"] {
		t.Error("closure should not contain unrelated module")
	}
}
