package gitops

import (
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

func TestBranchFromSymref(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"refs/remotes/origin/main\n", "main"},
		{"refs/remotes/origin/master", "master"},
		{"refs/remotes/origin/release-1.2", "release-1.2"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := branchFromSymref(tt.input); got != tt.expected {
			t.Errorf("branchFromSymref(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestCleanDiffPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a/internal/engine/state.go", "internal/engine/state.go"},
		{"b/cmd/sift/run.go", "cmd/sift/run.go"},
		{"/dev/null", ""},
		{"", ""},
		{"plain.go", "plain.go"},
	}
	for _, tt := range tests {
		if got := cleanDiffPath(tt.input); got != tt.expected {
			t.Errorf("cleanDiffPath(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

const sampleDiff = `diff --git a/core/service.py b/core/service.py
index 83db48f..bf269f4 100644
--- a/core/service.py
+++ b/core/service.py
@@ -1,3 +1,4 @@
 def handle():
+    audit()
     return True
diff --git a/web/old_name.py b/web/new_name.py
similarity index 90%
rename from web/old_name.py
rename to web/new_name.py
index 83db48f..bf269f4 100644
--- a/web/old_name.py
+++ b/web/new_name.py
@@ -1,2 +1,2 @@
-x = 1
+x = 2
diff --git a/tools/gone.py b/tools/gone.py
deleted file mode 100644
index 83db48f..0000000
--- a/tools/gone.py
+++ /dev/null
@@ -1,1 +0,0 @@
-obsolete = True
`

func TestPathsFromDiff(t *testing.T) {
	got, err := PathsFromDiff(sampleDiff)
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(got)

	expected := []string{"core/service.py", "tools/gone.py", "web/new_name.py", "web/old_name.py"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("PathsFromDiff = %v, expected %v", got, expected)
	}
}

func TestPathsFromDiffEmpty(t *testing.T) {
	got, err := PathsFromDiff("")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no paths for empty diff, got %v", got)
	}
}

// initTestRepo builds a small git repository with one commit on main.
func initTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}

	run("init", "-b", "main")
	if err := os.WriteFile(filepath.Join(dir, "a.py"), []byte("x = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	run("add", ".")
	run("commit", "-m", "initial")
	return dir
}

func TestDefaultBranchLocal(t *testing.T) {
	dir := initTestRepo(t)

	if got := DefaultBranch(dir); got != "main" {
		t.Errorf("DefaultBranch = %q, expected main", got)
	}
}

func TestChangedFilesWorkingTree(t *testing.T) {
	dir := initTestRepo(t)

	// Modify a tracked file and add an untracked one.
	if err := os.WriteFile(filepath.Join(dir, "a.py"), []byte("x = 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.py"), []byte("y = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	changed, err := ChangedFiles(dir, "main", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(changed) != 2 {
		t.Fatalf("expected 2 changed files, got %v", changed)
	}
	for _, name := range []string{"a.py", "b.py"} {
		found := false
		for p := range changed {
			if filepath.Base(p) == name {
				found = true
			}
		}
		if !found {
			t.Errorf("changed set missing %s: %v", name, changed)
		}
	}

	// Idempotence: resolving twice with identical state yields an
	// identical set.
	again, err := ChangedFiles(dir, "main", "")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(changed, again) {
		t.Errorf("resolution is not idempotent: %v vs %v", changed, again)
	}
}

func TestChangedFilesMissingBase(t *testing.T) {
	dir := initTestRepo(t)

	if _, err := ChangedFiles(dir, "no-such-branch", ""); err == nil {
		t.Error("expected error for unresolvable base")
	}
}

func TestChangedFilesCleanTree(t *testing.T) {
	dir := initTestRepo(t)

	changed, err := ChangedFiles(dir, "main", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(changed) != 0 {
		t.Errorf("expected empty change-set on clean tree, got %v", changed)
	}
}
