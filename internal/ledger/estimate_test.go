package ledger

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFilePart(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"x_test.py::test_1", "x_test.py"},
		{"a/b/x_test.py::TestClass::test_1", "a/b/x_test.py"},
		{"bare_test.py", "bare_test.py"},
	}
	for _, tt := range tests {
		if got := FilePart(tt.input); got != tt.expected {
			t.Errorf("FilePart(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestEstimate(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"x_test.py", "y_test.py"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("pass\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	durations := map[string]float64{
		"x_test.py::test_1": 5.0,
		"y_test.py::test_2": 7.0,
	}

	t.Run("matching entries are summed exactly", func(t *testing.T) {
		got, ok := Estimate(durations, map[string]bool{filepath.Join(root, "y_test.py"): true}, root)
		if !ok {
			t.Fatal("expected an estimate")
		}
		if got != 7.0 {
			t.Errorf("estimate = %v, expected exactly 7.0", got)
		}
	})

	t.Run("multiple files sum", func(t *testing.T) {
		removed := map[string]bool{
			filepath.Join(root, "x_test.py"): true,
			filepath.Join(root, "y_test.py"): true,
		}
		got, ok := Estimate(durations, removed, root)
		if !ok || got != 12.0 {
			t.Errorf("estimate = %v ok=%v, expected 12.0", got, ok)
		}
	})

	t.Run("empty path set is absent", func(t *testing.T) {
		if _, ok := Estimate(durations, map[string]bool{}, root); ok {
			t.Error("estimate over empty set must be absent, not zero")
		}
	})

	t.Run("no matching entries is absent", func(t *testing.T) {
		removed := map[string]bool{filepath.Join(root, "z_test.py"): true}
		if _, ok := Estimate(durations, removed, root); ok {
			t.Error("estimate without matches must be absent")
		}
	})

	t.Run("empty ledger is absent", func(t *testing.T) {
		removed := map[string]bool{filepath.Join(root, "x_test.py"): true}
		if _, ok := Estimate(map[string]float64{}, removed, root); ok {
			t.Error("estimate from empty ledger must be absent")
		}
	})
}
