// Package runner is the concrete test harness behind "sift run": it
// discovers test files, collects test items from them, executes the
// configured test command, and feeds per-test results back to the engine.
package runner

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"sift/internal/paths"
)

// Discover walks root and returns the absolute paths of all test files
// matching the given base-name patterns. Directories named in ignore are
// skipped entirely; when roots is non-empty, discovery is restricted to
// those subtrees.
func Discover(root string, patterns, ignore, roots []string) ([]string, error) {
	ignored := make(map[string]bool, len(ignore))
	for _, dir := range ignore {
		ignored[dir] = true
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && ignored[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		if !matchesAny(d.Name(), patterns) {
			return nil
		}
		if len(roots) > 0 && !underAny(root, path, roots) {
			return nil
		}
		files = append(files, paths.Resolve(path))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func matchesAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

func underAny(root, path string, roots []string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, r := range roots {
		r = strings.TrimSuffix(filepath.ToSlash(r), "/")
		if rel == r || strings.HasPrefix(rel, r+"/") {
			return true
		}
	}
	return false
}
