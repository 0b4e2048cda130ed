// Package paths provides path normalization helpers.
//
// Selection decisions compare paths from several sources (git output, test
// discovery, cached test identifiers), so everything funnels through the
// same resolution rules before comparison.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolve returns the absolute, symlink-free form of path. Relative paths
// are resolved against the current directory. Paths that do not exist yet
// are still absolutized so set membership checks stay meaningful.
func Resolve(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs
	}
	return resolved
}

// ResolveUnder resolves a possibly-relative path against root.
func ResolveUnder(root, path string) string {
	if filepath.IsAbs(path) {
		return Resolve(path)
	}
	return Resolve(filepath.Join(root, path))
}

// Canonicalize converts an absolute path to a root-relative canonical path
// with forward slashes.
func Canonicalize(absolutePath string, root string) (string, error) {
	resolved := Resolve(absolutePath)
	rootResolved := Resolve(root)

	rel, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// IsWithin checks if a path is within root.
func IsWithin(path string, root string) bool {
	canonical, err := Canonicalize(path, root)
	if err != nil {
		return false
	}
	return canonical != ".." && !strings.HasPrefix(canonical, "../")
}

// Exists reports whether path names an existing file or directory.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
