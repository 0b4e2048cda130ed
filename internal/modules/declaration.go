// Package modules holds the declarative module map consumed by the impact
// oracle: which paths belong to which module, and which modules depend on
// which.
package modules

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"sift/internal/paths"
)

// Declaration represents a declared module in modules.toml
type Declaration struct {
	// Name is the import-facing module identifier (e.g. "core.auth" or
	// "sift/internal/engine")
	Name string `toml:"name"`

	// Path is the root-relative path to the module root (a directory or a
	// single file)
	Path string `toml:"path"`

	// DependsOn names modules this module depends on
	DependsOn []string `toml:"depends_on,omitempty"`
}

// DeclarationFile represents the root structure of modules.toml
type DeclarationFile struct {
	Modules []Declaration `toml:"module"`
}

// Set is a resolved module map for one project root.
type Set struct {
	root    string
	byName  map[string]*Declaration
	// byPath pairs each declaration with its resolved absolute path,
	// longest path first so Owner picks the most specific match.
	byPath []ownedPath
}

type ownedPath struct {
	abs  string
	decl *Declaration
}

// LoadDeclarations reads the module declaration file. A missing file yields
// an empty set: the oracle then falls back to file-level import matching,
// which is strictly more conservative.
func LoadDeclarations(root, file string) (*Set, error) {
	set := &Set{
		root:   root,
		byName: make(map[string]*Declaration),
	}

	data, err := os.ReadFile(filepath.Join(root, file))
	if err != nil {
		if os.IsNotExist(err) {
			return set, nil
		}
		return nil, err
	}

	var parsed DeclarationFile
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return nil, err
	}

	for i := range parsed.Modules {
		decl := &parsed.Modules[i]
		if decl.Name != "" {
			set.byName[decl.Name] = decl
		}
		if decl.Path != "" {
			set.byPath = append(set.byPath, ownedPath{
				abs:  paths.ResolveUnder(root, decl.Path),
				decl: decl,
			})
		}
	}

	sort.Slice(set.byPath, func(i, j int) bool {
		return len(set.byPath[i].abs) > len(set.byPath[j].abs)
	})

	return set, nil
}

// Empty reports whether any modules are declared.
func (s *Set) Empty() bool {
	return len(s.byPath) == 0 && len(s.byName) == 0
}

// Root returns the project root the set was loaded for.
func (s *Set) Root() string {
	return s.root
}

// ByName looks up a declaration by module name.
func (s *Set) ByName(name string) (*Declaration, bool) {
	d, ok := s.byName[name]
	return d, ok
}

// Owner returns the module owning the given absolute path, preferring the
// most specific declared path.
func (s *Set) Owner(absPath string) (*Declaration, bool) {
	resolved := paths.Resolve(absPath)
	for _, op := range s.byPath {
		if resolved == op.abs || strings.HasPrefix(resolved, op.abs+string(filepath.Separator)) {
			return op.decl, true
		}
	}
	return nil, false
}

// MatchImport finds the module whose name owns an import string: an exact
// match, or a dotted/slashed submodule of a declared name. The longest
// matching name wins.
func (s *Set) MatchImport(imp string) (*Declaration, bool) {
	var best *Declaration
	for name, decl := range s.byName {
		if imp != name && !strings.HasPrefix(imp, name+".") && !strings.HasPrefix(imp, name+"/") {
			continue
		}
		if best == nil || len(decl.Name) > len(best.Name) {
			best = decl
		}
	}
	return best, best != nil
}

// DependentsClosure returns seeds plus every module that transitively
// depends on any of them.
func (s *Set) DependentsClosure(seeds map[string]bool) map[string]bool {
	closure := make(map[string]bool, len(seeds))
	for name := range seeds {
		closure[name] = true
	}

	for {
		grew := false
		for name, decl := range s.byName {
			if closure[name] {
				continue
			}
			for _, dep := range decl.DependsOn {
				if closure[dep] {
					closure[name] = true
					grew = true
					break
				}
			}
		}
		if !grew {
			return closure
		}
	}
}
