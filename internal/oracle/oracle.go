// Package oracle decides whether a test file is provably unaffected by a
// change-set.
//
// The decision walks the test file's imports: an import that touches a
// changed file, a changed module, or anything the engine cannot resolve
// keeps the test. Only a test whose imports all resolve cleanly away from
// the change-set is removable. Every ambiguity degrades toward "keep".
package oracle

import (
	"path/filepath"
	"strings"

	"sift/internal/errors"
	"sift/internal/logging"
	"sift/internal/modules"
	"sift/internal/paths"
)

// ImportOracle is the reference import-graph implementation of the engine's
// Oracle interface.
type ImportOracle struct {
	root    string
	decls   *modules.Set
	changed map[string]bool
	logger  *logging.Logger

	// affected is the changed-module closure: modules owning changed
	// files plus everything depending on them.
	affected map[string]bool

	// decisions caches per-file removability so the file-level and
	// item-level queries always agree within a run.
	decisions map[string]bool

	removed map[string]bool
}

// New builds an oracle for one run. changed must hold resolved absolute
// paths; it is treated as immutable.
func New(root string, decls *modules.Set, changed map[string]bool, logger *logging.Logger) *ImportOracle {
	o := &ImportOracle{
		root:      root,
		decls:     decls,
		changed:   changed,
		logger:    logger,
		affected:  map[string]bool{},
		decisions: map[string]bool{},
		removed:   map[string]bool{},
	}

	seeds := map[string]bool{}
	for path := range changed {
		if decl, ok := decls.Owner(path); ok {
			seeds[decl.Name] = true
		}
	}
	if len(seeds) > 0 {
		o.affected = decls.DependentsClosure(seeds)
	}

	logger.Debug("oracle initialized", logging.Fields{
		"changedFiles":    len(changed),
		"affectedModules": len(o.affected),
	})
	return o
}

// IsRemovable reports whether the file's tests are provably unaffected by
// the change-set.
func (o *ImportOracle) IsRemovable(path string) (bool, error) {
	resolved := paths.Resolve(path)
	if decision, ok := o.decisions[resolved]; ok {
		return decision, nil
	}

	removable, err := o.decide(resolved)
	if err != nil {
		return false, err
	}
	o.decisions[resolved] = removable
	return removable, nil
}

// MarkRemoved records that the engine dropped the file from the run.
func (o *ImportOracle) MarkRemoved(path string) {
	o.removed[paths.Resolve(path)] = true
}

// Removed returns how many files were marked removed.
func (o *ImportOracle) Removed() int {
	return len(o.removed)
}

func (o *ImportOracle) decide(resolved string) (bool, error) {
	if o.changed[resolved] {
		return false, nil
	}

	imports, supported, err := modules.ScanImports(resolved)
	if err != nil {
		return false, errors.New(errors.OracleFailure, "could not scan "+resolved, err, nil)
	}
	if !supported {
		// Unknown language: cannot prove anything, keep.
		return false, nil
	}

	fromDir := filepath.Dir(resolved)
	for _, imp := range imports {
		if o.importAffected(imp, fromDir) {
			return false, nil
		}
	}
	return true, nil
}

// importAffected reports whether one import string touches the change-set.
func (o *ImportOracle) importAffected(imp, fromDir string) bool {
	if decl, ok := o.decls.MatchImport(imp); ok {
		if o.affected[decl.Name] {
			return true
		}
		// A declared, unaffected module: this import is accounted for.
		return false
	}

	for _, candidate := range o.resolveImport(imp, fromDir) {
		if o.pathAffected(candidate) {
			return true
		}
	}
	return false
}

// pathAffected checks a resolved candidate path (file or directory) against
// the change-set and the affected-module closure.
func (o *ImportOracle) pathAffected(abs string) bool {
	if o.changed[abs] {
		return true
	}
	if decl, ok := o.decls.Owner(abs); ok && o.affected[decl.Name] {
		return true
	}
	// Directory candidate: any changed file underneath affects it.
	prefix := abs + string(filepath.Separator)
	for changed := range o.changed {
		if strings.HasPrefix(changed, prefix) {
			return true
		}
	}
	return false
}

var importExtensions = []string{".py", ".go", ".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"}

// resolveImport maps an import string to candidate filesystem paths. Only
// candidates that exist are returned; stdlib and third-party imports
// resolve to nothing and therefore never affect the decision.
func (o *ImportOracle) resolveImport(imp, fromDir string) []string {
	var stems []string

	switch {
	case strings.HasPrefix(imp, "./") || strings.HasPrefix(imp, "../"):
		stems = append(stems, filepath.Join(fromDir, filepath.FromSlash(imp)))
	case strings.HasPrefix(imp, "."):
		// Dotted Python relative import: one dot is the current package,
		// each further dot ascends a directory.
		rest := strings.TrimLeft(imp, ".")
		dir := fromDir
		for i := 1; i < len(imp)-len(rest); i++ {
			dir = filepath.Dir(dir)
		}
		stem := dir
		if rest != "" {
			stem = filepath.Join(dir, filepath.FromSlash(strings.ReplaceAll(rest, ".", "/")))
		}
		if paths.IsWithin(stem, o.root) {
			stems = append(stems, stem)
		}
	case strings.Contains(imp, "/"):
		// Path-style import (Go, JS package subpath). The leading
		// segments may be a module prefix that does not exist on disk,
		// so try each suffix.
		stems = append(stems, filepath.Join(o.root, filepath.FromSlash(imp)))
		segs := strings.Split(imp, "/")
		for i := 1; i < len(segs); i++ {
			stems = append(stems, filepath.Join(o.root, filepath.Join(segs[i:]...)))
		}
	default:
		// Dotted import (Python).
		slashed := filepath.FromSlash(strings.ReplaceAll(imp, ".", "/"))
		stems = append(stems,
			filepath.Join(o.root, slashed),
			filepath.Join(fromDir, slashed),
		)
	}

	var candidates []string
	for _, stem := range stems {
		if paths.Exists(stem) {
			candidates = append(candidates, paths.Resolve(stem))
		}
		for _, ext := range importExtensions {
			if paths.Exists(stem + ext) {
				candidates = append(candidates, paths.Resolve(stem+ext))
			}
		}
		initPy := filepath.Join(stem, "__init__.py")
		if paths.Exists(initPy) {
			candidates = append(candidates, paths.Resolve(initPy))
		}
	}
	return candidates
}
