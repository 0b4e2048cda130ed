package main

import (
	"os"

	"sift/internal/config"
	"sift/internal/engine"
	"sift/internal/gitops"
	"sift/internal/logging"
	"sift/internal/modules"
	"sift/internal/oracle"
	"sift/internal/runner"
)

// project is the loaded per-invocation context shared by all subcommands.
type project struct {
	root   string
	cfg    *config.Config
	logger *logging.Logger
}

// openProject discovers the project root from the working directory and
// loads its configuration. A ConfigMissing error propagates unchanged so
// callers can decide whether absence is fatal for them.
func openProject(verbose bool) (*project, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, cfg, err := config.Discover(cwd)
	if err != nil {
		return nil, err
	}

	level := logging.ParseLevel(cfg.Logging.Level)
	if verbose {
		level = logging.DebugLevel
	}

	return &project{
		root: root,
		cfg:  cfg,
		logger: logging.NewLogger(logging.Config{
			Format: logging.ParseFormat(cfg.Logging.Format),
			Level:  level,
		}),
	}, nil
}

// selection is the outcome of the configure/filter phases: everything a
// command needs before (or instead of) executing tests.
type selection struct {
	state  *engine.State
	oracle *oracle.ImportOracle

	// files are all discovered test files; keptFiles excludes files the
	// engine actually removed.
	files     []string
	keptFiles []string

	// items are all collected test items; kept is the final run list.
	items      []engine.Item
	kept       []engine.Item
	deselected []engine.Item
}

// runSelection drives the engine through configure, file filtering, item
// collection, and item filtering. A nil selection with a nil error means
// the engine silently stayed disabled.
func runSelection(p *project, opts engine.Options) (*selection, error) {
	state, err := engine.Configure(opts, gitops.NewResolver())
	if err != nil {
		return nil, err
	}
	if state == nil {
		p.logger.Debug("change resolution failed; selection disabled", nil)
		return nil, nil
	}

	return filterWithState(p, state)
}

// filterWithState completes the selection phases for an already configured
// state. Split out so dry-run commands can adjust enablement first.
func filterWithState(p *project, state *engine.State) (*selection, error) {
	files, err := runner.Discover(p.root, p.cfg.Runner.Patterns, p.cfg.Runner.Ignore, p.cfg.Modules.Roots)
	if err != nil {
		return nil, err
	}

	decls, err := modules.LoadDeclarations(p.root, p.cfg.Modules.File)
	if err != nil {
		return nil, err
	}

	orc := oracle.New(p.root, decls, state.ChangedFiles, p.logger)

	sel := &selection{state: state, oracle: orc, files: files}
	for _, file := range files {
		decision, err := state.FilterFile(orc, file, true)
		if err != nil {
			return nil, err
		}
		if decision == engine.FileRemoved && state.SkipEnabled {
			continue
		}
		sel.keptFiles = append(sel.keptFiles, file)
	}

	// Collection covers removed files too: the item filter is the
	// authoritative pass and its removal count feeds the report.
	sel.items, err = runner.CollectAll(p.root, files)
	if err != nil {
		return nil, err
	}

	sel.kept, sel.deselected, err = state.FilterItems(orc, sel.items)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("selection complete", logging.Fields{
		"changed_files": len(state.ChangedFiles),
		"test_files":    len(files),
		"kept_items":    len(sel.kept),
		"removed_items": state.RemovedItemCount,
	})
	return sel, nil
}

// keptFilePaths returns the files backing the kept items, preserving
// discovery order. Files that yielded no items at all stay in: the
// collector's view of a file is never grounds for skipping it.
func (s *selection) keptFilePaths() []string {
	collected := make(map[string]bool, len(s.items))
	for _, item := range s.items {
		collected[item.Path] = true
	}
	inKept := make(map[string]bool, len(s.kept))
	for _, item := range s.kept {
		inKept[item.Path] = true
	}

	var out []string
	for _, file := range s.keptFiles {
		if inKept[file] || !collected[file] {
			out = append(out, file)
		}
	}
	return out
}
