// Package engine implements impact-based test selection as an explicit
// phase machine.
//
// A run moves through fixed phases: Configure, FilterFiles, FilterItems,
// Execute, Summarize. Each transition is an explicit method on State, so
// the whole lifecycle is testable without a host test runner. A disabled
// engine is represented by the absence of a State (nil), never by a
// sentinel flag.
package engine

import (
	"fmt"

	"sift/internal/errors"
	"sift/internal/paths"
)

// Oracle answers whether a test file is provably unaffected by the current
// change-set. It is opaque to the engine; once configuration succeeded it
// is assumed to be available, so query failures are fatal.
type Oracle interface {
	// IsRemovable reports whether the file's tests are provably unaffected.
	IsRemovable(path string) (bool, error)

	// MarkRemoved records that the engine dropped the file from the run.
	MarkRemoved(path string)
}

// Resolver maps a (base, head) pair to the set of changed absolute paths.
type Resolver interface {
	// DefaultBranch detects the branch to diff against when no explicit
	// base is given.
	DefaultBranch(root string) string

	// Resolve returns the changed-file set. Head empty means "working
	// tree vs base".
	Resolve(root, base, head string) (map[string]bool, error)
}

// Phase names a lifecycle stage.
type Phase int

const (
	PhaseConfigure Phase = iota
	PhaseFilterFiles
	PhaseFilterItems
	PhaseExecute
	PhaseSummarize
)

func (p Phase) String() string {
	switch p {
	case PhaseConfigure:
		return "configure"
	case PhaseFilterFiles:
		return "filter-files"
	case PhaseFilterItems:
		return "filter-items"
	case PhaseExecute:
		return "execute"
	case PhaseSummarize:
		return "summarize"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Options carries the configuration-phase inputs.
type Options struct {
	ProjectRoot string

	// Skip enables removal with an auto-detected base.
	Skip bool

	// Base is the explicit base ref; empty means auto-detect. Setting it
	// implies Skip.
	Base string

	// Head is the explicit head ref; empty means working tree. Setting it
	// implies Skip.
	Head string

	Verbose bool
}

// Item is one collected test item.
type Item struct {
	// ID is the test identifier, e.g. "web/test_app.py::test_login".
	ID string

	// Path is the file the item was collected from.
	Path string
}

// Result is the outcome of one executed test item.
type Result struct {
	ItemID string

	// Path is the source file of the item.
	Path string

	// Phase distinguishes setup/call/teardown reports; only "call" counts
	// toward recorded durations.
	Phase string

	// Duration is wall-clock seconds of the call phase.
	Duration float64

	Failed bool
}

// State is the per-run selection state. It is created by Configure and
// mutated only through phase methods; reporting reads it after Summarize.
type State struct {
	phase Phase

	ProjectRoot string
	SkipEnabled bool
	Verbose     bool
	Base        string
	Head        string

	// ChangedFiles is the resolved change-set: absolute paths, immutable
	// after Configure.
	ChangedFiles map[string]bool

	// RemovedPaths holds files actually dropped (skip enabled);
	// WouldSkipPaths holds hypothetical drops (skip disabled). They are
	// the same semantic set under two enablement states: exactly one is
	// populated per run.
	RemovedPaths   map[string]bool
	WouldSkipPaths map[string]bool

	RemovedItemCount int
	RanToCompletion  bool
}

// Configure resolves the change-set and builds the per-run state.
//
// Returns (nil, nil) when selection should silently stay disabled: change
// resolution failed and no skip flag was explicitly given. Returns a fatal
// usage error when resolution failed but skipping was explicitly requested.
func Configure(opts Options, resolver Resolver) (*State, error) {
	skipEnabled := opts.Skip || opts.Base != "" || opts.Head != ""

	base := opts.Base
	if base == "" {
		base = resolver.DefaultBranch(opts.ProjectRoot)
	}

	changed, err := resolver.Resolve(opts.ProjectRoot, base, opts.Head)
	if err != nil {
		if skipEnabled {
			return nil, errors.NewBaseUnresolvable(base, err)
		}
		return nil, nil
	}

	return &State{
		phase:          PhaseFilterFiles,
		ProjectRoot:    opts.ProjectRoot,
		SkipEnabled:    skipEnabled,
		Verbose:        opts.Verbose,
		Base:           base,
		Head:           opts.Head,
		ChangedFiles:   changed,
		RemovedPaths:   make(map[string]bool),
		WouldSkipPaths: make(map[string]bool),
	}, nil
}

// Phase returns the current lifecycle phase.
func (s *State) Phase() Phase {
	return s.phase
}

// AffectedPaths returns whichever removal set this run populated: actual
// removals when skipping is enabled, hypothetical ones otherwise.
func (s *State) AffectedPaths() map[string]bool {
	if s.SkipEnabled {
		return s.RemovedPaths
	}
	return s.WouldSkipPaths
}

func (s *State) requirePhase(want Phase) error {
	if s.phase != want {
		return errors.New(errors.InternalError,
			fmt.Sprintf("lifecycle called out of order: in %s, expected %s", s.phase, want), nil, nil)
	}
	return nil
}

func (s *State) isChanged(path string) bool {
	return s.ChangedFiles[paths.Resolve(path)]
}
