package engine

import (
	"sort"

	"sift/internal/paths"
)

// Summary is the post-run view handed to the reporter.
type Summary struct {
	// FailedWouldSkips lists identifiers of tests that failed although
	// the oracle would have skipped them. Populated only in dry-run mode:
	// it is the evidence that enabling skip mode would have hidden real
	// failures.
	FailedWouldSkips []string

	// CallDurations maps executed test identifiers to their call-phase
	// durations, ready for the ledger merge.
	CallDurations map[string]float64
}

// Summarize closes the run. It must be the engine's final phase; the
// ledger write the caller performs with CallDurations is the run's last
// side effect.
func (s *State) Summarize(results []Result) (*Summary, error) {
	if err := s.requirePhase(PhaseExecute); err != nil {
		return nil, err
	}
	s.phase = PhaseSummarize
	s.RanToCompletion = true

	summary := &Summary{
		CallDurations: make(map[string]float64),
	}

	for _, r := range results {
		if r.Phase != "" && r.Phase != "call" {
			continue
		}
		summary.CallDurations[r.ItemID] = r.Duration
	}

	// Cross-reference failures against the would-skip set. Purely
	// observational: exit status is never touched here.
	if !s.SkipEnabled && len(s.WouldSkipPaths) > 0 {
		wouldSkip := make(map[string]bool, len(s.WouldSkipPaths))
		for p := range s.WouldSkipPaths {
			wouldSkip[paths.Resolve(p)] = true
		}
		for _, r := range results {
			if !r.Failed || r.Path == "" {
				continue
			}
			if wouldSkip[paths.Resolve(r.Path)] {
				summary.FailedWouldSkips = append(summary.FailedWouldSkips, r.ItemID)
			}
		}
		sort.Strings(summary.FailedWouldSkips)
	}

	return summary, nil
}
