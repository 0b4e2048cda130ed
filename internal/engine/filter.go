package engine

// FileDecision is the tri-state outcome of collection-time filtering.
type FileDecision int

const (
	// FileKept means the oracle reported the file affected or
	// undeterminable.
	FileKept FileDecision = iota

	// FileForcedKeep means the file is itself in the change-set.
	FileForcedKeep

	// FileRemoved means the file's items are provably unaffected.
	FileRemoved
)

func (d FileDecision) String() string {
	switch d {
	case FileForcedKeep:
		return "forced-keep"
	case FileRemoved:
		return "removed"
	default:
		return "kept"
	}
}

// FilterFile decides one candidate test file's survivability before
// per-item collection. collected reports whether native collection produced
// anything for the file; when it did not, filtering is a pass-through so
// files excluded by other mechanisms are never re-added or counted.
//
// File-level filtering only saves collection cost: FilterItems re-checks
// every item and is authoritative.
func (s *State) FilterFile(oracle Oracle, path string, collected bool) (FileDecision, error) {
	if err := s.requirePhase(PhaseFilterFiles); err != nil {
		return FileKept, err
	}

	if !collected {
		return FileKept, nil
	}

	if s.isChanged(path) {
		return FileForcedKeep, nil
	}

	removable, err := oracle.IsRemovable(path)
	if err != nil {
		return FileKept, err
	}
	if !removable {
		return FileKept, nil
	}

	oracle.MarkRemoved(path)
	if s.SkipEnabled {
		s.RemovedPaths[path] = true
	} else {
		s.WouldSkipPaths[path] = true
	}
	return FileRemoved, nil
}

// FilterItems re-applies the removability check at item granularity and
// partitions the collected items in a single pass, so callers observe one
// consistent final list. The removal count is recorded regardless of
// enablement; the returned deselected slice is non-empty only when skipping
// is enabled.
func (s *State) FilterItems(oracle Oracle, items []Item) (kept []Item, deselected []Item, err error) {
	if err := s.requirePhase(PhaseFilterFiles); err != nil {
		return nil, nil, err
	}
	s.phase = PhaseFilterItems

	removable := make([]bool, len(items))
	count := 0
	for i, item := range items {
		if s.isChanged(item.Path) {
			continue
		}
		ok, oerr := oracle.IsRemovable(item.Path)
		if oerr != nil {
			return nil, nil, oerr
		}
		if ok {
			removable[i] = true
			count++
		}
	}
	s.RemovedItemCount = count

	s.phase = PhaseExecute

	if !s.SkipEnabled {
		return items, nil, nil
	}

	kept = make([]Item, 0, len(items)-count)
	deselected = make([]Item, 0, count)
	for i, item := range items {
		if removable[i] {
			deselected = append(deselected, item)
		} else {
			kept = append(kept, item)
		}
	}
	return kept, deselected, nil
}
