package ledger

import (
	"strings"

	"sift/internal/paths"
)

// ScopeSeparator splits a test identifier into file part and scope
// qualifiers, e.g. "web/test_app.py::TestLogin::test_ok".
const ScopeSeparator = "::"

// FilePart returns the file portion of a test identifier.
func FilePart(testID string) string {
	if idx := strings.Index(testID, ScopeSeparator); idx >= 0 {
		return testID[:idx]
	}
	return testID
}

// Estimate sums the cached durations of every entry whose file part
// resolves into removedPaths. The boolean result is false when there is
// nothing to estimate — an absent estimate, distinct from zero, so callers
// can omit it instead of reporting "0s saved".
func Estimate(durations map[string]float64, removedPaths map[string]bool, root string) (float64, bool) {
	if len(removedPaths) == 0 || len(durations) == 0 {
		return 0, false
	}

	resolved := make(map[string]bool, len(removedPaths))
	for p := range removedPaths {
		resolved[paths.ResolveUnder(root, p)] = true
	}

	total := 0.0
	matched := false
	for id, secs := range durations {
		if resolved[paths.ResolveUnder(root, FilePart(id))] {
			total += secs
			matched = true
		}
	}
	if !matched || total <= 0 {
		return 0, false
	}
	return total, true
}
