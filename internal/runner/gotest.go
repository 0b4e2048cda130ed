package runner

import (
	"bufio"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"time"

	"sift/internal/engine"
)

// goTestEvent is one line of `go test -json` output (test2json format).
type goTestEvent struct {
	Time    time.Time `json:"Time"`
	Action  string    `json:"Action"`
	Package string    `json:"Package"`
	Test    string    `json:"Test"`
	Elapsed float64   `json:"Elapsed"`
	Output  string    `json:"Output"`
}

// ParseGoTestEvents reads a `go test -json` stream and produces one Result
// per top-level test. Subtests fold into their root test; package-level
// events (compile, summary) carry no test name and are ignored, which is
// what keeps recorded durations at the "call" granularity.
//
// items is used to attach file paths to results. A test name shared by
// several items is disambiguated against the event's package import path;
// results that cannot be attributed to exactly one item keep an empty path.
func ParseGoTestEvents(r io.Reader, items []engine.Item) ([]engine.Result, error) {
	byName := make(map[string][]engine.Item, len(items))
	for _, item := range items {
		name := item.ID
		if idx := strings.LastIndex(name, "::"); idx >= 0 {
			name = name[idx+2:]
		}
		byName[name] = append(byName[name], item)
	}

	var results []engine.Result
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "{") {
			continue
		}
		var ev goTestEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			// Interleaved non-JSON output is normal when the command
			// mixes streams.
			continue
		}

		if ev.Test == "" || strings.Contains(ev.Test, "/") {
			continue
		}
		if ev.Action != "pass" && ev.Action != "fail" {
			continue
		}

		result := engine.Result{
			Phase:    "call",
			Duration: ev.Elapsed,
			Failed:   ev.Action == "fail",
		}
		if item, ok := matchItem(byName[ev.Test], ev.Package); ok {
			result.ItemID = item.ID
			result.Path = item.Path
		} else {
			result.ItemID = ev.Package + "::" + ev.Test
		}
		results = append(results, result)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// matchItem attributes an event to one collected item. A unique name wins
// outright; ambiguous names are resolved by comparing the event's package
// import path against each item's directory, and anything still ambiguous
// stays unattributed rather than guessing.
func matchItem(candidates []engine.Item, pkg string) (engine.Item, bool) {
	if len(candidates) == 1 {
		return candidates[0], true
	}

	var best engine.Item
	bestScore, bestCount := 0, 0
	for _, item := range candidates {
		score := pkgDirScore(pkg, filepath.Dir(item.Path))
		switch {
		case score > bestScore:
			best, bestScore, bestCount = item, score, 1
		case score == bestScore && score > 0:
			bestCount++
		}
	}
	if bestScore > 0 && bestCount == 1 {
		return best, true
	}
	return engine.Item{}, false
}

// pkgDirScore counts matching trailing segments between a package import
// path and a directory path.
func pkgDirScore(pkg, dir string) int {
	ps := strings.Split(pkg, "/")
	ds := strings.Split(filepath.ToSlash(dir), "/")

	n := 0
	for n < len(ps) && n < len(ds) {
		if ps[len(ps)-1-n] != ds[len(ds)-1-n] {
			break
		}
		n++
	}
	return n
}
