// Package report renders selection results as an ordered sequence of text
// lines.
//
// The host summary hook expects returned lines rather than direct printing,
// so everything here builds strings; styling is embedded ANSI when color is
// on.
package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"sift/internal/engine"
	"sift/internal/paths"
)

// EnableCommand is the exact command reported for turning skipping on.
const EnableCommand = "sift run --skip"

// DisableHint names what to remove to silence selection reports entirely.
const DisableHint = "sift.toml"

// maxListedPaths caps path lists in non-verbose mode.
const maxListedPaths = 5

// DefaultColor decides whether styled output should be produced: NO_COLOR
// wins, SIFT_COLOR=always forces on, otherwise follow the terminal.
func DefaultColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("SIFT_COLOR") == "always" {
		return true
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

type styles struct {
	prefix lipgloss.Style
	green  lipgloss.Style
	yellow lipgloss.Style
	bold   lipgloss.Style
	dim    lipgloss.Style
}

func newStyles(color bool) styles {
	profile := termenv.Ascii
	if color {
		profile = termenv.ANSI
	}
	r := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(profile))
	r.SetColorProfile(profile)
	return styles{
		prefix: r.NewStyle().Foreground(lipgloss.Color("6")),
		green:  r.NewStyle().Foreground(lipgloss.Color("2")),
		yellow: r.NewStyle().Foreground(lipgloss.Color("3")),
		bold:   r.NewStyle().Bold(true),
		dim:    r.NewStyle().Faint(true),
	}
}

// Reporter renders one run's selection state.
type Reporter struct {
	s       styles
	verbose bool
}

// New creates a Reporter. verbose expands path lists and adds the
// changed-file section.
func New(color, verbose bool) *Reporter {
	return &Reporter{s: newStyles(color), verbose: verbose}
}

func (r *Reporter) tag() string {
	return r.s.prefix.Render("[sift]")
}

// CollectionLines renders the post-collection summary. hasEstimate guards
// the duration annotation: absence means omit, never "0s saved".
func (r *Reporter) CollectionLines(state *engine.State, estimate float64, hasEstimate bool) []string {
	numTests := state.RemovedItemCount
	if numTests == 0 {
		return nil
	}

	affected := sortedPaths(state.AffectedPaths(), state.ProjectRoot)
	numFiles := len(affected)
	tag := r.tag()

	var lines []string

	if state.SkipEnabled {
		if state.Verbose || r.verbose {
			lines = append(lines, r.changedSection(state)...)
		}

		annotation := ""
		if hasEstimate {
			annotation = " (" + r.s.green.Render("~"+FormatDuration(estimate)+" saved") + ")"
		}
		lines = append(lines, fmt.Sprintf("%s %s %d %s (%d %s)%s - unaffected by current changes.",
			tag, r.s.green.Render("Skipped"),
			numTests, pluralize("test", numTests),
			numFiles, pluralize("file", numFiles),
			annotation))
		lines = append(lines, r.pathList(affected, r.s.green.Render("-"))...)
		return lines
	}

	annotation := ""
	if hasEstimate {
		annotation = " (" + r.s.yellow.Render("~"+FormatDuration(estimate)+" could be saved") + ")"
	}
	lines = append(lines, fmt.Sprintf("%s %d %s in %d %s unaffected by changes%s. Skip with: %s",
		tag,
		numTests, pluralize("test", numTests),
		numFiles, pluralize("file", numFiles),
		annotation,
		r.s.bold.Render(EnableCommand)))

	if state.Verbose || r.verbose {
		lines = append(lines, r.changedSection(state)...)
		lines = append(lines, tag+" Would skip:")
	}
	lines = append(lines, r.pathList(affected, r.s.yellow.Render("?"))...)
	lines = append(lines, tag+" "+r.s.dim.Render("To disable these reports, remove "+DisableHint+"."))
	return lines
}

// ValidationLines renders the dry-run safety-net warning for would-skip
// tests that actually failed.
func (r *Reporter) ValidationLines(failed []string) []string {
	if len(failed) == 0 {
		return nil
	}

	tag := r.tag()
	lines := []string{
		r.s.bold.Render("==== impact selection warning ===="),
		fmt.Sprintf("%s %s", tag, r.s.bold.Render(r.s.yellow.Render(
			fmt.Sprintf("WARNING: %d %s failed that would be skipped by impact selection!",
				len(failed), pluralize("test", len(failed)))))),
		fmt.Sprintf("%s %s", tag, r.s.yellow.Render("These failures would be missed when using "+EnableCommand+":")),
	}
	for _, id := range failed {
		lines = append(lines, fmt.Sprintf("%s   - %s", tag, r.s.yellow.Render(id)))
	}
	return lines
}

// changedSection lists the resolved change-set (verbose mode only).
func (r *Reporter) changedSection(state *engine.State) []string {
	if len(state.ChangedFiles) == 0 {
		return nil
	}

	changed := sortedPaths(state.ChangedFiles, state.ProjectRoot)
	tag := r.tag()
	lines := []string{fmt.Sprintf("%s %d %s changed:", tag, len(changed), pluralize("file", len(changed)))}
	for _, p := range changed {
		lines = append(lines, fmt.Sprintf("%s   %s %s", tag, r.s.green.Render("+"), r.s.dim.Render(p)))
	}
	return lines
}

// pathList renders paths with a marker, truncated unless verbose.
func (r *Reporter) pathList(paths []string, marker string) []string {
	tag := r.tag()
	shown := paths
	if !r.verbose && len(paths) > maxListedPaths {
		shown = paths[:maxListedPaths]
	}

	lines := make([]string, 0, len(shown)+1)
	for _, p := range shown {
		lines = append(lines, fmt.Sprintf("%s   %s %s", tag, marker, r.s.dim.Render(p)))
	}
	if len(shown) < len(paths) {
		lines = append(lines, fmt.Sprintf("%s   %s", tag,
			r.s.dim.Render(fmt.Sprintf("... and %d more", len(paths)-len(shown)))))
	}
	return lines
}

// FormatDuration renders seconds in a human-readable form.
func FormatDuration(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}
	minutes := int(seconds) / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %.0fs", minutes, seconds-float64(minutes*60))
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func pluralize(word string, count int) string {
	if count == 1 {
		return word
	}
	return word + "s"
}

// sortedPaths renders a path set root-relative where possible; paths
// outside root stay as given.
func sortedPaths(set map[string]bool, root string) []string {
	out := make([]string, 0, len(set))
	for p := range set {
		if rel, err := paths.Canonicalize(p, root); err == nil && !strings.HasPrefix(rel, "..") {
			p = rel
		}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
