package runner

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"sift/internal/engine"
	"sift/internal/errors"
	"sift/internal/logging"
)

// FilesPlaceholder in the command template expands to the kept test files.
const FilesPlaceholder = "{{files}}"

// ReportGoTestJSON selects test2json parsing of the command output.
const ReportGoTestJSON = "gotest-json"

// Options configures one command execution.
type Options struct {
	Root    string
	Command string

	// Report is "gotest-json" or "none".
	Report string

	// Files are the kept test files; root-relative forms replace
	// {{files}} in the command.
	Files []string

	// Items are the kept test items, used to attach paths to parsed
	// results.
	Items []engine.Item

	Stdout io.Writer
	Stderr io.Writer
	Logger *logging.Logger
}

// Outcome is the observable result of one command execution.
type Outcome struct {
	ExitCode int
	Results  []engine.Result
	Duration time.Duration
}

// Run executes the test command and, when a report format is configured,
// parses per-test results out of its output. A non-zero exit from the
// command is not an error here: the exit code is the host's to propagate.
func Run(ctx context.Context, opts Options) (*Outcome, error) {
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(logging.Config{Level: logging.ErrorLevel})
	}

	command := expandCommand(opts.Command, opts.Root, opts.Files)
	opts.Logger.Debug("running test command", logging.Fields{"command": command})

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = opts.Root
	cmd.Stderr = opts.Stderr

	var captured bytes.Buffer
	if opts.Report == ReportGoTestJSON {
		cmd.Stdout = io.MultiWriter(&captured, opts.Stdout)
	} else {
		cmd.Stdout = opts.Stdout
	}

	start := time.Now()
	err := cmd.Run()
	outcome := &Outcome{Duration: time.Since(start)}

	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return nil, errors.New(errors.RunnerFailed, "could not run test command", err, nil)
		}
		outcome.ExitCode = exitErr.ExitCode()
	}

	if opts.Report == ReportGoTestJSON {
		results, perr := ParseGoTestEvents(&captured, opts.Items)
		if perr != nil {
			opts.Logger.Warn("could not parse test report", logging.Fields{"error": perr.Error()})
		} else {
			outcome.Results = results
		}
	}

	return outcome, nil
}

// expandCommand substitutes the files placeholder with root-relative
// paths. Commands without the placeholder run unchanged.
func expandCommand(command, root string, files []string) string {
	if !strings.Contains(command, FilesPlaceholder) {
		return command
	}

	rels := make([]string, 0, len(files))
	for _, f := range files {
		if rel, err := filepath.Rel(root, f); err == nil {
			rels = append(rels, filepath.ToSlash(rel))
		} else {
			rels = append(rels, f)
		}
	}
	return strings.ReplaceAll(command, FilesPlaceholder, strings.Join(rels, " "))
}
