package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"sift/internal/config"
	"sift/internal/engine"
	"sift/internal/errors"
	"sift/internal/ledger"
	"sift/internal/logging"
	"sift/internal/report"
	"sift/internal/runner"
)

var (
	runSkip    bool
	runBase    string
	runHead    string
	runVerbose bool
)

var runCmd = &cobra.Command{
	Use:   "run [-- command...]",
	Short: "Run tests, skipping those unaffected by current changes",
	Long: `Runs the configured test command with change-aware selection.

Without --skip (or an explicit --base/--head), every test runs and sift only
reports which tests it would have skipped. With skipping enabled, unaffected
test files are dropped from the command line via the {{files}} placeholder.

A command given after -- overrides runner.command from sift.toml.

The exit code is the test command's own; selection never alters it.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runSkip, "skip", false, "Skip tests unaffected by current changes")
	runCmd.Flags().StringVar(&runBase, "base", "", "Base ref to diff against (implies --skip)")
	runCmd.Flags().StringVar(&runHead, "head", "", "Head ref to diff to (implies --skip; empty = working tree)")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Show changed files and the full skip list")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	p, err := openProject(runVerbose)
	if err != nil {
		if errors.CodeOf(err) == errors.ConfigMissing {
			// Without sift.toml sift behaves as if it were not installed:
			// a command given after -- still runs, untouched.
			if len(args) > 0 {
				return runBare(cmd.Context(), strings.Join(args, " "))
			}
			return errors.New(errors.ConfigMissing,
				"no "+config.ProjectConfigFile+" found; nothing to run", err,
				[]errors.FixAction{{
					Type:        errors.RunCommand,
					Command:     "sift init",
					Safe:        true,
					Description: "Create a default " + config.ProjectConfigFile,
				}})
		}
		return err
	}

	command := p.cfg.Runner.Command
	if len(args) > 0 {
		command = strings.Join(args, " ")
	}

	sel, err := runSelection(p, engine.Options{
		ProjectRoot: p.root,
		Skip:        runSkip,
		Base:        runBase,
		Head:        runHead,
		Verbose:     runVerbose,
	})
	if err != nil {
		return err
	}

	store := ledger.Open(filepath.Join(p.root, config.DataDirName), p.logger)
	defer store.Close()

	rep := report.New(report.DefaultColor(), runVerbose)

	if sel == nil {
		// Selection unavailable: run everything, exactly as if sift were
		// not installed.
		return execAndExit(cmd.Context(), p, store, nil, nil, command, nil)
	}

	estimate, hasEstimate := ledger.Estimate(store.Durations(), sel.state.AffectedPaths(), p.root)
	for _, line := range rep.CollectionLines(sel.state, estimate, hasEstimate) {
		fmt.Println(line)
	}

	return execAndExit(cmd.Context(), p, store, sel, rep, command, sel.keptFilePaths())
}

// runBare executes the command with no selection at all and exits with
// its code.
func runBare(ctx context.Context, command string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	outcome, err := runner.Run(ctx, runner.Options{
		Root:    cwd,
		Command: command,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	})
	if err != nil {
		return err
	}
	os.Exit(outcome.ExitCode)
	return nil
}

// execAndExit runs the test command, summarizes, reports validation
// findings, and persists durations as the final action. It terminates the
// process with the test command's exit code.
func execAndExit(ctx context.Context, p *project, store ledger.Store, sel *selection, rep *report.Reporter, command string, files []string) error {
	var items []engine.Item
	if sel != nil {
		items = sel.kept
	}

	// With skipping enabled a fully skipped run has nothing left to
	// execute when the command is file-driven.
	if sel != nil && sel.state.SkipEnabled &&
		strings.Contains(command, runner.FilesPlaceholder) && len(files) == 0 {
		finishRun(p, store, sel, rep, nil, time.Now())
		store.Close()
		os.Exit(0)
	}

	started := time.Now()
	outcome, err := runner.Run(ctx, runner.Options{
		Root:    p.root,
		Command: command,
		Report:  p.cfg.Runner.Report,
		Files:   files,
		Items:   items,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Logger:  p.logger,
	})
	if err != nil {
		return err
	}

	if sel != nil {
		finishRun(p, store, sel, rep, outcome.Results, started)
	}

	store.Close()
	os.Exit(outcome.ExitCode)
	return nil
}

// finishRun summarizes the engine run, prints the validation warning, and
// writes the ledger. The ledger write is deliberately the last action so a
// crash anywhere earlier leaves stored durations untouched.
func finishRun(p *project, store ledger.Store, sel *selection, rep *report.Reporter, results []engine.Result, started time.Time) {
	summary, err := sel.state.Summarize(results)
	if err != nil {
		p.logger.Error("summarize failed", logging.Fields{"error": err.Error()})
		return
	}

	for _, line := range rep.ValidationLines(summary.FailedWouldSkips) {
		fmt.Fprintln(os.Stderr, line)
	}

	if err := store.Record(summary.CallDurations); err != nil {
		p.logger.Warn("could not record durations", logging.Fields{"error": err.Error()})
	}
	if err := store.RecordRun(ledger.RunRecord{
		ID:           uuid.NewString(),
		StartedAt:    started,
		FinishedAt:   time.Now(),
		TotalItems:   len(sel.items),
		RemovedItems: sel.state.RemovedItemCount,
		SkipEnabled:  sel.state.SkipEnabled,
	}); err != nil {
		p.logger.Warn("could not record run", logging.Fields{"error": err.Error()})
	}
}
