package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"sift/internal/config"
	"sift/internal/engine"
	"sift/internal/gitops"
	"sift/internal/ledger"
	"sift/internal/report"
)

var (
	selectBase    string
	selectHead    string
	selectVerbose bool
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Show which tests would be skipped, without running anything",
	Long: `Resolves the change-set, filters the test suite, and prints what a
skip-enabled run would drop. Nothing executes; useful as a CI dry run.`,
	RunE: runSelect,
}

func init() {
	selectCmd.Flags().StringVar(&selectBase, "base", "", "Base ref to diff against")
	selectCmd.Flags().StringVar(&selectHead, "head", "", "Head ref to diff to (empty = working tree)")
	selectCmd.Flags().BoolVarP(&selectVerbose, "verbose", "v", false, "Show changed files and the full skip list")
	rootCmd.AddCommand(selectCmd)
}

func runSelect(cmd *cobra.Command, args []string) error {
	p, err := openProject(selectVerbose)
	if err != nil {
		return err
	}

	state, err := engine.Configure(engine.Options{
		ProjectRoot: p.root,
		Base:        selectBase,
		Head:        selectHead,
		Verbose:     selectVerbose,
	}, gitops.NewResolver())
	if err != nil {
		return err
	}
	if state == nil {
		fmt.Println("No change-set could be resolved; selection is disabled.")
		return nil
	}

	// Dry run: route removals through the would-skip set even when an
	// explicit base was given.
	state.SkipEnabled = false

	sel, err := filterWithState(p, state)
	if err != nil {
		return err
	}

	store := ledger.Open(filepath.Join(p.root, config.DataDirName), p.logger)
	defer store.Close()

	estimate, hasEstimate := ledger.Estimate(store.Durations(), state.WouldSkipPaths, p.root)

	rep := report.New(report.DefaultColor(), selectVerbose)
	lines := rep.CollectionLines(state, estimate, hasEstimate)
	if lines == nil {
		fmt.Printf("All %d collected tests are affected by current changes; nothing to skip.\n", len(sel.items))
		return nil
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}
