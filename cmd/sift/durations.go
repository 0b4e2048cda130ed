package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"sift/internal/config"
	"sift/internal/ledger"
	"sift/internal/report"
)

var (
	durationsTop    int
	durationsFormat string
)

var durationsCmd = &cobra.Command{
	Use:   "durations",
	Short: "Inspect the recorded test durations",
	Long: `Lists the per-test durations sift has recorded across runs, slowest
first. These are what back the "time saved" estimates.`,
	RunE: runDurations,
}

var durationsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded durations as YAML or JSON",
	RunE:  runDurationsExport,
}

var durationsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop all recorded durations",
	RunE:  runDurationsClear,
}

func init() {
	durationsCmd.Flags().IntVar(&durationsTop, "top", 0, "Show only the N slowest tests")
	durationsExportCmd.Flags().StringVar(&durationsFormat, "format", "yaml", "Output format: yaml or json")
	durationsCmd.AddCommand(durationsExportCmd)
	durationsCmd.AddCommand(durationsClearCmd)
	rootCmd.AddCommand(durationsCmd)
}

func openStore(p *project) ledger.Store {
	return ledger.Open(filepath.Join(p.root, config.DataDirName), p.logger)
}

func runDurations(cmd *cobra.Command, args []string) error {
	p, err := openProject(false)
	if err != nil {
		return err
	}
	store := openStore(p)
	defer store.Close()

	if !store.Available() {
		fmt.Println("No duration store available.")
		return nil
	}

	entries := store.Entries()
	if len(entries) == 0 {
		fmt.Println("No durations recorded yet. Run 'sift run' first.")
		return nil
	}
	if durationsTop > 0 && len(entries) > durationsTop {
		entries = entries[:durationsTop]
	}

	for _, e := range entries {
		recorded := ""
		if !e.Recorded.IsZero() {
			recorded = "  (" + e.Recorded.Format("2006-01-02") + ")"
		}
		fmt.Printf("%10s  %s%s\n", report.FormatDuration(e.Seconds), e.TestID, recorded)
	}
	return nil
}

func runDurationsExport(cmd *cobra.Command, args []string) error {
	p, err := openProject(false)
	if err != nil {
		return err
	}
	store := openStore(p)
	defer store.Close()

	durations := store.Durations()

	switch durationsFormat {
	case "yaml":
		return yaml.NewEncoder(os.Stdout).Encode(durations)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(durations)
	default:
		return fmt.Errorf("unknown format %q (want yaml or json)", durationsFormat)
	}
}

func runDurationsClear(cmd *cobra.Command, args []string) error {
	p, err := openProject(false)
	if err != nil {
		return err
	}
	store := openStore(p)
	defer store.Close()

	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Println("Recorded durations cleared.")
	return nil
}
