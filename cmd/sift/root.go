package main

import (
	"sift/internal/version"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sift",
	Short: "sift - change-aware test selection",
	Long: `sift decides which tests are provably unaffected by the current change-set
and are therefore safe to skip. It resolves changes from git, walks the import
graph to find impacted test files, and keeps a persistent duration ledger so
it can tell you how much time skipping would save.

Selection is always conservative: when anything is uncertain the test runs.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate(version.Full() + "\n")
}
