package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"sift/internal/errors"
	"sift/internal/gitops"
)

var (
	changesBase string
	changesHead string
)

var changesCmd = &cobra.Command{
	Use:   "changes",
	Short: "Print the resolved change-set",
	Long: `Resolves and prints the changed files sift would base selection on,
one root-relative path per line.`,
	RunE: runChanges,
}

func init() {
	changesCmd.Flags().StringVar(&changesBase, "base", "", "Base ref to diff against")
	changesCmd.Flags().StringVar(&changesHead, "head", "", "Head ref to diff to (empty = working tree)")
	rootCmd.AddCommand(changesCmd)
}

func runChanges(cmd *cobra.Command, args []string) error {
	p, err := openProject(false)
	if err != nil {
		return err
	}

	base := changesBase
	if base == "" {
		base = gitops.DefaultBranch(p.root)
	}

	changed, err := gitops.ChangedFiles(p.root, base, changesHead)
	if err != nil {
		return errors.NewBaseUnresolvable(base, err)
	}

	var rels []string
	for abs := range changed {
		if rel, err := filepath.Rel(p.root, abs); err == nil {
			rels = append(rels, filepath.ToSlash(rel))
		} else {
			rels = append(rels, abs)
		}
	}
	sort.Strings(rels)

	for _, rel := range rels {
		fmt.Println(rel)
	}
	return nil
}
