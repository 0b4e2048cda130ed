package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sift/internal/config"
	"sift/internal/errors"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize sift configuration",
	Long:  "Writes a default " + config.ProjectConfigFile + " in the current directory",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing "+config.ProjectConfigFile)
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return errors.New(errors.InternalError, "Failed to get current directory", err, nil)
	}

	configPath := filepath.Join(cwd, config.ProjectConfigFile)
	if _, statErr := os.Stat(configPath); statErr == nil && !initForce {
		// Idempotent: already initialized is success (CI-friendly).
		fmt.Println("sift already initialized.")
		fmt.Printf("Configuration at: %s\n", configPath)
		fmt.Println("\nRun 'sift init --force' to overwrite with defaults.")
		return nil
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(cwd); err != nil {
		return errors.New(errors.InternalError, "Failed to write "+config.ProjectConfigFile, err, nil)
	}

	fmt.Printf("Wrote %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Adjust runner.command for your test suite")
	fmt.Println("  2. Optionally declare modules in modules.toml")
	fmt.Println("  3. Try it: sift run")
	return nil
}
