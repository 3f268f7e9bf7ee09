package main

import (
	"github.com/spf13/cobra"

	"github.com/kubev2v/coach-importer/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "coach-importer",
	Short: "coach-importer loads coaching staff workbooks into the coaches database.",
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(cli.NewCmdImport())
}
