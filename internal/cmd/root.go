// Package cmd implements the nx command-line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var workspaceDir string

var rootCmd = &cobra.Command{
	Use:   "nx",
	Short: "Multi-agent collaboration workspace tool",
	Long: `nx manages a shared multi-agent collaboration workspace.

It onboards agents into the workspace, keeps their liveness heartbeats
running, and supervises the background event and status monitors.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspaceDir, "dir", "C", ".", "Workspace directory")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
