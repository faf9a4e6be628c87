package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nexuslabs/nexus/internal/style"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Manage the background monitors",
}

var monitorStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the event watcher and status poller",
	Long: `Start the background monitors for the workspace.

Any monitors left over from a previous run are terminated first, so at most
one event watcher is running afterwards.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, cfg, err := loadWorkspace()
		if err != nil {
			return err
		}
		sup := newSupervisor(dir, cfg)
		if err := sup.Start(); err != nil {
			return err
		}
		style.PrintSuccess("Monitors started (%s).", sup.Strategy())
		return nil
	},
}

var monitorStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background monitors",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, cfg, err := loadWorkspace()
		if err != nil {
			return err
		}
		if err := newSupervisor(dir, cfg).Stop(); err != nil {
			return err
		}
		style.PrintSuccess("Monitors stopped.")
		return nil
	},
}

func init() {
	monitorCmd.AddCommand(monitorStartCmd)
	monitorCmd.AddCommand(monitorStopCmd)
	rootCmd.AddCommand(monitorCmd)
}
