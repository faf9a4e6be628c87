package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nexuslabs/nexus/internal/doctor"
)

var (
	doctorFix     bool
	doctorVerbose bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the workspace",
	Long: `Run health checks on the workspace: required tools, scaffolded
files, and whether the recorded monitor and heartbeat processes are still
alive. With --fix, fixable problems are repaired in place.`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Attempt to fix problems automatically")
	doctorCmd.Flags().BoolVarP(&doctorVerbose, "verbose", "v", false, "Show details for passing checks too")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	dir, _, err := loadWorkspace()
	if err != nil {
		return err
	}

	d := doctor.NewDoctor()
	d.Register(doctor.DefaultChecks()...)

	ctx := &doctor.CheckContext{Dir: dir, Verbose: doctorVerbose}
	var report *doctor.Report
	if doctorFix {
		report = d.Fix(ctx)
	} else {
		report = d.Run(ctx)
	}

	report.Print(os.Stdout, doctorVerbose)
	if report.HasErrors() {
		return fmt.Errorf("%d check(s) failed", report.Summary.Errors)
	}
	return nil
}
