package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nexuslabs/nexus/internal/agent"
	"github.com/nexuslabs/nexus/internal/deps"
	"github.com/nexuslabs/nexus/internal/heartbeat"
	"github.com/nexuslabs/nexus/internal/pidfile"
	"github.com/nexuslabs/nexus/internal/scripts"
	"github.com/nexuslabs/nexus/internal/setup"
	"github.com/nexuslabs/nexus/internal/workspace"
)

var (
	setupID          string
	setupKind        string
	setupDescription string
	setupNoInput     bool
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Join the workspace as a new agent",
	Long: `Set up the collaboration workspace and register this agent.

Checks dependencies, scaffolds the workspace files, starts the background
monitors and keeps a liveness heartbeat running until interrupted. With no
flags and an interactive terminal, agent details are collected in a short
form; otherwise missing fields fall back to generated defaults.`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().StringVar(&setupID, "id", "", "Agent ID (e.g. agent1)")
	setupCmd.Flags().StringVar(&setupKind, "type", "", "Agent type (e.g. llm, coding, research)")
	setupCmd.Flags().StringVar(&setupDescription, "description", "", "Brief agent description")
	setupCmd.Flags().BoolVar(&setupNoInput, "no-input", false, "Never prompt; use flags and defaults")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	dir, cfg, err := loadWorkspace()
	if err != nil {
		return err
	}

	flagged := agent.Identity{ID: setupID, Kind: setupKind, Description: setupDescription}
	interactive := !setupNoInput && term.IsTerminal(int(os.Stdin.Fd()))
	id, err := resolveIdentity(flagged, interactive)
	if err != nil {
		return err
	}

	runner := scripts.NewRunner(dir)
	store := pidfile.NewStore(dir)
	scheduler := heartbeat.NewScheduler(store, runner, heartbeat.WithInterval(cfg.HeartbeatInterval()))

	orch := setup.NewOrchestrator(setup.Parts{
		Checker:   deps.NewChecker(),
		Installer: deps.NewInstaller(),
		Workspace: workspace.New(dir),
		Monitors:  newSupervisor(dir, cfg),
		Heartbeat: scheduler,
		Scripts:   runner,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := orch.Run(ctx, id); err != nil {
		return err
	}

	fmt.Println("Heartbeat running. Press Ctrl-C to leave the workspace.")
	<-ctx.Done()
	scheduler.Stop()
	fmt.Println("Heartbeat stopped.")
	return nil
}

// resolveIdentity fills in the agent identity from flags, the interactive
// form, or generated defaults, in that order.
func resolveIdentity(flagged agent.Identity, interactive bool) (agent.Identity, error) {
	if flagged.ID != "" && flagged.Kind != "" {
		return flagged, flagged.Validate()
	}
	if interactive {
		id, err := runSetupForm(flagged)
		if err != nil {
			return agent.Identity{}, err
		}
		return id, id.Validate()
	}
	id := withDefaults(flagged)
	return id, id.Validate()
}

// withDefaults fills empty identity fields with generated values.
func withDefaults(id agent.Identity) agent.Identity {
	if id.ID == "" {
		id.ID = agent.SuggestID()
	}
	if id.Kind == "" {
		id.Kind = "llm"
	}
	if id.Description == "" {
		id.Description = "Agent onboarded by nx setup"
	}
	return id
}
