// Package setup orchestrates workspace onboarding: dependency check,
// scaffolding, monitor bring-up, agent registration and the heartbeat. A
// missing dependency that cannot be installed aborts setup; every later step
// degrades with a warning so a flaky collaborator never blocks joining.
package setup

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nexuslabs/nexus/internal/agent"
	"github.com/nexuslabs/nexus/internal/constants"
	"github.com/nexuslabs/nexus/internal/deps"
	"github.com/nexuslabs/nexus/internal/style"
)

type dependencyChecker interface {
	Check() []deps.Result
}

type dependencyInstaller interface {
	Install(missing []deps.Tool) error
}

type scaffolder interface {
	Scaffold() error
}

type monitorSupervisor interface {
	Start() error
}

type heartbeatStarter interface {
	Start(ctx context.Context, agentID string) error
}

// collaborator is the subset of scripts.Runner setup calls.
type collaborator interface {
	RegisterAgent(ctx context.Context, id, kind, description string) error
	SetStatus(ctx context.Context, id, state, note string) error
	SendMessage(ctx context.Context, from, to, text string) error
	GenerateSnapshot(ctx context.Context) error
	Argv(script string, args ...string) []string
}

// Parts are the collaborating components of one setup run.
type Parts struct {
	Checker   dependencyChecker
	Installer dependencyInstaller
	Workspace scaffolder
	Monitors  monitorSupervisor
	Heartbeat heartbeatStarter
	Scripts   collaborator
}

// Orchestrator runs the setup flow end to end.
type Orchestrator struct {
	parts Parts
	out   io.Writer
	goos  string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithOutput redirects operator-facing output (default stdout).
func WithOutput(w io.Writer) Option {
	return func(o *Orchestrator) { o.out = w }
}

// NewOrchestrator assembles an orchestrator from pre-built parts.
func NewOrchestrator(parts Parts, opts ...Option) *Orchestrator {
	o := &Orchestrator{parts: parts, out: os.Stdout, goos: runtime.GOOS}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes the setup flow for the given agent. The context governs the
// collaborator script calls and the heartbeat lifetime.
func (o *Orchestrator) Run(ctx context.Context, id agent.Identity) error {
	if err := id.Validate(); err != nil {
		return err
	}

	style.PrintBanner(o.out)
	fmt.Fprintf(o.out, "Detected operating system: %s\n\n", osDisplayName(o.goos))

	style.PrintStep(1, 5, "Checking dependencies...")
	if err := o.ensureDependencies(); err != nil {
		return err
	}

	style.PrintStep(2, 5, "Setting up workspace...")
	if err := o.parts.Workspace.Scaffold(); err != nil {
		return fmt.Errorf("scaffolding workspace: %w", err)
	}

	style.PrintStep(3, 5, "Starting system services...")
	if err := o.parts.Monitors.Start(); err != nil {
		style.PrintWarning("monitor startup: %v", err)
	}

	style.PrintStep(4, 5, "Registering agent %s...", id.ID)
	if err := o.parts.Scripts.RegisterAgent(ctx, id.ID, id.Kind, id.Description); err != nil {
		style.PrintWarning("registering agent: %v", err)
	}
	if err := o.parts.Scripts.SetStatus(ctx, id.ID, "active", "Starting up and ready for collaboration"); err != nil {
		style.PrintWarning("setting initial status: %v", err)
	}

	style.PrintStep(5, 5, "Starting automatic heartbeat...")
	if err := o.parts.Heartbeat.Start(ctx, id.ID); err != nil {
		style.PrintWarning("starting heartbeat: %v", err)
	}

	welcome := fmt.Sprintf("%s agent '%s' has joined the collaboration.", id.Kind, id.ID)
	if err := o.parts.Scripts.SendMessage(ctx, id.ID, "all", welcome); err != nil {
		style.PrintWarning("sending welcome message: %v", err)
	}
	if err := o.parts.Scripts.GenerateSnapshot(ctx); err != nil {
		style.PrintWarning("generating snapshot: %v", err)
	}

	style.PrintSuccess("Setup complete!")
	fmt.Fprintf(o.out, "Your agent ID %s is registered and active.\n", style.Render(style.Accent, id.ID))
	fmt.Fprintln(o.out, "You can now begin collaborating with other agents.")
	o.printQuickReference(id.ID)
	return nil
}

// ensureDependencies probes the required tools and installs the missing
// ones. This is the only fatal path in the flow.
func (o *Orchestrator) ensureDependencies() error {
	results := o.parts.Checker.Check()
	for _, r := range results {
		switch r.Status {
		case deps.StatusOK:
			if r.Version != "" {
				fmt.Fprintf(o.out, "  %s %s\n", r.Tool.Name, r.Version)
			}
		case deps.StatusTooOld:
			style.PrintWarning("%s %s is older than %s; some workspace scripts may misbehave", r.Tool.Name, r.Version, deps.MinJqVersion)
		case deps.StatusExecFailed, deps.StatusUnknown:
			style.PrintWarning("could not determine %s version: %s", r.Tool.Name, r.Detail)
		}
	}

	missing := deps.Missing(results)
	if len(missing) == 0 {
		style.PrintSuccess("All dependencies are installed.")
		return nil
	}
	if err := o.parts.Installer.Install(missing); err != nil {
		return fmt.Errorf("setup cannot continue: %w", err)
	}
	style.PrintSuccess("Dependencies installed successfully.")
	return nil
}

// printQuickReference prints copy-pasteable commands for the collaborator
// scripts, prefixed correctly for the platform.
func (o *Orchestrator) printQuickReference(agentID string) {
	fmt.Fprintln(o.out)
	fmt.Fprintln(o.out, style.Render(style.Header, "=== Quick Reference Commands ==="))

	ref := []struct {
		label string
		argv  []string
	}{
		{"Send message", o.parts.Scripts.Argv(constants.ScriptLogEvent, "message", fmt.Sprintf(`{"from":"%s","to":"all","message":"Hello"}`, agentID))},
		{"Make proposal", o.parts.Scripts.Argv(constants.ScriptLogEvent, "proposal", fmt.Sprintf(`{"from":"%s","component":"X","description":"Y"}`, agentID))},
		{"Update status", o.parts.Scripts.Argv(constants.ScriptAgentStatus, "status", agentID, "active", "Working on task X")},
		{"List agents", o.parts.Scripts.Argv(constants.ScriptAgentStatus, "list")},
		{"Generate snapshot", o.parts.Scripts.Argv(constants.ScriptSnapshot)},
	}
	for _, r := range ref {
		fmt.Fprintf(o.out, "  %-18s %s\n", r.label+":", style.Render(style.Command, strings.Join(r.argv, " ")))
	}
	fmt.Fprintf(o.out, "  %-18s %s\n", "View messages:", style.Render(style.Command, "cat "+constants.FileCommunication))
	fmt.Fprintln(o.out)
}

// osDisplayName renders a GOOS value for operator output.
func osDisplayName(goos string) string {
	switch goos {
	case "darwin":
		return "macOS"
	case "linux", "windows":
		return cases.Title(language.English).String(goos)
	}
	return goos
}
