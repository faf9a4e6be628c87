package cmd

import (
	"github.com/nexuslabs/nexus/internal/config"
	"github.com/nexuslabs/nexus/internal/launch"
	"github.com/nexuslabs/nexus/internal/monitor"
	"github.com/nexuslabs/nexus/internal/pidfile"
	"github.com/nexuslabs/nexus/internal/scripts"
)

// loadWorkspace resolves the workspace directory and its configuration.
// The --dir flag wins; with the default flag value, nexus.toml's
// workspace.root is honored.
func loadWorkspace() (string, *config.Config, error) {
	cfg, err := config.Load(workspaceDir)
	if err != nil {
		return "", nil, err
	}
	dir := workspaceDir
	if dir == "." && cfg.Workspace.Root != "" {
		dir = cfg.Workspace.Root
	}
	return dir, cfg, nil
}

// newSupervisor wires a monitor supervisor for the workspace.
func newSupervisor(dir string, cfg *config.Config) *monitor.Supervisor {
	store := pidfile.NewStore(dir)
	runner := scripts.NewRunner(dir)

	opts := []monitor.Option{monitor.WithPollInterval(cfg.PollInterval())}
	if s, ok := launch.ParseStrategy(cfg.Monitor.Multiplexer); ok {
		opts = append(opts, monitor.WithStrategy(s))
	}
	return monitor.NewSupervisor(store, launch.NewLauncher(dir), runner, opts...)
}
