// Package scripts is the narrow command boundary to the collaborator shell
// scripts (agent registration, event logging, snapshots). The supervision core
// never reimplements these; every call is an external process invocation
// rooted at the workspace directory.
package scripts

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/nexuslabs/nexus/internal/constants"
)

// Runner invokes collaborator scripts for one workspace.
type Runner struct {
	// Dir is the workspace root containing the scripts/ directory.
	Dir string

	// goos and lookPath are capability probes, overridable in tests.
	goos     string
	lookPath func(file string) (string, error)
}

// NewRunner creates a runner for the workspace rooted at dir.
func NewRunner(dir string) *Runner {
	return &Runner{
		Dir:      dir,
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
	}
}

// Argv builds the argv for a collaborator script invocation. On Unix the
// script runs directly (scripts are made executable during scaffolding); on
// Windows it runs through a detected Git Bash interpreter, preferring
// bash.exe over sh.exe.
func (r *Runner) Argv(script string, args ...string) []string {
	rel := filepath.Join(constants.DirScripts, script)
	if r.goos == "windows" {
		shell := "sh.exe"
		if _, err := r.lookPath("bash.exe"); err == nil {
			shell = "bash.exe"
		}
		return append([]string{shell, rel}, args...)
	}
	return append([]string{"./" + rel}, args...)
}

// run executes a one-shot script invocation, discarding output.
func (r *Runner) run(ctx context.Context, script string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.CommandTimeout)
	defer cancel()

	argv := r.Argv(script, args...)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", script, argsSummary(args), err)
	}
	return nil
}

func argsSummary(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// RegisterAgent registers an agent in the shared status registry.
func (r *Runner) RegisterAgent(ctx context.Context, id, kind, description string) error {
	return r.run(ctx, constants.ScriptAgentStatus, "register", id, kind, description)
}

// SetStatus updates an agent's state and note in the status registry.
func (r *Runner) SetStatus(ctx context.Context, id, state, note string) error {
	return r.run(ctx, constants.ScriptAgentStatus, "status", id, state, note)
}

// ReportHeartbeat records a liveness proof for the agent. Idempotent; the
// heartbeat scheduler ignores failures by contract.
func (r *Runner) ReportHeartbeat(ctx context.Context, id string) error {
	return r.run(ctx, constants.ScriptAgentStatus, "heartbeat", id)
}

// SendMessage appends a broadcast message to the shared event log.
func (r *Runner) SendMessage(ctx context.Context, from, to, text string) error {
	payload, err := json.Marshal(map[string]string{
		"from":    from,
		"to":      to,
		"message": text,
	})
	if err != nil {
		return err
	}
	return r.run(ctx, constants.ScriptLogEvent, "message", string(payload))
}

// GenerateSnapshot produces a point-in-time snapshot of the collaboration state.
func (r *Runner) GenerateSnapshot(ctx context.Context) error {
	return r.run(ctx, constants.ScriptSnapshot)
}

// WatchEventsArgv returns the argv for the long-running event watcher.
func (r *Runner) WatchEventsArgv() []string {
	return r.Argv(constants.ScriptWatchEvents)
}

// ListStatusesArgv returns the argv for one status listing; the monitor
// supervisor wraps it in a polling loop.
func (r *Runner) ListStatusesArgv() []string {
	return r.Argv(constants.ScriptAgentStatus, "list")
}

// WatchEventsSignature is the command-line fragment identifying a running
// event watcher, used by the stale-process fallback scan.
func (r *Runner) WatchEventsSignature() string {
	return filepath.Join(constants.DirScripts, constants.ScriptWatchEvents)
}
