package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nexuslabs/nexus/internal/constants"
	"github.com/nexuslabs/nexus/internal/deps"
	"github.com/nexuslabs/nexus/internal/pidfile"
	"github.com/nexuslabs/nexus/internal/proc"
	"github.com/nexuslabs/nexus/internal/workspace"
)

// DependencyCheck verifies the required external tools and can install the
// missing ones.
type DependencyCheck struct {
	FixableCheck
	checker interface {
		Check() []deps.Result
	}
	installer interface {
		Install(missing []deps.Tool) error
	}
}

// NewDependencyCheck creates the dependency check.
func NewDependencyCheck() *DependencyCheck {
	c := &DependencyCheck{checker: deps.NewChecker(), installer: deps.NewInstaller()}
	c.CheckName = "dependencies"
	return c
}

func (c *DependencyCheck) Run(ctx *CheckContext) *CheckResult {
	results := c.checker.Check()

	var details []string
	var warned bool
	for _, r := range results {
		switch r.Status {
		case deps.StatusOK:
			if r.Version != "" {
				details = append(details, r.Tool.Name+" "+r.Version)
			} else {
				details = append(details, r.Tool.Name+" present")
			}
		case deps.StatusTooOld:
			warned = true
			details = append(details, fmt.Sprintf("%s %s is older than %s", r.Tool.Name, r.Version, deps.MinJqVersion))
		case deps.StatusExecFailed, deps.StatusUnknown:
			warned = true
			details = append(details, fmt.Sprintf("%s version probe failed: %s", r.Tool.Name, r.Detail))
		}
	}

	missing := deps.Missing(results)
	if len(missing) > 0 {
		names := make([]string, len(missing))
		for i, tool := range missing {
			names[i] = tool.Name
		}
		return &CheckResult{
			Status:  StatusError,
			Message: "missing: " + strings.Join(names, ", "),
			Details: details,
			FixHint: "run nx doctor --fix, or install manually",
		}
	}
	if warned {
		return &CheckResult{Status: StatusWarning, Message: "installed with version issues", Details: details}
	}
	return &CheckResult{Status: StatusOK, Message: "all tools installed", Details: details}
}

func (c *DependencyCheck) Fix(ctx *CheckContext) error {
	return c.installer.Install(deps.Missing(c.checker.Check()))
}

// WorkspaceCheck verifies the scaffolded workspace files and can re-scaffold.
type WorkspaceCheck struct {
	FixableCheck
}

// NewWorkspaceCheck creates the workspace check.
func NewWorkspaceCheck() *WorkspaceCheck {
	c := &WorkspaceCheck{}
	c.CheckName = "workspace"
	return c
}

func (c *WorkspaceCheck) Run(ctx *CheckContext) *CheckResult {
	required := []string{
		constants.DirLogs,
		constants.FileEventLog,
		constants.FileAgentStatus,
		constants.FileCommunication,
		constants.FileArchive,
	}

	var missing []string
	for _, name := range required {
		if _, err := os.Stat(filepath.Join(ctx.Dir, name)); err != nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &CheckResult{
			Status:  StatusError,
			Message: "workspace files missing",
			Details: missing,
			FixHint: "run nx doctor --fix, or nx setup",
		}
	}
	return &CheckResult{Status: StatusOK, Message: "all workspace files present"}
}

func (c *WorkspaceCheck) Fix(ctx *CheckContext) error {
	return workspace.New(ctx.Dir).Scaffold()
}

// MonitorCheck verifies the recorded monitor processes are alive.
type MonitorCheck struct {
	BaseCheck
	alive func(pid int) bool
}

// NewMonitorCheck creates the monitor check.
func NewMonitorCheck() *MonitorCheck {
	c := &MonitorCheck{alive: proc.Alive}
	c.CheckName = "monitors"
	return c
}

func (c *MonitorCheck) Run(ctx *CheckContext) *CheckResult {
	store := pidfile.NewStore(ctx.Dir)

	var running, stopped, stale []string
	for _, session := range []string{constants.SessionEventMonitor, constants.SessionAgentMonitor} {
		pid, err := store.Read(session)
		if err != nil {
			stopped = append(stopped, session)
			continue
		}
		if c.alive(pid) {
			running = append(running, fmt.Sprintf("%s (pid %d)", session, pid))
		} else {
			stale = append(stale, fmt.Sprintf("%s record points at dead pid %d", session, pid))
		}
	}

	switch {
	case len(stale) > 0:
		return &CheckResult{
			Status:  StatusError,
			Message: "stale monitor records",
			Details: stale,
			FixHint: "run nx monitor start",
		}
	case len(stopped) == 2:
		return &CheckResult{
			Status:  StatusWarning,
			Message: "monitors not running",
			FixHint: "run nx monitor start",
		}
	case len(stopped) == 1:
		return &CheckResult{
			Status:  StatusWarning,
			Message: stopped[0] + " not running",
			Details: running,
			FixHint: "run nx monitor start",
		}
	default:
		return &CheckResult{Status: StatusOK, Message: "both monitors running", Details: running}
	}
}

// HeartbeatCheck verifies every recorded heartbeat owner is alive.
type HeartbeatCheck struct {
	BaseCheck
	alive func(pid int) bool
}

// NewHeartbeatCheck creates the heartbeat check.
func NewHeartbeatCheck() *HeartbeatCheck {
	c := &HeartbeatCheck{alive: proc.Alive}
	c.CheckName = "heartbeats"
	return c
}

func (c *HeartbeatCheck) Run(ctx *CheckContext) *CheckResult {
	store := pidfile.NewStore(ctx.Dir)
	keys, err := store.List()
	if err != nil {
		return &CheckResult{Status: StatusError, Message: "cannot list pid records", Details: []string{err.Error()}}
	}

	var live, stale []string
	for _, key := range keys {
		id, ok := strings.CutPrefix(key, constants.HeartbeatKeyPrefix)
		if !ok {
			continue
		}
		pid, err := store.Read(key)
		if err != nil {
			continue
		}
		if c.alive(pid) {
			live = append(live, fmt.Sprintf("%s (pid %d)", id, pid))
		} else {
			stale = append(stale, fmt.Sprintf("%s record points at dead pid %d", id, pid))
		}
	}

	if len(stale) > 0 {
		return &CheckResult{
			Status:  StatusWarning,
			Message: "stale heartbeat records",
			Details: append(live, stale...),
			FixHint: "run nx down to clear them",
		}
	}
	if len(live) == 0 {
		return &CheckResult{Status: StatusOK, Message: "no heartbeats recorded"}
	}
	return &CheckResult{Status: StatusOK, Message: fmt.Sprintf("%d heartbeat(s) alive", len(live)), Details: live}
}

// DefaultChecks returns the standard workspace check set.
func DefaultChecks() []Check {
	return []Check{
		NewDependencyCheck(),
		NewWorkspaceCheck(),
		NewMonitorCheck(),
		NewHeartbeatCheck(),
	}
}
