// Package constants defines shared constant values used throughout Nexus.
// Centralizing these magic strings improves maintainability and consistency.
package constants

import "time"

// Timing constants for supervision and monitoring.
const (
	// HeartbeatInterval is how often the heartbeat scheduler reports liveness.
	// Configurable via heartbeat.interval_seconds in nexus.toml.
	HeartbeatInterval = 60 * time.Second

	// StatusPollInterval is how often the status poller lists agent statuses.
	// Configurable via monitor.poll_seconds in nexus.toml.
	StatusPollInterval = 10 * time.Second

	// CommandTimeout is the default timeout for one-shot collaborator
	// script invocations (register, status, snapshot).
	CommandTimeout = 30 * time.Second

	// KillGracePeriod is how long a signaled process gets to exit before
	// the supervisor stops waiting for it.
	KillGracePeriod = 2 * time.Second
)

// Monitor session names. These are fixed system-wide: one event watcher and
// one status poller per working directory, regardless of how many agents
// register.
const (
	// SessionEventMonitor hosts the long-running event-log watcher.
	SessionEventMonitor = "event_monitor"

	// SessionAgentMonitor hosts the periodic agent-status lister.
	SessionAgentMonitor = "agent_monitor"
)

// File names for shared workspace state.
const (
	// FileEventLog is the append-only shared event log.
	FileEventLog = "events.log"

	// FileAgentStatus is the agent status registry.
	FileAgentStatus = "agent_status.json"

	// FileCommunication is the live communication transcript.
	FileCommunication = "communication.md"

	// FileArchive holds archived communications.
	FileArchive = "archive.md"

	// FileConfig is the optional workspace configuration file.
	FileConfig = "nexus.toml"
)

// Directory names within a Nexus workspace.
const (
	// DirLogs holds monitor output and other runtime logs.
	DirLogs = "logs"

	// DirScripts holds the collaborator shell scripts.
	DirScripts = "scripts"
)

// Collaborator script names under DirScripts. The supervision core never
// reimplements these; it only invokes them.
const (
	ScriptAgentStatus = "agent_status.sh"
	ScriptLogEvent    = "log_event.sh"
	ScriptWatchEvents = "watch_events.sh"
	ScriptSnapshot    = "generate_snapshot.sh"
)

// HeartbeatKeyPrefix starts every heartbeat pid-record owner key.
const HeartbeatKeyPrefix = "heartbeat_"

// HeartbeatOwnerKey returns the pid-record owner key for an agent's heartbeat.
func HeartbeatOwnerKey(agentID string) string {
	return HeartbeatKeyPrefix + agentID
}
