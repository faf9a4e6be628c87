// Package launch starts long-running monitor commands under the best
// available hosting strategy: a named screen or tmux session, a detached
// background process, or a new console window on Windows. The strategy is
// probed once per run and every launch returns a handle sufficient for later
// duplicate detection and teardown.
package launch

import (
	"os/exec"
	"runtime"
)

// Strategy is the variant type for monitor hosting. Exactly one strategy is
// selected per setup run, system-wide.
type Strategy int

const (
	// StrategyNone means no launch facility is available (Windows without a
	// shell interpreter). Monitoring stays unstarted and a warning is emitted.
	StrategyNone Strategy = iota

	// StrategyScreen hosts each monitor in a named detached screen session.
	StrategyScreen

	// StrategyTmux hosts each monitor in a named detached tmux session.
	StrategyTmux

	// StrategyBackground runs the event watcher as a detached background
	// process with output discarded. No status poller is started.
	StrategyBackground

	// StrategyWindowsConsole opens a new console window running the command
	// through a detected shell interpreter.
	StrategyWindowsConsole
)

// String returns the operator-facing name of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyScreen:
		return "screen"
	case StrategyTmux:
		return "tmux"
	case StrategyBackground:
		return "background"
	case StrategyWindowsConsole:
		return "console window"
	default:
		return "none"
	}
}

// IsMultiplexer reports whether the strategy creates named detachable
// sessions. Only multiplexer strategies host the status poller.
func (s Strategy) IsMultiplexer() bool {
	return s == StrategyScreen || s == StrategyTmux
}

// Detect probes tool availability and selects the hosting strategy for this
// platform. Deterministic given a fixed tool set: on Unix, screen wins over
// tmux, tmux over the bare background fallback; on Windows, a console window
// needs cmd plus a shell interpreter.
func Detect(goos string, lookPath func(file string) (string, error)) Strategy {
	if goos == "windows" {
		if _, err := lookPath("cmd"); err != nil {
			return StrategyNone
		}
		if _, err := lookPath("bash.exe"); err == nil {
			return StrategyWindowsConsole
		}
		if _, err := lookPath("sh.exe"); err == nil {
			return StrategyWindowsConsole
		}
		return StrategyNone
	}

	if _, err := lookPath("screen"); err == nil {
		return StrategyScreen
	}
	if _, err := lookPath("tmux"); err == nil {
		return StrategyTmux
	}
	return StrategyBackground
}

// DetectCurrent selects the strategy for the running platform.
func DetectCurrent() Strategy {
	return Detect(runtime.GOOS, exec.LookPath)
}

// ParseStrategy maps a configuration name to a strategy. The second return
// is false for names that cannot be pinned, including the empty string.
func ParseStrategy(name string) (Strategy, bool) {
	switch name {
	case "screen":
		return StrategyScreen, true
	case "tmux":
		return StrategyTmux, true
	case "background":
		return StrategyBackground, true
	}
	return StrategyNone, false
}
