// Package monitor orchestrates the lifecycle of the two background monitors:
// the event-stream watcher and the periodic agent-status poller. One
// supervisor pass runs during setup: kill stale → select strategy → launch →
// record → report. Losing monitoring never prevents an agent from joining, so
// everything here degrades with warnings instead of aborting.
package monitor

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/nexuslabs/nexus/internal/constants"
	"github.com/nexuslabs/nexus/internal/launch"
	"github.com/nexuslabs/nexus/internal/pidfile"
	"github.com/nexuslabs/nexus/internal/proc"
	"github.com/nexuslabs/nexus/internal/style"
)

// launcher is the subset of launch.Launcher the supervisor needs.
type launcher interface {
	Launch(strategy launch.Strategy, session string, argv []string) (launch.Handle, error)
	HasSession(strategy launch.Strategy, session string) bool
	KillSession(strategy launch.Strategy, session string) error
}

// commandSource provides the monitor command lines. Implemented by
// scripts.Runner.
type commandSource interface {
	WatchEventsArgv() []string
	ListStatusesArgv() []string
	WatchEventsSignature() string
}

// Supervisor manages monitor bring-up and teardown for one workspace.
type Supervisor struct {
	store    *pidfile.Store
	launcher launcher
	commands commandSource
	strategy launch.Strategy
	poll     time.Duration
	logger   *log.Logger
	out      io.Writer

	// goos and findBySignature support the Unix stale-process fallback scan.
	// Overridable in tests.
	goos            string
	findBySignature func(signature string) []int
	terminate       func(pid int) error
	alive           func(pid int) bool
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithStrategy pins the hosting strategy instead of probing the platform.
func WithStrategy(s launch.Strategy) Option {
	return func(sup *Supervisor) { sup.strategy = s }
}

// WithPollInterval overrides the status poller interval (default 10s).
func WithPollInterval(d time.Duration) Option {
	return func(sup *Supervisor) { sup.poll = d }
}

// WithLogger sets the supervisor's logger.
func WithLogger(l *log.Logger) Option {
	return func(sup *Supervisor) { sup.logger = l }
}

// WithOutput redirects operator-facing report lines (default stdout).
func WithOutput(w io.Writer) Option {
	return func(sup *Supervisor) { sup.out = w }
}

// NewSupervisor creates a monitor supervisor. The strategy is probed from the
// current platform unless pinned via WithStrategy.
func NewSupervisor(store *pidfile.Store, l launcher, commands commandSource, opts ...Option) *Supervisor {
	sup := &Supervisor{
		store:           store,
		launcher:        l,
		commands:        commands,
		strategy:        launch.DetectCurrent(),
		poll:            constants.StatusPollInterval,
		logger:          log.New(io.Discard, "", 0),
		out:             os.Stdout,
		goos:            runtime.GOOS,
		findBySignature: proc.FindBySignature,
		terminate:       proc.Terminate,
		alive:           proc.Alive,
	}
	for _, opt := range opts {
		opt(sup)
	}
	return sup
}

// Strategy returns the hosting strategy this supervisor will use.
func (s *Supervisor) Strategy() launch.Strategy {
	return s.strategy
}

// Start brings up the monitors. After it returns, at most one event-watcher
// instance is intended to be live: stale instances are killed first through
// their pid records, with a command-line-signature scan as the Unix fallback
// for watchers whose records were lost.
func (s *Supervisor) Start() error {
	s.killStale()

	switch {
	case s.strategy == launch.StrategyNone:
		style.PrintWarning("unable to start monitoring automatically")
		fmt.Fprintln(s.out, "Please open a new terminal and run the event watcher manually.")
		return nil

	case s.strategy.IsMultiplexer():
		fmt.Fprintf(s.out, "Starting event monitor in %s session...\n", s.strategy)
		s.launchAndRecord(constants.SessionEventMonitor, s.commands.WatchEventsArgv())

		poller := append([]string{"watch", "-n", strconv.Itoa(int(s.poll / time.Second))}, s.commands.ListStatusesArgv()...)
		s.launchAndRecord(constants.SessionAgentMonitor, poller)

	default:
		fmt.Fprintf(s.out, "Starting event monitor in %s...\n", s.strategy)
		s.launchAndRecord(constants.SessionEventMonitor, s.commands.WatchEventsArgv())
		if s.goos != "windows" {
			fmt.Fprintln(s.out, style.Render(style.Warning, "NOTE: Install 'screen' or 'tmux' for better background process management."))
		}
	}

	return nil
}

// launchAndRecord starts one monitor and persists its pid record. Launch
// failure degrades to a warning; a handle without a resolvable pid (Windows
// console) simply leaves no record.
func (s *Supervisor) launchAndRecord(session string, argv []string) {
	h, err := s.launcher.Launch(s.strategy, session, argv)
	if err != nil {
		style.PrintWarning("could not start %s: %v", session, err)
		s.logger.Printf("launch %s under %s failed: %v", session, s.strategy, err)
		return
	}
	if h.PID > 0 {
		if err := s.store.Write(session, h.PID); err != nil {
			s.logger.Printf("recording %s pid: %v", session, err)
		}
	}
	s.logger.Printf("started %s under %s (pid %d)", session, s.strategy, h.PID)
}

// killStale tears down monitors left over from a previous run. Pid records
// are the authoritative path; the signature scan only catches Unix watchers
// that predate record tracking or whose records were lost.
func (s *Supervisor) killStale() {
	for _, session := range []string{constants.SessionEventMonitor, constants.SessionAgentMonitor} {
		if err := s.store.TerminateAndClear(session); err != nil {
			s.logger.Printf("clearing stale %s record: %v", session, err)
		}
		if s.strategy.IsMultiplexer() && s.launcher.HasSession(s.strategy, session) {
			if err := s.launcher.KillSession(s.strategy, session); err != nil {
				s.logger.Printf("killing stale %s session: %v", session, err)
			}
		}
	}

	if s.goos != "windows" {
		for _, pid := range s.findBySignature(s.commands.WatchEventsSignature()) {
			// Process already gone is fine; anything else is best-effort too.
			_ = s.terminate(pid)
			s.waitExit(pid)
			s.logger.Printf("terminated stale event watcher pid %d (signature match)", pid)
		}
	}
}

// waitExit blocks until the signaled process is gone or the grace period
// elapses, so a relaunched watcher never races its dying predecessor over
// the event log.
func (s *Supervisor) waitExit(pid int) {
	deadline := time.Now().Add(constants.KillGracePeriod)
	for s.alive(pid) {
		if time.Now().After(deadline) {
			s.logger.Printf("pid %d still running after %s", pid, constants.KillGracePeriod)
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// Stop tears down both monitors via their records and sessions. Used by
// nx down; safe when nothing is running.
func (s *Supervisor) Stop() error {
	for _, session := range []string{constants.SessionEventMonitor, constants.SessionAgentMonitor} {
		if err := s.store.TerminateAndClear(session); err != nil {
			return err
		}
		if s.strategy.IsMultiplexer() {
			if err := s.launcher.KillSession(s.strategy, session); err != nil {
				s.logger.Printf("killing %s session: %v", session, err)
			}
		}
	}
	return nil
}
