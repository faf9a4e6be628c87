package monitor

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/nexuslabs/nexus/internal/constants"
	"github.com/nexuslabs/nexus/internal/launch"
	"github.com/nexuslabs/nexus/internal/pidfile"
)

// fakeLauncher records launch/kill calls, hands out sequential pids, and
// tracks which named sessions are live.
type fakeLauncher struct {
	mu        sync.Mutex
	launches  []launch.Handle
	argvs     [][]string
	kills     []string
	sessions  map[string]bool
	nextPID   int
	launchErr error
}

func (f *fakeLauncher) Launch(strategy launch.Strategy, session string, argv []string) (launch.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.launchErr != nil {
		return launch.Handle{}, f.launchErr
	}
	f.nextPID++
	h := launch.Handle{Strategy: strategy, Session: session, PID: f.nextPID}
	f.launches = append(f.launches, h)
	f.argvs = append(f.argvs, argv)
	if session != "" {
		f.markSession(session)
	}
	return h, nil
}

func (f *fakeLauncher) HasSession(strategy launch.Strategy, session string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[session]
}

func (f *fakeLauncher) KillSession(strategy launch.Strategy, session string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kills = append(f.kills, session)
	delete(f.sessions, session)
	return nil
}

func (f *fakeLauncher) markSession(session string) {
	if f.sessions == nil {
		f.sessions = map[string]bool{}
	}
	f.sessions[session] = true
}

// fakeCommands is a canned commandSource.
type fakeCommands struct{}

func (fakeCommands) WatchEventsArgv() []string    { return []string{"./scripts/watch_events.sh"} }
func (fakeCommands) ListStatusesArgv() []string   { return []string{"./scripts/agent_status.sh", "list"} }
func (fakeCommands) WatchEventsSignature() string { return "scripts/watch_events.sh" }

func testSupervisor(t *testing.T, strategy launch.Strategy) (*Supervisor, *fakeLauncher, *pidfile.Store, *bytes.Buffer) {
	t.Helper()
	store := pidfile.NewStore(t.TempDir(), pidfile.WithTerminator(func(int) error { return nil }))
	fl := &fakeLauncher{}
	out := &bytes.Buffer{}
	sup := NewSupervisor(store, fl, fakeCommands{},
		WithStrategy(strategy),
		WithOutput(out))
	sup.goos = "linux"
	sup.findBySignature = func(string) []int { return nil }
	sup.terminate = func(int) error { return nil }
	sup.alive = func(int) bool { return false }
	return sup, fl, store, out
}

func TestStartMultiplexerLaunchesBothMonitors(t *testing.T) {
	sup, fl, store, _ := testSupervisor(t, launch.StrategyTmux)

	if err := sup.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if len(fl.launches) != 2 {
		t.Fatalf("launches = %d, want 2 (watcher + poller)", len(fl.launches))
	}
	if fl.launches[0].Session != constants.SessionEventMonitor {
		t.Errorf("first launch session = %q", fl.launches[0].Session)
	}
	if fl.launches[1].Session != constants.SessionAgentMonitor {
		t.Errorf("second launch session = %q", fl.launches[1].Session)
	}

	wantPoller := []string{"watch", "-n", "10", "./scripts/agent_status.sh", "list"}
	if !reflect.DeepEqual(fl.argvs[1], wantPoller) {
		t.Errorf("poller argv = %v, want %v", fl.argvs[1], wantPoller)
	}

	// Both launches leave authoritative pid records.
	for _, session := range []string{constants.SessionEventMonitor, constants.SessionAgentMonitor} {
		if _, err := store.Read(session); err != nil {
			t.Errorf("no pid record for %s: %v", session, err)
		}
	}
}

func TestStartBackgroundLaunchesWatcherOnlyWithAdvisory(t *testing.T) {
	sup, fl, store, out := testSupervisor(t, launch.StrategyBackground)

	if err := sup.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if len(fl.launches) != 1 {
		t.Fatalf("launches = %d, want 1 (watcher only)", len(fl.launches))
	}
	if _, err := store.Read(constants.SessionEventMonitor); err != nil {
		t.Errorf("no pid record for event watcher: %v", err)
	}
	if !strings.Contains(out.String(), "screen") || !strings.Contains(out.String(), "tmux") {
		t.Errorf("missing multiplexer advisory in output: %q", out.String())
	}
}

func TestStartNoneLeavesMonitoringUnstarted(t *testing.T) {
	sup, fl, _, out := testSupervisor(t, launch.StrategyNone)
	sup.goos = "windows"

	if err := sup.Start(); err != nil {
		t.Fatalf("Start must not be fatal when unstartable: %v", err)
	}
	if len(fl.launches) != 0 {
		t.Errorf("launches = %d, want 0", len(fl.launches))
	}
	if !strings.Contains(out.String(), "manually") {
		t.Errorf("missing manual-start hint: %q", out.String())
	}
}

func TestStartKillsStaleRecordsFirst(t *testing.T) {
	var signaled []int
	store := pidfile.NewStore(t.TempDir(), pidfile.WithTerminator(func(pid int) error {
		signaled = append(signaled, pid)
		return nil
	}))
	fl := &fakeLauncher{}
	fl.markSession(constants.SessionEventMonitor)
	fl.markSession(constants.SessionAgentMonitor)
	sup := NewSupervisor(store, fl, fakeCommands{},
		WithStrategy(launch.StrategyTmux),
		WithOutput(&bytes.Buffer{}))
	sup.goos = "linux"
	sup.findBySignature = func(string) []int { return nil }

	// Records and sessions left by a previous run.
	if err := store.Write(constants.SessionEventMonitor, 900); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.Write(constants.SessionAgentMonitor, 901); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := sup.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if !reflect.DeepEqual(signaled, []int{900, 901}) {
		t.Errorf("signaled = %v, want [900 901]", signaled)
	}
	// Stale sessions are also killed by name before relaunch.
	if !reflect.DeepEqual(fl.kills, []string{constants.SessionEventMonitor, constants.SessionAgentMonitor}) {
		t.Errorf("kills = %v", fl.kills)
	}

	// Fresh records replaced the stale ones.
	pid, err := store.Read(constants.SessionEventMonitor)
	if err != nil || pid == 900 {
		t.Errorf("event monitor record = %d, %v; want fresh record", pid, err)
	}
}

func TestStartSignatureScanFallback(t *testing.T) {
	sup, _, _, _ := testSupervisor(t, launch.StrategyBackground)
	var killed []int
	sup.findBySignature = func(sig string) []int {
		if sig != "scripts/watch_events.sh" {
			t.Errorf("scan signature = %q", sig)
		}
		return []int{777}
	}
	sup.terminate = func(pid int) error {
		killed = append(killed, pid)
		return errors.New("no such process") // must be swallowed
	}

	if err := sup.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !reflect.DeepEqual(killed, []int{777}) {
		t.Errorf("killed = %v, want [777]", killed)
	}
}

func TestStartSkipsKillForAbsentSessions(t *testing.T) {
	sup, fl, _, _ := testSupervisor(t, launch.StrategyTmux)

	if err := sup.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// Nothing was live, so no kill-session commands should have run.
	if len(fl.kills) != 0 {
		t.Errorf("kills = %v, want none when no stale session exists", fl.kills)
	}
}

func TestStartWaitsForSignaledWatcherToExit(t *testing.T) {
	sup, _, _, _ := testSupervisor(t, launch.StrategyBackground)
	sup.findBySignature = func(string) []int { return []int{777} }

	var polls int
	sup.alive = func(pid int) bool {
		if pid != 777 {
			t.Errorf("polled pid = %d, want 777", pid)
		}
		polls++
		return polls < 3
	}

	if err := sup.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if polls < 3 {
		t.Errorf("liveness polls = %d, want the launch to wait for the old watcher to die", polls)
	}
}

func TestStartLaunchFailureDegrades(t *testing.T) {
	sup, fl, store, _ := testSupervisor(t, launch.StrategyTmux)
	fl.launchErr = errors.New("tmux new-session: server refused")

	if err := sup.Start(); err != nil {
		t.Fatalf("Start must degrade, not abort: %v", err)
	}
	if _, err := store.Read(constants.SessionEventMonitor); !errors.Is(err, pidfile.ErrNotFound) {
		t.Errorf("record written despite failed launch: %v", err)
	}
}

func TestStopClearsRecordsAndSessions(t *testing.T) {
	sup, fl, store, _ := testSupervisor(t, launch.StrategyScreen)

	if err := sup.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := sup.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	for _, session := range []string{constants.SessionEventMonitor, constants.SessionAgentMonitor} {
		if _, err := store.Read(session); !errors.Is(err, pidfile.ErrNotFound) {
			t.Errorf("record %s survives Stop", session)
		}
	}
	// Stop is safe on an already-stopped supervisor.
	if err := sup.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	if len(fl.kills) < 4 {
		t.Errorf("kills = %v, want session teardown on both Start and Stop", fl.kills)
	}
}
