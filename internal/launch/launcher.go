package launch

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// Common errors
var (
	ErrNoFacility         = errors.New("no launch facility available")
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidSessionName = errors.New("invalid session name")
)

// validSessionNameRe validates session names to prevent shell injection.
var validSessionNameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Handle identifies a launched monitor well enough to detect duplicates and
// tear it down later: a session name for multiplexers, an OS pid whenever one
// can be resolved (background child, tmux pane, screen session).
type Handle struct {
	Strategy Strategy
	Session  string
	PID      int
}

// Launcher starts and stops monitor processes in a workspace directory.
type Launcher struct {
	// Dir is the working directory for launched commands.
	Dir string

	// run executes a control command (screen/tmux/cmd) and returns its
	// trimmed stdout. Overridable in tests.
	run func(name string, args ...string) (string, error)

	// startDetached starts argv as a detached background process with output
	// discarded and returns its pid. Overridable in tests.
	startDetached func(dir string, argv []string) (int, error)
}

// NewLauncher creates a launcher for the workspace rooted at dir.
func NewLauncher(dir string) *Launcher {
	return &Launcher{
		Dir:           dir,
		run:           runCommand,
		startDetached: startDetached,
	}
}

// runCommand executes a control command and returns trimmed stdout.
// Stderr is folded into the returned error for session-state detection.
func runCommand(name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			// screen prints session listings to stdout even on nonzero exit.
			msg = strings.TrimSpace(stdout.String())
		}
		if msg != "" {
			return strings.TrimSpace(stdout.String()), fmt.Errorf("%s %s: %s", name, args[0], msg)
		}
		return strings.TrimSpace(stdout.String()), fmt.Errorf("%s %s: %w", name, args[0], err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// startDetached starts argv with stdout/stderr discarded. The child is
// reaped in the background so it never lingers as a zombie while the parent
// lives; if the parent exits first, init adopts it.
func startDetached(dir string, argv []string) (int, error) {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	// nil Stdout/Stderr inherit os.DevNull on Start.
	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid
	go func() { _ = cmd.Wait() }()
	return pid, nil
}

// Launch starts argv under the given strategy. Multiplexer strategies create
// a named detached session and resolve its real OS pid so the caller can
// record it authoritatively.
func (l *Launcher) Launch(strategy Strategy, session string, argv []string) (Handle, error) {
	if len(argv) == 0 {
		return Handle{}, errors.New("empty command")
	}
	if strategy.IsMultiplexer() {
		if session == "" || !validSessionNameRe.MatchString(session) {
			return Handle{}, fmt.Errorf("%w: %q", ErrInvalidSessionName, session)
		}
	}

	switch strategy {
	case StrategyScreen:
		args := append([]string{"-dmS", session}, argv...)
		if _, err := l.run("screen", args...); err != nil {
			return Handle{}, err
		}
		pid, _ := l.screenSessionPID(session)
		return Handle{Strategy: strategy, Session: session, PID: pid}, nil

	case StrategyTmux:
		if _, err := l.run("tmux", "new-session", "-d", "-s", session, shellJoin(argv)); err != nil {
			return Handle{}, err
		}
		pid, _ := l.tmuxPanePID(session)
		return Handle{Strategy: strategy, Session: session, PID: pid}, nil

	case StrategyBackground:
		pid, err := l.startDetached(l.Dir, argv)
		if err != nil {
			return Handle{}, err
		}
		return Handle{Strategy: strategy, PID: pid}, nil

	case StrategyWindowsConsole:
		// start returns immediately; the new console owns the process, so no
		// pid is recoverable here.
		args := append([]string{"/c", "start", ""}, argv...)
		if _, err := l.run("cmd", args...); err != nil {
			return Handle{}, err
		}
		return Handle{Strategy: strategy}, nil

	default:
		return Handle{}, ErrNoFacility
	}
}

// HasSession reports whether a named multiplexer session exists.
func (l *Launcher) HasSession(strategy Strategy, session string) bool {
	switch strategy {
	case StrategyTmux:
		_, err := l.run("tmux", "has-session", "-t", "="+session)
		return err == nil
	case StrategyScreen:
		_, err := l.screenSessionPID(session)
		return err == nil
	default:
		return false
	}
}

// KillSession terminates a named multiplexer session. Idempotent: a missing
// session or a dead server is not an error.
func (l *Launcher) KillSession(strategy Strategy, session string) error {
	switch strategy {
	case StrategyTmux:
		_, err := l.run("tmux", "kill-session", "-t", "="+session)
		if err != nil && isSessionGone(err) {
			return nil
		}
		return err
	case StrategyScreen:
		_, err := l.run("screen", "-S", session, "-X", "quit")
		if err != nil && isSessionGone(err) {
			return nil
		}
		return err
	default:
		return nil
	}
}

// isSessionGone detects tmux/screen errors that mean the target session is
// already absent.
func isSessionGone(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "no server running") ||
		strings.Contains(msg, "can't find session") ||
		strings.Contains(msg, "session not found") ||
		strings.Contains(msg, "error connecting to") ||
		strings.Contains(msg, "No screen session") ||
		strings.Contains(msg, "No Sockets found")
}

// tmuxPanePID resolves the initial pane process pid of a tmux session.
func (l *Launcher) tmuxPanePID(session string) (int, error) {
	out, err := l.run("tmux", "display-message", "-p", "-t", "="+session, "#{pane_pid}")
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("unexpected pane_pid output %q", out)
	}
	return pid, nil
}

// screenSessionPID resolves a screen session's pid by parsing `screen -ls`,
// whose entries have the form "<pid>.<name>\t(Detached)".
func (l *Launcher) screenSessionPID(session string) (int, error) {
	// screen -ls exits nonzero when sessions exist on some versions; the
	// listing is still usable, so parse whatever came back.
	out, err := l.run("screen", "-ls")
	if out == "" && err != nil {
		return 0, ErrSessionNotFound
	}
	if pid := parseScreenList(out, session); pid > 0 {
		return pid, nil
	}
	if err != nil && !isSessionGone(err) {
		if pid := parseScreenList(err.Error(), session); pid > 0 {
			return pid, nil
		}
	}
	return 0, ErrSessionNotFound
}

// parseScreenList extracts the pid for a named session from screen -ls output.
func parseScreenList(out, session string) int {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		name := fields[0]
		dot := strings.Index(name, ".")
		if dot <= 0 || name[dot+1:] != session {
			continue
		}
		pid, err := strconv.Atoi(name[:dot])
		if err != nil {
			continue
		}
		return pid
	}
	return 0
}

// shellJoin quotes argv into a single shell command string for tmux, which
// takes the session's initial command as one argument.
func shellJoin(argv []string) string {
	quoted := make([]string, len(argv))
	for i, a := range argv {
		quoted[i] = shellQuote(a)
	}
	return strings.Join(quoted, " ")
}

// shellQuote single-quotes an argument, escaping embedded single quotes.
func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$&|;<>()*?[]#~%") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
