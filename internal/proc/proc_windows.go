//go:build windows

package proc

import "os"

// Alive reports whether a process with the given pid exists.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	p.Release()
	return true
}

// Terminate kills the process. Windows has no SIGTERM delivery for
// unrelated processes, so this is a hard kill.
func Terminate(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	defer p.Release()
	return p.Kill()
}

// FindBySignature is unsupported on Windows; the stale-monitor scan is a
// Unix-only heuristic. Authoritative pid records cover cleanup here.
func FindBySignature(signature string) []int {
	return nil
}
