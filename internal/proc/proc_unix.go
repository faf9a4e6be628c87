//go:build unix

package proc

import (
	"os"
	"syscall"
)

// Alive reports whether a process with the given pid exists.
// Uses signal 0, which performs the existence check without delivering anything.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return p.Signal(syscall.Signal(0)) == nil
}

// Terminate sends SIGTERM to the process. Returns an error if the process
// does not exist or the signal cannot be delivered; callers that only need
// best-effort cleanup ignore it.
func Terminate(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Signal(syscall.SIGTERM)
}
