//go:build linux

package proc

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FindBySignature scans /proc/*/cmdline and returns PIDs whose command line
// contains the signature. The calling process is excluded so a supervisor
// never matches itself.
func FindBySignature(signature string) []int {
	entries, err := filepath.Glob("/proc/[0-9]*/cmdline")
	if err != nil {
		return nil
	}

	self := os.Getpid()
	var pids []int
	for _, entry := range entries {
		data, err := os.ReadFile(entry)
		if err != nil {
			continue
		}
		// cmdline is null-delimited; join args with spaces for matching.
		cmdline := strings.ReplaceAll(string(data), "\x00", " ")
		if !strings.Contains(cmdline, signature) {
			continue
		}
		parts := strings.Split(entry, "/")
		if len(parts) < 3 {
			continue
		}
		pid, err := strconv.Atoi(parts[2])
		if err != nil || pid == self {
			continue
		}
		pids = append(pids, pid)
	}
	return pids
}
