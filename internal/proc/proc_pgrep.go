//go:build unix && !linux

package proc

import (
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// FindBySignature returns PIDs whose command line matches the signature,
// using pgrep -f. macOS and the BSDs have no /proc cmdline files, so this
// shells out the same way the rest of the system inspects processes.
func FindBySignature(signature string) []int {
	out, err := exec.Command("pgrep", "-f", signature).Output()
	if err != nil {
		// pgrep exits 1 when nothing matches.
		return nil
	}

	self := os.Getpid()
	var pids []int
	for _, field := range strings.Fields(strings.TrimSpace(string(out))) {
		pid, err := strconv.Atoi(field)
		if err != nil || pid == self {
			continue
		}
		pids = append(pids, pid)
	}
	return pids
}
