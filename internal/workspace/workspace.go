// Package workspace scaffolds the shared collaboration directory: the logs
// directory, the seed log and registry files, and executable bits on the
// helper scripts. Scaffolding is idempotent; files that already exist are
// never touched.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/nexuslabs/nexus/internal/constants"
	"github.com/nexuslabs/nexus/internal/util"
)

// seedFiles maps each workspace file to the content it starts with.
var seedFiles = map[string]string{
	constants.FileEventLog:      "",
	constants.FileAgentStatus:   "[]",
	constants.FileCommunication: "# Communication Log\n",
	constants.FileArchive:       "# Archived Communications\n",
}

// Workspace roots all scaffolding at one directory.
type Workspace struct {
	Root string

	goos  string
	chmod func(name string, mode os.FileMode) error
}

// New returns a workspace rooted at dir.
func New(dir string) *Workspace {
	return &Workspace{Root: dir, goos: runtime.GOOS, chmod: os.Chmod}
}

// Scaffold creates the directory layout and seed files. Existing files keep
// their content; re-running after a partial failure completes the rest.
func (w *Workspace) Scaffold() error {
	if err := os.MkdirAll(filepath.Join(w.Root, constants.DirLogs), 0o755); err != nil {
		return fmt.Errorf("creating logs directory: %w", err)
	}

	for name, content := range seedFiles {
		path := filepath.Join(w.Root, name)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("checking %s: %w", name, err)
		}
		if err := util.EnsureDirAndWriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("seeding %s: %w", name, err)
		}
	}

	return w.markScriptsExecutable()
}

// markScriptsExecutable sets 0755 on every shell script under scripts/.
// No-op on Windows and when the scripts directory is absent.
func (w *Workspace) markScriptsExecutable() error {
	if w.goos == "windows" {
		return nil
	}

	pattern := filepath.Join(w.Root, constants.DirScripts, "*.sh")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("listing scripts: %w", err)
	}
	for _, script := range matches {
		if err := w.chmod(script, 0o755); err != nil {
			return fmt.Errorf("marking %s executable: %w", filepath.Base(script), err)
		}
	}
	return nil
}
