// Package deps probes and installs the external tools the workspace scripts
// depend on: jq for JSON manipulation and a file-watching tool for the event
// monitor (inotifywait on Linux, fswatch on macOS). A missing, uninstallable
// dependency is the one fatal condition in setup.
package deps

import (
	"context"
	"errors"
	"os/exec"
	"regexp"
	"runtime"
	"strings"
	"time"
)

// ErrDependencyMissing reports a required tool that is absent and could not
// be installed.
var ErrDependencyMissing = errors.New("required dependency missing")

// MinJqVersion is the minimum jq version the workspace scripts rely on.
const MinJqVersion = "1.5.0"

// JqInstallURL is the installation page for jq.
const JqInstallURL = "https://stedolan.github.io/jq/download/"

// Status represents the state of one tool installation.
type Status int

const (
	StatusOK         Status = iota // tool found, version compatible
	StatusMissing                  // tool not in PATH
	StatusTooOld                   // tool found but version too old
	StatusExecFailed               // tool found but version probe failed to execute
	StatusUnknown                  // version probe ran but output couldn't be parsed
)

// Tool describes one required external tool.
type Tool struct {
	Name    string // binary probed in PATH
	Package string // name handed to the package manager
}

// Result is the outcome of probing one tool.
type Result struct {
	Tool    Tool
	Status  Status
	Version string // installed version, when the tool reports one
	Detail  string // diagnostic output for failure cases
}

// Required returns the tools the given platform needs. Windows uses fswatch
// as the closest file-watching equivalent.
func Required(goos string) []Tool {
	tools := []Tool{{Name: "jq", Package: "jq"}}
	switch goos {
	case "linux":
		tools = append(tools, Tool{Name: "inotifywait", Package: "inotify-tools"})
	case "darwin", "windows":
		tools = append(tools, Tool{Name: "fswatch", Package: "fswatch"})
	}
	return tools
}

// Checker probes required tools. The zero value is not usable; construct via
// NewChecker.
type Checker struct {
	goos     string
	lookPath func(string) (string, error)
	run      func(name string, args ...string) (string, error)
}

// NewChecker creates a checker for the current platform.
func NewChecker() *Checker {
	return &Checker{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		run:      runCombined,
	}
}

func runCombined(name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	output, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	return string(output), err
}

// Check probes every tool the platform requires.
func (c *Checker) Check() []Result {
	var results []Result
	for _, tool := range Required(c.goos) {
		results = append(results, c.checkOne(tool))
	}
	return results
}

func (c *Checker) checkOne(tool Tool) Result {
	path, err := c.lookPath(tool.Name)
	if err != nil {
		return Result{Tool: tool, Status: StatusMissing}
	}
	if tool.Name != "jq" {
		// Presence is enough for the watch tools.
		return Result{Tool: tool, Status: StatusOK}
	}

	output, err := c.run(path, "--version")
	if err != nil {
		detail := strings.TrimSpace(output)
		if detail == "" {
			detail = err.Error()
		}
		return Result{Tool: tool, Status: StatusExecFailed, Detail: "at " + path + ": " + detail}
	}

	version := parseJqVersion(output)
	if version == "" {
		return Result{Tool: tool, Status: StatusUnknown, Detail: strings.TrimSpace(output)}
	}
	if CompareVersions(version, MinJqVersion) < 0 {
		return Result{Tool: tool, Status: StatusTooOld, Version: version}
	}
	return Result{Tool: tool, Status: StatusOK, Version: version}
}

// Missing filters check results down to the tools that need installing.
// Too-old and unparseable installations are left alone; only absence blocks.
func Missing(results []Result) []Tool {
	var missing []Tool
	for _, r := range results {
		if r.Status == StatusMissing {
			missing = append(missing, r.Tool)
		}
	}
	return missing
}

// parseJqVersion extracts the version from "jq-1.7.1" style output. jq
// sometimes reports only two components ("jq-1.6").
func parseJqVersion(output string) string {
	re := regexp.MustCompile(`jq-(\d+\.\d+(?:\.\d+)?)`)
	matches := re.FindStringSubmatch(output)
	if len(matches) >= 2 {
		return matches[1]
	}
	return ""
}
