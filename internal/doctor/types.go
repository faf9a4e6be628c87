// Package doctor provides a framework for diagnosing a collaboration
// workspace: dependency presence, scaffolding integrity, and whether the
// recorded monitor and heartbeat processes are actually alive.
package doctor

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nexuslabs/nexus/internal/style"
)

// ErrCannotFix is returned by Fix on checks without auto-fix support.
var ErrCannotFix = errors.New("check cannot be fixed automatically")

// CheckStatus represents the result status of a health check.
type CheckStatus int

const (
	// StatusOK indicates the check passed.
	StatusOK CheckStatus = iota
	// StatusWarning indicates a non-critical issue.
	StatusWarning
	// StatusError indicates a critical problem.
	StatusError
)

// String returns a human-readable status.
func (s CheckStatus) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusWarning:
		return "Warning"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// CheckContext provides context for running checks.
type CheckContext struct {
	Dir     string // Workspace root directory
	Verbose bool   // Enable verbose output
}

// CheckResult represents the outcome of a health check.
type CheckResult struct {
	Name    string      // Check name
	Status  CheckStatus // Result status
	Message string      // Primary result message
	Details []string    // Additional information
	FixHint string      // Suggestion if not auto-fixable
}

// Check defines the interface for a health check.
type Check interface {
	// Name returns the check identifier.
	Name() string

	// Run executes the check and returns a result.
	Run(ctx *CheckContext) *CheckResult

	// Fix attempts to automatically fix the issue. Should only be called
	// when CanFix returns true.
	Fix(ctx *CheckContext) error

	// CanFix reports whether this check can fix issues automatically.
	CanFix() bool
}

// ReportSummary summarizes the results of all checks.
type ReportSummary struct {
	Total    int
	OK       int
	Warnings int
	Errors   int
}

// Report contains all check results and a summary.
type Report struct {
	Timestamp time.Time
	Checks    []*CheckResult
	Summary   ReportSummary
}

// NewReport creates an empty report with the current timestamp.
func NewReport() *Report {
	return &Report{Timestamp: time.Now()}
}

// Add adds a check result to the report and updates the summary.
func (r *Report) Add(result *CheckResult) {
	r.Checks = append(r.Checks, result)
	r.Summary.Total++

	switch result.Status {
	case StatusOK:
		r.Summary.OK++
	case StatusWarning:
		r.Summary.Warnings++
	case StatusError:
		r.Summary.Errors++
	}
}

// HasErrors returns true if any check reported an error.
func (r *Report) HasErrors() bool {
	return r.Summary.Errors > 0
}

// IsHealthy returns true if all checks passed without errors or warnings.
func (r *Report) IsHealthy() bool {
	return r.Summary.Errors == 0 && r.Summary.Warnings == 0
}

// Print outputs the report to the given writer.
func (r *Report) Print(w io.Writer, verbose bool) {
	for _, check := range r.Checks {
		printCheck(w, check, verbose)
	}
	fmt.Fprintln(w)
	r.printSummary(w)
}

func printCheck(w io.Writer, check *CheckResult, verbose bool) {
	var prefix string
	switch check.Status {
	case StatusOK:
		prefix = style.Render(style.Success, "✓")
	case StatusWarning:
		prefix = style.Render(style.Warning, "!")
	case StatusError:
		prefix = style.Render(style.Error, "✗")
	}

	fmt.Fprintf(w, "%s %s: %s\n", prefix, check.Name, check.Message)

	if len(check.Details) > 0 && (verbose || check.Status != StatusOK) {
		for _, detail := range check.Details {
			fmt.Fprintf(w, "    %s\n", detail)
		}
	}
	if check.FixHint != "" && check.Status != StatusOK {
		fmt.Fprintf(w, "    → %s\n", check.FixHint)
	}
}

func (r *Report) printSummary(w io.Writer) {
	parts := []string{fmt.Sprintf("%d checks", r.Summary.Total)}
	if r.Summary.OK > 0 {
		parts = append(parts, style.Render(style.Success, fmt.Sprintf("%d passed", r.Summary.OK)))
	}
	if r.Summary.Warnings > 0 {
		parts = append(parts, style.Render(style.Warning, fmt.Sprintf("%d warnings", r.Summary.Warnings)))
	}
	if r.Summary.Errors > 0 {
		parts = append(parts, style.Render(style.Error, fmt.Sprintf("%d errors", r.Summary.Errors)))
	}
	fmt.Fprintln(w, strings.Join(parts, ", "))
}
