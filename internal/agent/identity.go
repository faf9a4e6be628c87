// Package agent defines agent identity for the Nexus workspace.
package agent

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrEmptyID   = errors.New("agent id must not be empty")
	ErrEmptyKind = errors.New("agent kind must not be empty")
	ErrUnsafeID  = errors.New("agent id contains path-unsafe characters")
)

// validIDRe restricts agent ids to characters that are safe to embed in
// file names and tmux/screen session names. Dots and slashes are excluded
// because pid-record paths and session targets are derived from the id.
var validIDRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Identity describes a registered agent. Created once at setup time from
// operator input and immutable thereafter; the ID keys all liveness and
// registry operations.
type Identity struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

// Validate checks that the identity is usable as a liveness key.
func (a Identity) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return ErrEmptyID
	}
	if !validIDRe.MatchString(a.ID) {
		return fmt.Errorf("%w: %q must match %s", ErrUnsafeID, a.ID, validIDRe.String())
	}
	if strings.TrimSpace(a.Kind) == "" {
		return ErrEmptyKind
	}
	return nil
}

// SuggestID returns a fresh collision-resistant default id for interactive
// setup, e.g. "agent-3f9c2a1d".
func SuggestID() string {
	return "agent-" + uuid.NewString()[:8]
}
