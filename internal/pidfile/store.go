// Package pidfile persists pid records: small marker files mapping a logical
// owner key (an agent's heartbeat, a monitor session) to an operating-system
// process id. Records are the authoritative handle for idempotent restart and
// cleanup: at most one live record exists per owner key at any time.
package pidfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"

	"github.com/nexuslabs/nexus/internal/proc"
	"github.com/nexuslabs/nexus/internal/util"
)

// ErrNotFound is returned by Read when no record exists for the owner key.
// Unreadable or unparsable record content is reported the same way so that
// cleanup can always proceed over a corrupt file.
var ErrNotFound = errors.New("pid record not found")

// lockFileName is the advisory lock guarding record mutation within one store
// directory. Concurrent setup invocations for the same workspace serialize on
// it, closing the terminate-then-write race between two starts for the same
// owner key.
const lockFileName = ".nexus.lock"

// Store reads and writes pid records under a single directory.
type Store struct {
	dir string

	// terminate delivers a termination signal to a pid. Overridable in tests.
	terminate func(pid int) error
}

// Option configures a Store.
type Option func(*Store)

// WithTerminator overrides signal delivery. Used by tests and by callers
// that need a different termination policy than SIGTERM.
func WithTerminator(terminate func(pid int) error) Option {
	return func(s *Store) { s.terminate = terminate }
}

// NewStore creates a store rooted at dir. The directory must exist.
func NewStore(dir string, opts ...Option) *Store {
	s := &Store{dir: dir, terminate: proc.Terminate}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the record file path for an owner key. The mapping is
// injective: every byte outside [A-Za-z0-9_-] is percent-escaped, so distinct
// keys can never collide on the same file within a store directory.
func (s *Store) Path(ownerKey string) string {
	return filepath.Join(s.dir, "."+escapeKey(ownerKey)+".pid")
}

// escapeKey percent-escapes path-unsafe bytes in an owner key.
func escapeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

// lock acquires the store-wide advisory lock. The returned release func
// must be called when the mutation is complete.
func (s *Store) lock() (release func(), err error) {
	fl := flock.New(filepath.Join(s.dir, lockFileName))
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("acquiring pid store lock: %w", err)
	}
	return func() { _ = fl.Unlock() }, nil
}

// Write persists a pid record for the owner key, overwriting any prior content.
func (s *Store) Write(ownerKey string, pid int) error {
	release, err := s.lock()
	if err != nil {
		return err
	}
	defer release()
	return s.writeLocked(ownerKey, pid)
}

func (s *Store) writeLocked(ownerKey string, pid int) error {
	data := []byte(strconv.Itoa(pid))
	if err := util.AtomicWriteFile(s.Path(ownerKey), data, 0644); err != nil {
		return fmt.Errorf("writing pid record %s: %w", ownerKey, err)
	}
	return nil
}

// Read returns the recorded pid for the owner key, or ErrNotFound when no
// record exists or its content is not a pid. A corrupt record never surfaces
// as a parse error; treating it as absence lets cleanup proceed regardless.
func (s *Store) Read(ownerKey string) (int, error) {
	data, err := os.ReadFile(s.Path(ownerKey))
	if err != nil {
		return 0, ErrNotFound
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, ErrNotFound
	}
	return pid, nil
}

// List returns the owner keys of every record in the store, in directory
// order. Files that do not follow the record naming scheme are skipped.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing pid records: %w", err)
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".pid") {
			continue
		}
		key, ok := unescapeKey(strings.TrimSuffix(strings.TrimPrefix(name, "."), ".pid"))
		if !ok {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// unescapeKey reverses escapeKey. The second return is false for byte
// sequences escapeKey could not have produced.
func unescapeKey(escaped string) (string, bool) {
	var b strings.Builder
	b.Grow(len(escaped))
	for i := 0; i < len(escaped); i++ {
		c := escaped[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+2 >= len(escaped) {
			return "", false
		}
		v, err := strconv.ParseUint(escaped[i+1:i+3], 16, 8)
		if err != nil {
			return "", false
		}
		b.WriteByte(byte(v))
		i += 2
	}
	return b.String(), true
}

// Remove deletes the record if present. Absence is not an error.
func (s *Store) Remove(ownerKey string) error {
	err := os.Remove(s.Path(ownerKey))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing pid record %s: %w", ownerKey, err)
	}
	return nil
}

// TerminateAndClear reads the record for the owner key, signals the recorded
// process to terminate, and removes the record. Safe to call when no record
// exists (pure no-op). Signal delivery failure means the process is
// presumably already gone and is swallowed; the record is removed
// unconditionally so no stale file is ever left behind.
func (s *Store) TerminateAndClear(ownerKey string) error {
	release, err := s.lock()
	if err != nil {
		return err
	}
	defer release()
	return s.terminateAndClearLocked(ownerKey)
}

func (s *Store) terminateAndClearLocked(ownerKey string) error {
	if pid, err := s.Read(ownerKey); err == nil {
		_ = s.terminate(pid)
	}
	return s.Remove(ownerKey)
}

// Replace atomically (under the store lock) terminates any prior record owner
// and writes a fresh record for the same key. This is the idempotent-restart
// primitive: after Replace returns there is exactly one record for the key.
func (s *Store) Replace(ownerKey string, pid int) error {
	release, err := s.lock()
	if err != nil {
		return err
	}
	defer release()

	if err := s.terminateAndClearLocked(ownerKey); err != nil {
		return err
	}
	return s.writeLocked(ownerKey, pid)
}
