package workspace

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/nexuslabs/nexus/internal/constants"
)

func TestScaffoldCreatesLayout(t *testing.T) {
	dir := t.TempDir()
	if err := New(dir).Scaffold(); err != nil {
		t.Fatalf("Scaffold: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, constants.DirLogs))
	if err != nil || !info.IsDir() {
		t.Errorf("logs directory missing: %v", err)
	}

	tests := []struct {
		file string
		want string
	}{
		{constants.FileEventLog, ""},
		{constants.FileAgentStatus, "[]"},
		{constants.FileCommunication, "# Communication Log\n"},
		{constants.FileArchive, "# Archived Communications\n"},
	}
	for _, tt := range tests {
		data, err := os.ReadFile(filepath.Join(dir, tt.file))
		if err != nil {
			t.Errorf("reading %s: %v", tt.file, err)
			continue
		}
		if string(data) != tt.want {
			t.Errorf("%s = %q, want %q", tt.file, data, tt.want)
		}
	}
}

func TestScaffoldCreatesMissingRoot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "team", "workspace")
	if err := New(dir).Scaffold(); err != nil {
		t.Fatalf("Scaffold into missing root: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, constants.FileAgentStatus)); err != nil {
		t.Errorf("seed file missing after scaffold: %v", err)
	}
}

func TestScaffoldPreservesExistingFiles(t *testing.T) {
	dir := t.TempDir()
	statusPath := filepath.Join(dir, constants.FileAgentStatus)
	existing := `[{"agent_id":"agent-1"}]`
	if err := os.WriteFile(statusPath, []byte(existing), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := New(dir).Scaffold(); err != nil {
		t.Fatalf("Scaffold: %v", err)
	}

	data, err := os.ReadFile(statusPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != existing {
		t.Errorf("existing registry overwritten: %q", data)
	}
}

func TestScaffoldIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := New(dir)
	if err := w.Scaffold(); err != nil {
		t.Fatalf("first Scaffold: %v", err)
	}
	if err := w.Scaffold(); err != nil {
		t.Fatalf("second Scaffold: %v", err)
	}
}

func TestScaffoldMarksScriptsExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes not meaningful on Windows")
	}

	dir := t.TempDir()
	scriptsDir := filepath.Join(dir, constants.DirScripts)
	if err := os.MkdirAll(scriptsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	script := filepath.Join(scriptsDir, "agent_status.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	other := filepath.Join(scriptsDir, "README.md")
	if err := os.WriteFile(other, []byte("notes\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := New(dir).Scaffold(); err != nil {
		t.Fatalf("Scaffold: %v", err)
	}

	info, err := os.Stat(script)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Errorf("script mode = %o, want 755", info.Mode().Perm())
	}
	info, err = os.Stat(other)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Errorf("non-script mode changed to %o", info.Mode().Perm())
	}
}

func TestScaffoldWindowsSkipsChmod(t *testing.T) {
	dir := t.TempDir()
	w := New(dir)
	w.goos = "windows"
	w.chmod = func(string, os.FileMode) error {
		t.Error("chmod called on Windows")
		return nil
	}

	if err := w.Scaffold(); err != nil {
		t.Fatalf("Scaffold: %v", err)
	}
}

func TestScaffoldMissingScriptsDir(t *testing.T) {
	// A workspace without helper scripts still scaffolds cleanly.
	if err := New(t.TempDir()).Scaffold(); err != nil {
		t.Fatalf("Scaffold: %v", err)
	}
}
