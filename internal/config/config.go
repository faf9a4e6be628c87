// Package config loads the optional nexus.toml workspace configuration.
// Every field has a compiled-in default; a missing file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/nexuslabs/nexus/internal/constants"
)

type Config struct {
	Heartbeat HeartbeatConfig `toml:"heartbeat"`
	Monitor   MonitorConfig   `toml:"monitor"`
	Workspace WorkspaceConfig `toml:"workspace"`
}

type HeartbeatConfig struct {
	IntervalSeconds int `toml:"interval_seconds"`
}

type MonitorConfig struct {
	PollSeconds int `toml:"poll_seconds"`
	// Multiplexer pins the hosting strategy ("screen", "tmux", "background")
	// instead of probing the platform. Empty means probe.
	Multiplexer string `toml:"multiplexer"`
}

type WorkspaceConfig struct {
	Root string `toml:"root"`
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		Heartbeat: HeartbeatConfig{IntervalSeconds: int(constants.HeartbeatInterval / time.Second)},
		Monitor:   MonitorConfig{PollSeconds: int(constants.StatusPollInterval / time.Second)},
		Workspace: WorkspaceConfig{Root: "."},
	}
}

// Load reads nexus.toml from dir, layered over the defaults. A missing file
// returns the defaults; a malformed file is an error.
func Load(dir string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(dir, constants.FileConfig)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", constants.FileConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", constants.FileConfig, err)
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.Heartbeat.IntervalSeconds <= 0 {
		return fmt.Errorf("heartbeat.interval_seconds must be positive")
	}
	if c.Monitor.PollSeconds <= 0 {
		return fmt.Errorf("monitor.poll_seconds must be positive")
	}
	switch c.Monitor.Multiplexer {
	case "", "screen", "tmux", "background":
	default:
		return fmt.Errorf("monitor.multiplexer must be screen, tmux or background")
	}
	return nil
}

// HeartbeatInterval returns the heartbeat interval as a duration.
func (c *Config) HeartbeatInterval() time.Duration {
	return time.Duration(c.Heartbeat.IntervalSeconds) * time.Second
}

// PollInterval returns the status poller interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Monitor.PollSeconds) * time.Second
}
