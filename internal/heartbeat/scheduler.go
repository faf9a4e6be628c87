// Package heartbeat runs the periodic liveness report for a registered agent.
// The scheduler is a process-wide singleton per agent id: starting it again
// for the same id terminates whatever owned the previous heartbeat record
// first, so at most one heartbeat task is ever attributed to an agent.
package heartbeat

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/nexuslabs/nexus/internal/constants"
	"github.com/nexuslabs/nexus/internal/pidfile"
)

// Reporter invokes the external liveness report command for an agent.
// Failures are swallowed by the scheduler per contract.
type Reporter interface {
	ReportHeartbeat(ctx context.Context, agentID string) error
}

// Scheduler owns the background heartbeat loop for one agent.
type Scheduler struct {
	store    *pidfile.Store
	reporter Reporter
	interval time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	agentID string
	cancel  context.CancelFunc
	done    chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithInterval overrides the tick interval (default 60s).
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.interval = d }
}

// WithLogger sets the scheduler's logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// NewScheduler creates a heartbeat scheduler backed by the given pid store.
func NewScheduler(store *pidfile.Store, reporter Reporter, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:    store,
		reporter: reporter,
		interval: constants.HeartbeatInterval,
		logger:   log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the heartbeat loop for the agent. Any prior heartbeat record
// for the same id is terminated and cleared first, then a fresh record is
// written pointing at this process, the idempotent-restart sequence. The
// loop reports immediately, then on every tick until ctx is canceled or Stop
// is called; a failed report is logged and retried on the next tick, with no
// backoff and no cap.
func (s *Scheduler) Start(ctx context.Context, agentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return fmt.Errorf("heartbeat already started for %s", s.agentID)
	}

	key := constants.HeartbeatOwnerKey(agentID)
	if err := s.store.Replace(key, os.Getpid()); err != nil {
		return fmt.Errorf("claiming heartbeat record: %w", err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.agentID = agentID
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(loopCtx, agentID)
	return nil
}

// loop is the heartbeat task body. It never terminates on its own; only
// context cancellation ends it.
func (s *Scheduler) loop(ctx context.Context, agentID string) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.report(ctx, agentID)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.report(ctx, agentID)
		}
	}
}

// report performs one liveness report, swallowing any failure.
func (s *Scheduler) report(ctx context.Context, agentID string) {
	if err := s.reporter.ReportHeartbeat(ctx, agentID); err != nil {
		s.logger.Printf("heartbeat report failed for %s: %v (will retry)", agentID, err)
	}
}

// Stop cancels the heartbeat loop and clears this agent's record. Safe to
// call when the scheduler was never started.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done

	// The record points at this process; remove it without signaling.
	if err := s.store.Remove(constants.HeartbeatOwnerKey(s.agentID)); err != nil {
		s.logger.Printf("clearing heartbeat record for %s: %v", s.agentID, err)
	}

	s.cancel = nil
	s.done = nil
	s.agentID = ""
}
