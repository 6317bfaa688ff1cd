// Package syncer debounces document edits into remote upserts.
package syncer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"cvstudio/api/internal/store"
)

const (
	// DefaultDebounce is how long edits must quiesce before a save fires.
	DefaultDebounce = 1500 * time.Millisecond
	// DefaultMinHold keeps the syncing status visible even when the write
	// returns instantly, so status polls do not flicker.
	DefaultMinHold = 500 * time.Millisecond
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusSyncing Status = "syncing"
)

// RemoteStore is the write side the scheduler drains into.
type RemoteStore interface {
	UpsertResume(ctx context.Context, r store.Resume) error
}

// Scheduler coalesces a burst of edits into one upsert carrying the latest
// snapshot. A save that fails is logged and dropped; the next edit
// reschedules with fresher content anyway.
type Scheduler struct {
	remote   RemoteStore
	log      *zap.Logger
	debounce time.Duration
	minHold  time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending *store.Resume
	syncing int
	stopped bool

	wg sync.WaitGroup
}

type Option func(*Scheduler)

func WithDebounce(d time.Duration) Option {
	return func(s *Scheduler) { s.debounce = d }
}

func WithMinHold(d time.Duration) Option {
	return func(s *Scheduler) { s.minHold = d }
}

func New(remote RemoteStore, log *zap.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		remote:   remote,
		log:      log,
		debounce: DefaultDebounce,
		minHold:  DefaultMinHold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notify records the latest snapshot and restarts the debounce window.
// Later snapshots replace earlier ones; only the last survives to the save.
func (s *Scheduler) Notify(r store.Resume) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	snapshot := r
	s.pending = &snapshot
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.fire)
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.timer = nil
	if pending == nil || s.stopped {
		s.mu.Unlock()
		return
	}
	s.syncing++
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		start := time.Now()
		if err := s.remote.UpsertResume(context.Background(), *pending); err != nil {
			s.log.Warn("autosave failed, edits stay in memory",
				zap.String("resume_id", pending.ID),
				zap.Error(err))
		}
		if rest := s.minHold - time.Since(start); rest > 0 {
			time.Sleep(rest)
		}
		s.mu.Lock()
		s.syncing--
		s.mu.Unlock()
	}()
}

// FlushNow writes the given snapshot immediately, bypassing the debounce,
// and discards whatever was pending for it. Unlike the debounced path the
// error surfaces to the caller.
func (s *Scheduler) FlushNow(ctx context.Context, r store.Resume) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
	s.syncing++
	s.mu.Unlock()

	start := time.Now()
	err := s.remote.UpsertResume(ctx, r)

	go func() {
		if rest := s.minHold - time.Since(start); rest > 0 {
			time.Sleep(rest)
		}
		s.mu.Lock()
		s.syncing--
		s.mu.Unlock()
	}()
	return err
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.syncing > 0 {
		return StatusSyncing
	}
	return StatusIdle
}

// Stop cancels any pending save and waits for in-flight ones to settle.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
	s.mu.Unlock()
	s.wg.Wait()
}
