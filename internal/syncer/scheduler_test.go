package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"cvstudio/api/internal/store"
)

type recordingRemote struct {
	mu    sync.Mutex
	calls []store.Resume
	err   error
	delay time.Duration
}

func (r *recordingRemote) UpsertResume(_ context.Context, res store.Resume) error {
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, res)
	return r.err
}

func (r *recordingRemote) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recordingRemote) last() store.Resume {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[len(r.calls)-1]
}

func withTitle(title string) store.Resume {
	return store.Resume{ID: "cv-1", OwnerID: "user-1", Title: title}
}

func TestBurstCoalescesToLastSnapshot(t *testing.T) {
	remote := &recordingRemote{}
	s := New(remote, zap.NewNop(), WithDebounce(50*time.Millisecond), WithMinHold(0))
	defer s.Stop()

	// Three edits inside one debounce window: only the last survives.
	s.Notify(withTitle("a"))
	time.Sleep(15 * time.Millisecond)
	s.Notify(withTitle("ab"))
	time.Sleep(15 * time.Millisecond)
	s.Notify(withTitle("abc"))

	time.Sleep(150 * time.Millisecond)

	if got := remote.count(); got != 1 {
		t.Fatalf("want 1 upsert, got %d", got)
	}
	if got := remote.last().Title; got != "abc" {
		t.Fatalf("want last snapshot, got %q", got)
	}
}

func TestQuietGapsProduceSeparateSaves(t *testing.T) {
	remote := &recordingRemote{}
	s := New(remote, zap.NewNop(), WithDebounce(30*time.Millisecond), WithMinHold(0))
	defer s.Stop()

	s.Notify(withTitle("first"))
	time.Sleep(80 * time.Millisecond)
	s.Notify(withTitle("second"))
	time.Sleep(80 * time.Millisecond)

	if got := remote.count(); got != 2 {
		t.Fatalf("want 2 upserts, got %d", got)
	}
}

func TestStatusHoldsAfterFastSave(t *testing.T) {
	remote := &recordingRemote{}
	s := New(remote, zap.NewNop(), WithDebounce(10*time.Millisecond), WithMinHold(80*time.Millisecond))
	defer s.Stop()

	s.Notify(withTitle("a"))
	time.Sleep(30 * time.Millisecond)

	// The write already returned, the hold keeps the status visible.
	if got := s.Status(); got != StatusSyncing {
		t.Fatalf("want syncing during hold, got %q", got)
	}

	time.Sleep(120 * time.Millisecond)
	if got := s.Status(); got != StatusIdle {
		t.Fatalf("want idle after hold, got %q", got)
	}
}

func TestFailedSaveIsSwallowed(t *testing.T) {
	remote := &recordingRemote{err: errors.New("boom")}
	s := New(remote, zap.NewNop(), WithDebounce(10*time.Millisecond), WithMinHold(0))
	defer s.Stop()

	s.Notify(withTitle("a"))
	time.Sleep(60 * time.Millisecond)

	if got := remote.count(); got != 1 {
		t.Fatalf("want the save attempted once, got %d", got)
	}
	if got := s.Status(); got != StatusIdle {
		t.Fatalf("want idle after failed save, got %q", got)
	}
}

func TestFlushNowBypassesDebounce(t *testing.T) {
	remote := &recordingRemote{}
	s := New(remote, zap.NewNop(), WithDebounce(time.Hour), WithMinHold(0))
	defer s.Stop()

	s.Notify(withTitle("pending"))
	if err := s.FlushNow(context.Background(), withTitle("flushed")); err != nil {
		t.Fatalf("flush: %v", err)
	}

	if got := remote.count(); got != 1 {
		t.Fatalf("want 1 upsert, got %d", got)
	}
	if got := remote.last().Title; got != "flushed" {
		t.Fatalf("want flushed snapshot, got %q", got)
	}

	// The debounced save was cancelled by the flush.
	time.Sleep(30 * time.Millisecond)
	if got := remote.count(); got != 1 {
		t.Fatalf("cancelled save still fired, count %d", got)
	}
}

func TestFlushNowSurfacesError(t *testing.T) {
	remote := &recordingRemote{err: errors.New("boom")}
	s := New(remote, zap.NewNop(), WithMinHold(0))
	defer s.Stop()

	if err := s.FlushNow(context.Background(), withTitle("a")); err == nil {
		t.Fatal("want error from flush")
	}
}

func TestStopCancelsPending(t *testing.T) {
	remote := &recordingRemote{}
	s := New(remote, zap.NewNop(), WithDebounce(20*time.Millisecond), WithMinHold(0))

	s.Notify(withTitle("a"))
	s.Stop()
	time.Sleep(60 * time.Millisecond)

	if got := remote.count(); got != 0 {
		t.Fatalf("save fired after stop, count %d", got)
	}
}
