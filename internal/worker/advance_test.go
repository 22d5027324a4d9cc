package worker

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hyperengineering/finquest/internal/store"
	"github.com/hyperengineering/finquest/internal/tracker"
)

// mockAdvancer implements DayAdvancer for testing
type mockAdvancer struct {
	mu    sync.Mutex
	day   int
	calls int
	err   error
}

func (m *mockAdvancer) AdvanceDay(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return 0, m.err
	}
	m.day++
	return m.day, nil
}

func (m *mockAdvancer) getCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestDayAdvanceWorker_RunsOnSchedule(t *testing.T) {
	adv := &mockAdvancer{}
	worker := NewDayAdvanceWorker(adv, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	go worker.Run(ctx)

	// Wait for at least 2 ticks
	time.Sleep(120 * time.Millisecond)
	cancel()

	if calls := adv.getCalls(); calls < 2 {
		t.Errorf("Expected at least 2 advance calls, got %d", calls)
	}
}

func TestDayAdvanceWorker_DoesNotRunImmediately(t *testing.T) {
	adv := &mockAdvancer{}
	worker := NewDayAdvanceWorker(adv, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())

	go worker.Run(ctx)

	time.Sleep(50 * time.Millisecond)
	cancel()

	if calls := adv.getCalls(); calls != 0 {
		t.Errorf("Expected 0 advance calls, got %d", calls)
	}
}

func TestDayAdvanceWorker_GracefulShutdown(t *testing.T) {
	worker := NewDayAdvanceWorker(&mockAdvancer{}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Error("Worker did not stop within 1 second")
	}
}

func TestDayAdvanceWorker_ContinuesAfterError(t *testing.T) {
	adv := &mockAdvancer{err: errors.New("database is locked")}
	worker := NewDayAdvanceWorker(adv, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	go worker.Run(ctx)

	time.Sleep(120 * time.Millisecond)
	cancel()

	if calls := adv.getCalls(); calls < 2 {
		t.Errorf("Expected at least 2 advance calls (continues on error), got %d", calls)
	}
}

func TestDayAdvanceWorker_AdvancesTracker(t *testing.T) {
	// Given a tracker on a real store
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "finquest.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer s.Close()
	tr, err := tracker.New(context.Background(), s, tracker.Options{})
	if err != nil {
		t.Fatalf("tracker.New failed: %v", err)
	}

	// When the worker ticks a few times
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewDayAdvanceWorker(tr, 30*time.Millisecond).Run(ctx)
		close(done)
	}()
	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	// Then the persisted clock moved forward
	if day := tr.CurrentDay(); day < 1 {
		t.Errorf("CurrentDay = %d, want at least 1", day)
	}
}
