package simulation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRunOnceRefusesOverlap(t *testing.T) {
	block := make(chan struct{})
	entered := make(chan struct{})
	var enteredOnce sync.Once
	s := &Scheduler{
		sweep: func(ctx context.Context) (int, error) {
			enteredOnce.Do(func() { close(entered) })
			<-block
			return 0, nil
		},
		interval: time.Hour,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := s.RunOnce(context.Background()); err != nil {
			t.Errorf("first sweep: %v", err)
		}
	}()

	<-entered
	if _, err := s.RunOnce(context.Background()); !errors.Is(err, ErrSweepRunning) {
		t.Fatalf("expected ErrSweepRunning while a sweep is in flight, got %v", err)
	}

	close(block)
	wg.Wait()

	// The guard clears once the first sweep returns.
	if _, err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("sweep after completion: %v", err)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	var mu sync.Mutex
	runs := 0
	s := &Scheduler{
		sweep: func(ctx context.Context) (int, error) {
			mu.Lock()
			runs++
			mu.Unlock()
			return 0, nil
		},
		interval: 10 * time.Millisecond,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	s.Start()
	time.Sleep(35 * time.Millisecond)
	s.Stop()

	mu.Lock()
	got := runs
	mu.Unlock()
	// One immediate sweep plus at least one tick.
	if got < 2 {
		t.Fatalf("expected at least 2 sweeps, got %d", got)
	}

	mu.Lock()
	after := runs
	mu.Unlock()
	time.Sleep(30 * time.Millisecond)
	mu.Lock()
	final := runs
	mu.Unlock()
	if final != after {
		t.Fatalf("sweeps continued after Stop: %d -> %d", after, final)
	}
}

func TestStopWithoutStartIsNoOp(t *testing.T) {
	s := NewScheduler(New(newMemStore()), time.Hour)
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked for a scheduler that was never started")
	}
}
