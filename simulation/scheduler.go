package simulation

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// ErrSweepRunning is returned by RunOnce when a sweep is already in flight.
var ErrSweepRunning = errors.New("simulation: sweep already running")

// Scheduler drives the engine's sweep on a fixed interval. It is an explicit
// service owned by the process lifecycle: constructed in main, started after the
// store is ready, stopped on shutdown. A tick that fires while the previous sweep
// is still running is skipped, so the sweep never overlaps itself.
type Scheduler struct {
	sweep    func(context.Context) (int, error)
	interval time.Duration
	running  atomic.Bool
	started  atomic.Bool
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

func NewScheduler(engine *Engine, interval time.Duration) *Scheduler {
	return &Scheduler{
		sweep:    engine.Sweep,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the tick loop in the background. An immediate first sweep catches
// up anything owed from downtime before the first interval elapses.
func (s *Scheduler) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(s.done)
		s.run()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.run()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop halts the tick loop and waits for an in-flight sweep to finish. Stopping
// a scheduler that was never started is a no-op.
func (s *Scheduler) Stop() {
	if !s.started.Load() {
		return
	}
	s.once.Do(func() { close(s.stop) })
	<-s.done
}

// RunOnce triggers a single sweep, as used by the cron endpoint. It refuses to
// overlap a sweep already in progress.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	if !s.running.CompareAndSwap(false, true) {
		return 0, ErrSweepRunning
	}
	defer s.running.Store(false)
	return s.sweep(ctx)
}

func (s *Scheduler) run() {
	start := time.Now()
	processed, err := s.RunOnce(context.Background())
	switch {
	case errors.Is(err, ErrSweepRunning):
		log.Printf("[simulation] sweep still running, tick skipped")
	case err != nil:
		log.Printf("[simulation] sweep failed after %s: %v", time.Since(start).Round(time.Millisecond), err)
	default:
		log.Printf("[simulation] sweep processed %d purchases in %s", processed, time.Since(start).Round(time.Millisecond))
	}
}
