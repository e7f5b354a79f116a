package session

import (
	"sync"
	"time"
)

// Sweeper periodically evicts idle sessions from a Registry. It acts only
// on idle sessions; in-flight requests keep their session alive through
// the last-activity bump on each turn append.
type Sweeper struct {
	registry  *Registry
	interval  time.Duration
	threshold time.Duration

	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewSweeper creates a Sweeper that runs SweepStale(threshold) every
// interval until Stop is called.
func NewSweeper(registry *Registry, interval, threshold time.Duration) *Sweeper {
	return &Sweeper{
		registry:  registry,
		interval:  interval,
		threshold: threshold,
		stop:      make(chan struct{}),
	}
}

// Start launches the sweep loop.
func (s *Sweeper) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.registry.SweepStale(s.threshold)
			}
		}
	}()
}

// Stop halts the sweep loop and waits for it to exit. Safe to call more
// than once.
func (s *Sweeper) Stop() {
	s.once.Do(func() { close(s.stop) })
	s.wg.Wait()
}
