package storage

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	pkgLog "myday/pkg/log"
)

// Saver writes snapshots in the background. Submissions never block and
// only the latest pending snapshot is written; writes are throttled to the
// configured rate.
type Saver struct {
	backend Backend
	limiter *rate.Limiter
	l       pkgLog.Logger

	writeMu sync.Mutex
	mu      sync.Mutex
	pending *Snapshot
	wake    chan struct{}
}

func NewSaver(backend Backend, perSecond float64, l pkgLog.Logger) *Saver {
	if perSecond <= 0 {
		perSecond = 2
	}
	return &Saver{
		backend: backend,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		l:       l,
		wake:    make(chan struct{}, 1),
	}
}

// Submit queues snap, replacing anything not yet written.
func (s *Saver) Submit(snap Snapshot) {
	s.mu.Lock()
	s.pending = &snap
	s.mu.Unlock()
	s.signal()
}

func (s *Saver) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Run writes queued snapshots until ctx is done.
func (s *Saver) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return
		}
		if err := s.Flush(ctx); err != nil {
			s.l.Errorf(ctx, "save snapshot: %v", err)
			// retry on the next limiter slot
			s.signal()
		}
	}
}

// Flush writes the pending snapshot now, if there is one.
func (s *Saver) Flush(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	snap := s.pending
	s.pending = nil
	s.mu.Unlock()
	if snap == nil {
		return nil
	}
	if err := s.backend.Save(ctx, *snap); err != nil {
		// keep it for the next attempt unless something newer arrived
		s.mu.Lock()
		if s.pending == nil {
			s.pending = snap
		}
		s.mu.Unlock()
		return err
	}
	return nil
}
