// Package reminder polls the task collection and fires each due reminder once.
package reminder

import (
	"context"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"myday/internal/calendar"
	"myday/internal/task"
	pkgLog "myday/pkg/log"
)

const (
	DefaultInterval = 30 * time.Second
	DefaultDedupCap = 100
)

// Source lists the tasks to inspect.
type Source interface {
	Active() []task.Task
}

// Notifier delivers one reminder. Errors are logged by the poller and never
// affect the task store.
type Notifier interface {
	Notify(ctx context.Context, t task.Task) error
}

type NotifierFunc func(ctx context.Context, t task.Task) error

func (f NotifierFunc) Notify(ctx context.Context, t task.Task) error { return f(ctx, t) }

type Config struct {
	Interval time.Duration
	DedupCap int
	Clock    calendar.Clock
}

type Poller struct {
	src      Source
	notifier Notifier
	l        pkgLog.Logger
	interval time.Duration
	clock    calendar.Clock

	mu        sync.Mutex
	notified  *lru.Cache[string, struct{}]
	lastCheck time.Time
	cancel    context.CancelFunc
	done      chan struct{}
}

func New(src Source, notifier Notifier, l pkgLog.Logger, cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.DedupCap <= 0 {
		cfg.DedupCap = DefaultDedupCap
	}
	if cfg.Clock == nil {
		cfg.Clock = calendar.System
	}
	// Lookups use Contains, which leaves recency alone, so eviction drops the
	// oldest entry first.
	cache, _ := lru.New[string, struct{}](cfg.DedupCap)
	return &Poller{
		src:      src,
		notifier: notifier,
		l:        l,
		interval: cfg.Interval,
		clock:    cfg.Clock,
		notified: cache,
	}
}

func key(t task.Task) string {
	return t.ID + "|" + t.ReminderTime.Format(time.RFC3339Nano)
}

// Start begins polling. Reminders already past at start are skipped.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.lastCheck = p.clock()
	done := p.done
	p.mu.Unlock()

	p.l.Infof(ctx, "reminder poller started, interval %s", p.interval)
	go func() {
		defer close(done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.Check(ctx)
			}
		}
	}()
}

// Stop halts polling and waits for the loop to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.lastCheck = time.Time{}
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Check runs one poll. A reminder fires when it is due now and came due at
// or after the previous poll.
func (p *Poller) Check(ctx context.Context) int {
	now := p.clock()
	p.mu.Lock()
	since := p.lastCheck
	p.lastCheck = now
	p.mu.Unlock()

	fired := 0
	for _, t := range p.src.Active() {
		if t.ReminderTime == nil {
			continue
		}
		at := *t.ReminderTime
		if now.Before(at) || (!since.IsZero() && at.Before(since)) {
			continue
		}
		k := key(t)
		if p.notified.Contains(k) {
			continue
		}
		p.notified.Add(k, struct{}{})
		fired++
		if err := p.notifier.Notify(ctx, t); err != nil {
			p.l.Errorf(ctx, "reminder for task %s failed: %v", t.ID, err)
		}
	}
	return fired
}

// ClearNotified forgets every reminder sent for taskID.
func (p *Poller) ClearNotified(taskID string) {
	prefix := taskID + "|"
	for _, k := range p.notified.Keys() {
		if strings.HasPrefix(k, prefix) {
			p.notified.Remove(k)
		}
	}
}

func (p *Poller) ClearAll() {
	p.notified.Purge()
}
