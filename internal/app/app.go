// Package app owns one instance of each store and keeps them wired together.
package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"myday/internal/calendar"
	"myday/internal/counts"
	"myday/internal/list"
	"myday/internal/storage"
	"myday/internal/task"
	pkgLog "myday/pkg/log"
)

type options struct {
	clock     calendar.Clock
	sink      counts.BadgeSink
	perSecond float64
	taskIDs   func() string
	listIDs   func() string
}

type Option func(*options)

func WithClock(c calendar.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithBadgeSink routes badge changes to sink.
func WithBadgeSink(sink counts.BadgeSink) Option {
	return func(o *options) { o.sink = sink }
}

// WithSaveRate caps snapshot writes per second.
func WithSaveRate(perSecond float64) Option {
	return func(o *options) { o.perSecond = perSecond }
}

func WithIDGenerators(taskIDs, listIDs func() string) Option {
	return func(o *options) {
		o.taskIDs, o.listIDs = taskIDs, listIDs
	}
}

type App struct {
	Tasks  *task.Store
	Lists  *list.Store
	Counts *counts.Synchronizer

	backend storage.Backend
	saver   *storage.Saver
	l       pkgLog.Logger

	loading atomic.Bool
	runOnce sync.Once
	stop    context.CancelFunc
	done    chan struct{}
}

func New(backend storage.Backend, l pkgLog.Logger, opts ...Option) *App {
	o := options{clock: calendar.System, perSecond: 2}
	for _, opt := range opts {
		opt(&o)
	}

	taskOpts := []task.Option{task.WithClock(o.clock)}
	listOpts := []list.Option{}
	if o.taskIDs != nil {
		taskOpts = append(taskOpts, task.WithIDGenerator(o.taskIDs))
	}
	if o.listIDs != nil {
		listOpts = append(listOpts, list.WithIDGenerator(o.listIDs))
	}

	a := &App{
		Tasks:   task.NewStore(taskOpts...),
		Lists:   list.NewStore(listOpts...),
		backend: backend,
		saver:   storage.NewSaver(backend, o.perSecond, l),
		l:       l,
	}
	a.Counts = counts.New(a.Tasks, a.Lists, o.sink)

	a.Tasks.Subscribe(a.changed)
	a.Lists.Subscribe(a.changed)
	return a
}

func (a *App) changed() {
	a.Counts.Recompute()
	if a.loading.Load() {
		return
	}
	a.saver.Submit(a.Snapshot())
}

// Load replaces the in-memory state with the backend's and recomputes
// every count.
func (a *App) Load(ctx context.Context) error {
	snap, err := a.backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	a.loading.Store(true)
	a.Tasks.Replace(snap.Tasks)
	a.Lists.Restore(snap.SystemLists, snap.UserLists)
	a.loading.Store(false)
	a.Counts.Recompute()
	a.l.Debugf(ctx, "loaded %d tasks, %d user lists", len(snap.Tasks), len(snap.UserLists))
	return nil
}

func (a *App) Snapshot() storage.Snapshot {
	return storage.Snapshot{
		Tasks:       a.Tasks.All(),
		SystemLists: a.Lists.System(),
		UserLists:   a.Lists.User(),
	}
}

// Run starts the background saver. It returns immediately.
func (a *App) Run(ctx context.Context) {
	a.runOnce.Do(func() {
		ctx, cancel := context.WithCancel(ctx)
		a.stop = cancel
		a.done = make(chan struct{})
		go func() {
			defer close(a.done)
			a.saver.Run(ctx)
		}()
	})
}

// Close stops the saver and writes whatever is still pending.
func (a *App) Close(ctx context.Context) error {
	if a.stop != nil {
		a.stop()
		<-a.done
	}
	if err := a.saver.Flush(ctx); err != nil {
		return fmt.Errorf("flush state: %w", err)
	}
	return nil
}

// DeleteList removes a user list. Its tasks keep their list id and drop
// out of every view scoped to a list.
func (a *App) DeleteList(id string) {
	if l, ok := a.Lists.Get(id); !ok || l.Kind != list.KindUser {
		return
	}
	a.Lists.Delete(id)
}

// View returns the tasks shown for a system or user list id.
func (a *App) View(listID string) []task.Task {
	switch listID {
	case list.MyDay:
		return a.Tasks.MyDay()
	case list.Important:
		return a.Tasks.Important()
	case list.Planned:
		return a.Tasks.Planned()
	case list.Tasks:
		return a.Tasks.Tasks()
	case list.Completed:
		return a.Tasks.Completed()
	case list.All:
		return a.Tasks.Active()
	default:
		return a.Tasks.ByList(listID)
	}
}

// AddIn creates a task in the context of the given list, pre-setting the
// field that list filters on.
func (a *App) AddIn(listID, content string) task.Task {
	switch listID {
	case list.MyDay:
		return a.Tasks.AddToMyDay(content)
	case list.Important:
		return a.Tasks.AddImportant(content)
	case list.Planned:
		return a.Tasks.AddPlanned(content, nil)
	case list.Tasks, list.Completed, list.All:
		return a.Tasks.AddTask(content)
	default:
		return a.Tasks.AddToList(content, listID)
	}
}
