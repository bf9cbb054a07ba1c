// Package task owns the task collection, its mutations, the derived smart
// views, and recurrence advancement.
package task

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"myday/internal/calendar"
)

// Store holds tasks most-recent-first. Lookups that miss are silent no-ops.
//
// Subscribers run synchronously after every committed mutation, outside the
// store lock, so they may read the store.
type Store struct {
	mu        sync.RWMutex
	tasks     []*Task
	clock     calendar.Clock
	newID     func() string
	listeners map[int]func()
	nextSub   int
}

type Option func(*Store)

func WithClock(c calendar.Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		clock:     calendar.System,
		newID:     uuid.NewString,
		listeners: map[int]func(){},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Clock exposes the store's notion of "now".
func (s *Store) Clock() calendar.Clock {
	return s.clock
}

// Subscribe registers fn to run after each change to the collection.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) publish() {
	s.mu.RLock()
	fns := make([]func(), 0, len(s.listeners))
	for i := 0; i < s.nextSub; i++ {
		if fn, ok := s.listeners[i]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

// mutate runs fn under the write lock and publishes when fn reports a change.
func (s *Store) mutate(fn func() bool) {
	s.mu.Lock()
	changed := fn()
	s.mu.Unlock()
	if changed {
		s.publish()
	}
}

func (s *Store) find(id string) (*Task, int) {
	for i, t := range s.tasks {
		if t.ID == id {
			return t, i
		}
	}
	return nil, -1
}

// Replace swaps in a whole collection, as after loading a snapshot.
func (s *Store) Replace(tasks []Task) {
	s.mu.Lock()
	s.tasks = make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		c := t.Clone()
		s.tasks = append(s.tasks, &c)
	}
	s.mu.Unlock()
	s.publish()
}

func (s *Store) Get(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, _ := s.find(id)
	if t == nil {
		return Task{}, false
	}
	return t.Clone(), true
}

// AddTask creates a task with defaults, applies overrides, and puts it first.
func (s *Store) AddTask(content string, overrides ...Patch) Task {
	var out Task
	s.mutate(func() bool {
		out = s.insert(content, overrides...).Clone()
		return true
	})
	return out
}

func (s *Store) insert(content string, overrides ...Patch) *Task {
	now := s.clock()
	t := &Task{
		ID:        s.newID(),
		Content:   content,
		ListID:    DefaultListID,
		Steps:     []SubTask{},
		CreatedAt: now,
	}
	for _, p := range overrides {
		p.apply(t, now)
	}
	s.tasks = append([]*Task{t}, s.tasks...)
	return t
}

func (s *Store) AddToMyDay(content string) Task {
	now := s.clock()
	return s.AddTask(content, Patch{MyDayDate: &now})
}

func (s *Store) AddImportant(content string) Task {
	return s.AddTask(content, Patch{IsImportant: Ptr(true)})
}

// AddPlanned schedules the new task on date's local day, or today when date
// is nil.
func (s *Store) AddPlanned(content string, date *time.Time) Task {
	day := s.clock.Today()
	if date != nil {
		day = calendar.StartOfDay(*date)
	}
	return s.AddTask(content, Patch{PlannedDate: &day})
}

func (s *Store) AddToList(content, listID string) Task {
	return s.AddTask(content, Patch{ListID: &listID})
}

// update applies fn to the task with id and publishes if it exists.
func (s *Store) update(id string, fn func(t *Task)) {
	s.mutate(func() bool {
		t, _ := s.find(id)
		if t == nil {
			return false
		}
		fn(t)
		return true
	})
}

// ToggleCompleted flips completion. Completing a recurring task spawns its
// successor in the same change.
func (s *Store) ToggleCompleted(id string) {
	s.update(id, func(t *Task) {
		now := s.clock()
		t.IsCompleted = !t.IsCompleted
		if !t.IsCompleted {
			t.CompletedAt = nil
			return
		}
		t.CompletedAt = &now
		if t.Recurrence != nil {
			s.spawnSuccessor(t)
		}
	})
}

func (s *Store) ToggleImportant(id string) {
	s.update(id, func(t *Task) {
		t.IsImportant = !t.IsImportant
	})
}

// ToggleMyDay clears a task that is in today's My Day, otherwise stamps it
// with now. A stale date from an earlier day counts as not in My Day.
func (s *Store) ToggleMyDay(id string) {
	s.update(id, func(t *Task) {
		if s.clock.IsToday(t.MyDayDate) {
			t.MyDayDate = nil
			return
		}
		now := s.clock()
		t.MyDayDate = &now
	})
}

func (s *Store) UpdateTask(id string, p Patch) {
	s.update(id, func(t *Task) {
		p.apply(t, s.clock())
	})
}

func (s *Store) UpdateNote(id, note string) {
	s.update(id, func(t *Task) { t.Note = note })
}

func (s *Store) MoveToList(id, listID string) {
	s.update(id, func(t *Task) { t.ListID = listID })
}

// SetScheduledDate stores date normalised to local midnight.
func (s *Store) SetScheduledDate(id string, date time.Time) {
	day := calendar.StartOfDay(date)
	s.update(id, func(t *Task) { t.PlannedDate = &day })
}

// ClearScheduledDate drops the planned date and any recurrence anchored on it.
func (s *Store) ClearScheduledDate(id string) {
	s.update(id, func(t *Task) {
		t.PlannedDate = nil
		t.Recurrence = nil
	})
}

func (s *Store) SetReminder(id string, at time.Time) {
	s.update(id, func(t *Task) { t.ReminderTime = &at })
}

func (s *Store) ClearReminder(id string) {
	s.update(id, func(t *Task) { t.ReminderTime = nil })
}

// SetRecurrence stores rule. An unscheduled task gets a first planned date
// derived from the rule; a monthly rule is pinned to that date's day.
func (s *Store) SetRecurrence(id string, rule *Recurrence) {
	s.update(id, func(t *Task) {
		t.Recurrence = rule.Clone()
		if rule == nil {
			return
		}
		if t.PlannedDate == nil {
			first := InitialDate(s.clock.Today(), *rule)
			t.PlannedDate = &first
		}
		t.Recurrence = pinMonthDay(rule, calendar.StartOfDay(*t.PlannedDate))
	})
}

func (s *Store) DeleteTask(id string) {
	s.mutate(func() bool {
		_, i := s.find(id)
		if i < 0 {
			return false
		}
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
		return true
	})
}

func findStep(t *Task, stepID string) int {
	for i, st := range t.Steps {
		if st.ID == stepID {
			return i
		}
	}
	return -1
}

// AddStep appends a checklist step. ok is false when the task is missing.
func (s *Store) AddStep(taskID, content string) (step SubTask, ok bool) {
	s.mutate(func() bool {
		t, _ := s.find(taskID)
		if t == nil {
			return false
		}
		step = SubTask{ID: s.newID(), Content: content}
		t.Steps = append(t.Steps, step)
		ok = true
		return true
	})
	return step, ok
}

func (s *Store) ToggleStep(taskID, stepID string) {
	s.mutate(func() bool {
		t, _ := s.find(taskID)
		if t == nil {
			return false
		}
		i := findStep(t, stepID)
		if i < 0 {
			return false
		}
		t.Steps[i].IsCompleted = !t.Steps[i].IsCompleted
		return true
	})
}

func (s *Store) UpdateStep(taskID, stepID, content string) {
	s.mutate(func() bool {
		t, _ := s.find(taskID)
		if t == nil {
			return false
		}
		i := findStep(t, stepID)
		if i < 0 {
			return false
		}
		t.Steps[i].Content = content
		return true
	})
}

func (s *Store) DeleteStep(taskID, stepID string) {
	s.mutate(func() bool {
		t, _ := s.find(taskID)
		if t == nil {
			return false
		}
		return removeStep(t, stepID)
	})
}

func removeStep(t *Task, stepID string) bool {
	i := findStep(t, stepID)
	if i < 0 {
		return false
	}
	t.Steps = append(t.Steps[:i], t.Steps[i+1:]...)
	return true
}

// ReorderSteps replaces the step sequence wholesale.
func (s *Store) ReorderSteps(taskID string, steps []SubTask) {
	s.update(taskID, func(t *Task) {
		t.Steps = append(make([]SubTask, 0, len(steps)), steps...)
	})
}

// PromoteStep turns a step into a standalone task in the parent's list.
func (s *Store) PromoteStep(taskID, stepID string) (promoted Task, ok bool) {
	s.mutate(func() bool {
		parent, _ := s.find(taskID)
		if parent == nil {
			return false
		}
		i := findStep(parent, stepID)
		if i < 0 {
			return false
		}
		step := parent.Steps[i]
		listID := parent.ListID
		promoted = s.insert(step.Content, Patch{ListID: &listID}).Clone()
		removeStep(parent, stepID)
		ok = true
		return true
	})
	return promoted, ok
}

// StepsProgress counts completed and total steps of a task.
func (s *Store) StepsProgress(taskID string) (completed, total int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, _ := s.find(taskID)
	if t == nil {
		return 0, 0
	}
	for _, st := range t.Steps {
		if st.IsCompleted {
			completed++
		}
	}
	return completed, len(t.Steps)
}
