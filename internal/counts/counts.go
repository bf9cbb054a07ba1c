// Package counts keeps list badge counts in step with the task collection.
package counts

import (
	"sync"

	"myday/internal/list"
	"myday/internal/task"
)

// Tasks is the read side of the task store the counts are derived from.
type Tasks interface {
	MyDay() []task.Task
	Important() []task.Task
	Planned() []task.Task
	Tasks() []task.Task
	Completed() []task.Task
	Active() []task.Task
}

// Lists receives the recomputed counts.
type Lists interface {
	User() []list.List
	SetSystemCount(id string, n int)
	SetUserCount(id string, n int)
}

// BadgeSink renders the app-level indicator. It is only told about changes.
type BadgeSink interface {
	SetBadge(n int)
}

type Synchronizer struct {
	tasks Tasks
	lists Lists
	sink  BadgeSink

	mu    sync.Mutex
	badge int
	sent  bool
}

func New(tasks Tasks, lists Lists, sink BadgeSink) *Synchronizer {
	return &Synchronizer{tasks: tasks, lists: lists, sink: sink}
}

// Recompute rebuilds every count from scratch and writes it through.
// "All" deliberately counts only active tasks.
func (s *Synchronizer) Recompute() {
	myDay := s.tasks.MyDay()
	important := s.tasks.Important()
	active := s.tasks.Active()

	s.lists.SetSystemCount(list.MyDay, len(myDay))
	s.lists.SetSystemCount(list.Important, len(important))
	s.lists.SetSystemCount(list.Planned, len(s.tasks.Planned()))
	s.lists.SetSystemCount(list.Tasks, len(s.tasks.Tasks()))
	s.lists.SetSystemCount(list.Completed, len(s.tasks.Completed()))
	s.lists.SetSystemCount(list.All, len(active))

	perList := map[string]int{}
	for _, t := range active {
		perList[t.ListID]++
	}
	for _, l := range s.lists.User() {
		s.lists.SetUserCount(l.ID, perList[l.ID])
	}

	s.setBadge(Badge(myDay, important))
}

func (s *Synchronizer) setBadge(n int) {
	s.mu.Lock()
	changed := !s.sent || n != s.badge
	s.badge, s.sent = n, true
	s.mu.Unlock()
	if changed && s.sink != nil {
		s.sink.SetBadge(n)
	}
}

// Badge returns the value computed by the last Recompute.
func (s *Synchronizer) Badge() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.badge
}

// Badge counts the distinct tasks across My Day and Important.
func Badge(myDay, important []task.Task) int {
	ids := make(map[string]struct{}, len(myDay)+len(important))
	for _, t := range myDay {
		ids[t.ID] = struct{}{}
	}
	for _, t := range important {
		ids[t.ID] = struct{}{}
	}
	return len(ids)
}
