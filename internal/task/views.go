package task

// Views are recomputed on every call and return copies in collection order.

func (s *Store) filter(keep func(t *Task) bool) []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if keep(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// All returns every task, completed or not.
func (s *Store) All() []Task {
	return s.filter(func(*Task) bool { return true })
}

// Active returns every task that is not completed.
func (s *Store) Active() []Task {
	return s.filter(func(t *Task) bool { return t.Active() })
}

func (s *Store) MyDay() []Task {
	return s.filter(func(t *Task) bool {
		return t.Active() && s.clock.IsToday(t.MyDayDate)
	})
}

func (s *Store) Important() []Task {
	return s.filter(func(t *Task) bool { return t.Active() && t.IsImportant })
}

func (s *Store) Planned() []Task {
	return s.filter(func(t *Task) bool { return t.Active() && t.PlannedDate != nil })
}

// Tasks is the default list view.
func (s *Store) Tasks() []Task {
	return s.ByList(DefaultListID)
}

func (s *Store) Completed() []Task {
	return s.filter(func(t *Task) bool { return t.IsCompleted })
}

func (s *Store) ByList(listID string) []Task {
	return s.filter(func(t *Task) bool { return t.Active() && t.ListID == listID })
}
