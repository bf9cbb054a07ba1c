package task

import (
	"sort"
	"time"

	"myday/internal/calendar"
)

// Step advances date by a single occurrence of rule. date is expected at
// local midnight. Unknown rule types advance one day.
func Step(date time.Time, rule Recurrence) time.Time {
	n := rule.Every()
	switch rule.Type {
	case Daily:
		return addDays(date, n)
	case Weekdays:
		next := addDays(date, 1)
		for calendar.IsWeekend(next) {
			next = addDays(next, 1)
		}
		return next
	case Weekly:
		days := weekdaySet(rule.DaysOfWeek)
		if len(days) == 0 {
			return addDays(date, 7*n)
		}
		wd := int(date.Weekday())
		for _, d := range days {
			if d > wd {
				return addDays(date, d-wd)
			}
		}
		weekStart := addDays(date, -wd)
		return addDays(weekStart, 7*n+days[0])
	case Monthly:
		day := date.Day()
		if rule.DayOfMonth > 0 {
			day = rule.DayOfMonth
		}
		return clampedDate(date.Year(), date.Month()+time.Month(n), day)
	case Yearly:
		return clampedDate(date.Year()+n, date.Month(), date.Day())
	default:
		return addDays(date, 1)
	}
}

// NextOccurrence steps once from anchor, then keeps stepping while the result
// is still before today so a missed series never lands in the past.
func NextOccurrence(anchor time.Time, rule Recurrence, today time.Time) time.Time {
	anchor = calendar.StartOfDay(anchor)
	today = calendar.StartOfDay(today)
	next := Step(anchor, rule)
	for next.Before(today) {
		prev := next
		next = Step(next, rule)
		if !next.After(prev) {
			next = addDays(prev, 1)
		}
	}
	return next
}

// InitialDate picks the first planned date for a rule attached to an
// unscheduled task. today must be local midnight.
func InitialDate(today time.Time, rule Recurrence) time.Time {
	switch rule.Type {
	case Weekdays:
		switch today.Weekday() {
		case time.Saturday:
			return addDays(today, 2)
		case time.Sunday:
			return addDays(today, 1)
		}
	case Weekly:
		days := weekdaySet(rule.DaysOfWeek)
		if len(days) == 0 {
			return today
		}
		want := make(map[int]bool, len(days))
		for _, d := range days {
			want[d] = true
		}
		for i := 0; i < 7*rule.Every(); i++ {
			d := addDays(today, i)
			if want[int(d.Weekday())] {
				return d
			}
		}
	}
	return today
}

// spawnSuccessor inserts the next occurrence of a just-completed task.
// Caller holds the write lock.
func (s *Store) spawnSuccessor(done *Task) {
	anchor := done.CreatedAt
	if done.PlannedDate != nil {
		anchor = *done.PlannedDate
	}
	rule := pinMonthDay(done.Recurrence, calendar.StartOfDay(anchor))
	next := NextOccurrence(anchor, *rule, s.clock.Today())

	steps := make([]SubTask, 0, len(done.Steps))
	for _, st := range done.Steps {
		steps = append(steps, SubTask{ID: s.newID(), Content: st.Content})
	}
	listID := done.ListID
	note := done.Note
	s.insert(done.Content, Patch{
		IsImportant: Ptr(done.IsImportant),
		Note:        &note,
		ListID:      &listID,
		PlannedDate: &next,
		Recurrence:  rule,
		Steps:       &steps,
	})
}

// pinMonthDay copies rule and, for a monthly rule without a day of month,
// fixes it to anchor's day so a clamped short month does not shift every
// later occurrence.
func pinMonthDay(rule *Recurrence, anchor time.Time) *Recurrence {
	r := rule.Clone()
	if r != nil && r.Type == Monthly && r.DayOfMonth == 0 {
		r.DayOfMonth = anchor.Day()
	}
	return r
}

// weekdaySet returns the valid weekday ordinals sorted and deduplicated.
func weekdaySet(in []int) []int {
	seen := map[int]bool{}
	out := make([]int, 0, len(in))
	for _, d := range in {
		if d < 0 || d > 6 || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}

func addDays(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+n, 0, 0, 0, 0, time.Local)
}

// clampedDate builds year/month/day, pulling day back to the month's last
// day instead of overflowing into the next month.
func clampedDate(year int, month time.Month, day int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.Local)
}
