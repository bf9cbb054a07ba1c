package task

import (
	"time"
)

// DefaultListID is the reserved system list every new task belongs to.
const DefaultListID = "tasks"

type RecurrenceType string

const (
	Daily    RecurrenceType = "daily"
	Weekdays RecurrenceType = "weekdays"
	Weekly   RecurrenceType = "weekly"
	Monthly  RecurrenceType = "monthly"
	Yearly   RecurrenceType = "yearly"
)

// Recurrence describes how a completed task's next occurrence is computed.
// DaysOfWeek uses 0 for Sunday and only applies to Weekly rules.
type Recurrence struct {
	Type       RecurrenceType `json:"type"`
	Interval   int            `json:"interval,omitempty"`
	DaysOfWeek []int          `json:"daysOfWeek,omitempty"`
	DayOfMonth int            `json:"dayOfMonth,omitempty"`
}

// Every returns the rule's interval, never less than 1.
func (r Recurrence) Every() int {
	if r.Interval < 1 {
		return 1
	}
	return r.Interval
}

func (r *Recurrence) Clone() *Recurrence {
	if r == nil {
		return nil
	}
	c := *r
	if r.DaysOfWeek != nil {
		c.DaysOfWeek = append([]int(nil), r.DaysOfWeek...)
	}
	return &c
}

// SubTask is a checklist step owned by exactly one Task.
type SubTask struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	IsCompleted bool   `json:"isCompleted"`
}

type Task struct {
	ID           string      `json:"id"`
	Content      string      `json:"content"`
	IsCompleted  bool        `json:"isCompleted"`
	IsImportant  bool        `json:"isImportant"`
	MyDayDate    *time.Time  `json:"myDayDate"`
	PlannedDate  *time.Time  `json:"plannedDate"`
	ReminderTime *time.Time  `json:"reminderTime"`
	Recurrence   *Recurrence `json:"recurrence"`
	Note         string      `json:"note"`
	ListID       string      `json:"listId"`
	Steps        []SubTask   `json:"steps"`
	CreatedAt    time.Time   `json:"createdAt"`
	CompletedAt  *time.Time  `json:"completedAt"`
}

// Active reports whether the task still counts in the open views.
func (t Task) Active() bool {
	return !t.IsCompleted
}

// Clone returns a copy that shares no mutable state with t.
func (t Task) Clone() Task {
	c := t
	c.MyDayDate = cloneTime(t.MyDayDate)
	c.PlannedDate = cloneTime(t.PlannedDate)
	c.ReminderTime = cloneTime(t.ReminderTime)
	c.CompletedAt = cloneTime(t.CompletedAt)
	c.Recurrence = t.Recurrence.Clone()
	c.Steps = append(make([]SubTask, 0, len(t.Steps)), t.Steps...)
	return c
}

// Patch is a shallow update. Nil fields are left alone; the Clear flags
// null out the matching optional field.
type Patch struct {
	Content     *string
	IsCompleted *bool
	IsImportant *bool
	Note        *string
	ListID      *string
	Steps       *[]SubTask

	MyDayDate         *time.Time
	ClearMyDayDate    bool
	PlannedDate       *time.Time
	ClearPlannedDate  bool
	ReminderTime      *time.Time
	ClearReminderTime bool
	Recurrence        *Recurrence
	ClearRecurrence   bool
}

// Ptr is shorthand for building Patch values.
func Ptr[T any](v T) *T {
	return &v
}

func (p Patch) apply(t *Task, now time.Time) {
	if p.Content != nil {
		t.Content = *p.Content
	}
	if p.IsCompleted != nil && *p.IsCompleted != t.IsCompleted {
		t.IsCompleted = *p.IsCompleted
		if t.IsCompleted {
			t.CompletedAt = cloneTime(&now)
		} else {
			t.CompletedAt = nil
		}
	}
	if p.IsImportant != nil {
		t.IsImportant = *p.IsImportant
	}
	if p.Note != nil {
		t.Note = *p.Note
	}
	if p.ListID != nil {
		t.ListID = *p.ListID
	}
	if p.Steps != nil {
		t.Steps = append(make([]SubTask, 0, len(*p.Steps)), *p.Steps...)
	}
	t.MyDayDate = pick(t.MyDayDate, p.MyDayDate, p.ClearMyDayDate)
	t.PlannedDate = pick(t.PlannedDate, p.PlannedDate, p.ClearPlannedDate)
	t.ReminderTime = pick(t.ReminderTime, p.ReminderTime, p.ClearReminderTime)
	if p.ClearRecurrence {
		t.Recurrence = nil
	} else if p.Recurrence != nil {
		t.Recurrence = p.Recurrence.Clone()
	}
}

func pick(cur, set *time.Time, clear bool) *time.Time {
	if clear {
		return nil
	}
	if set != nil {
		return cloneTime(set)
	}
	return cur
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
