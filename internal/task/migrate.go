package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"myday/internal/calendar"
)

// storedTask accepts both the current field names and the older ones
// (title, completed/isDone, important, myDay, dueDate, reminder, notes,
// recurrenceRule).
type storedTask struct {
	ID           json.RawMessage `json:"id"`
	Content      *string         `json:"content"`
	Title        *string         `json:"title"`
	IsCompleted  *bool           `json:"isCompleted"`
	Completed    *bool           `json:"completed"`
	IsDone       *bool           `json:"isDone"`
	IsImportant  *bool           `json:"isImportant"`
	Important    *bool           `json:"important"`
	MyDayDate    *string         `json:"myDayDate"`
	MyDay        json.RawMessage `json:"myDay"`
	PlannedDate  *string         `json:"plannedDate"`
	DueDate      *string         `json:"dueDate"`
	ReminderTime *string         `json:"reminderTime"`
	Reminder     *string         `json:"reminder"`
	Recurrence   json.RawMessage `json:"recurrence"`
	RecurRule    *string         `json:"recurrenceRule"`
	Note         *string         `json:"note"`
	Notes        *string         `json:"notes"`
	ListID       json.RawMessage `json:"listId"`
	Steps        []storedStep    `json:"steps"`
	CreatedAt    *string         `json:"createdAt"`
	CompletedAt  *string         `json:"completedAt"`
}

type storedStep struct {
	ID          json.RawMessage `json:"id"`
	Content     string          `json:"content"`
	IsCompleted bool            `json:"isCompleted"`
}

// Decode reads a stored task array in any historical shape and normalises
// every record, filling missing fields with their defaults. now stamps
// records that predate createdAt and legacy boolean My Day flags.
func Decode(data []byte, now time.Time) ([]Task, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []Task{}, nil
	}
	var raw []storedTask
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	out := make([]Task, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.normalize(now))
	}
	return out, nil
}

func (r storedTask) normalize(now time.Time) Task {
	t := Task{
		ID:           rawID(r.ID),
		Content:      firstString(r.Title, r.Content),
		IsCompleted:  firstBool(r.Completed, r.IsDone, r.IsCompleted),
		IsImportant:  firstBool(r.Important, r.IsImportant),
		PlannedDate:  parseOptional(r.DueDate, r.PlannedDate),
		ReminderTime: parseOptional(r.Reminder, r.ReminderTime),
		Recurrence:   decodeRecurrence(r.Recurrence, r.RecurRule),
		Note:         firstString(r.Note, r.Notes),
		ListID:       rawListID(r.ListID),
		Steps:        make([]SubTask, 0, len(r.Steps)),
		CreatedAt:    now,
		CompletedAt:  parseOptional(r.CompletedAt),
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.MyDayDate = legacyMyDay(r.MyDay, now)
	if t.MyDayDate == nil {
		t.MyDayDate = parseOptional(r.MyDayDate)
	}
	if created := parseOptional(r.CreatedAt); created != nil {
		t.CreatedAt = *created
	}
	switch {
	case !t.IsCompleted:
		t.CompletedAt = nil
	case t.CompletedAt == nil:
		t.CompletedAt = cloneTime(&t.CreatedAt)
	}
	for _, st := range r.Steps {
		id := rawID(st.ID)
		if id == "" {
			id = uuid.NewString()
		}
		t.Steps = append(t.Steps, SubTask{ID: id, Content: st.Content, IsCompleted: st.IsCompleted})
	}
	return t
}

// legacyMyDay handles myDay as either a boolean flag or an old date value.
func legacyMyDay(raw json.RawMessage, now time.Time) *time.Time {
	if len(raw) == 0 {
		return nil
	}
	var flag bool
	if err := json.Unmarshal(raw, &flag); err == nil {
		if flag {
			return &now
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseOptional(&s)
	}
	return nil
}

func decodeRecurrence(raw json.RawMessage, legacy *string) *Recurrence {
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		var rule Recurrence
		if err := json.Unmarshal(raw, &rule); err == nil && rule.Type != "" {
			rule.Interval = rule.Every()
			return &rule
		}
		var name string
		if err := json.Unmarshal(raw, &name); err == nil && name != "" {
			return &Recurrence{Type: RecurrenceType(name), Interval: 1}
		}
	}
	if legacy != nil && *legacy != "" {
		return &Recurrence{Type: RecurrenceType(*legacy), Interval: 1}
	}
	return nil
}

// rawID accepts string ids and the numeric ids of the oldest format.
func rawID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// rawListID maps numeric list references, which only ever pointed at the
// built-in list, to the default list.
func rawListID(raw json.RawMessage) string {
	id := rawID(raw)
	if id == "" {
		return DefaultListID
	}
	if _, err := strconv.Atoi(id); err == nil {
		return DefaultListID
	}
	return id
}

func firstString(vals ...*string) string {
	for _, v := range vals {
		if v != nil && *v != "" {
			return *v
		}
	}
	return ""
}

func firstBool(vals ...*bool) bool {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return false
}

func parseOptional(vals ...*string) *time.Time {
	for _, v := range vals {
		if v == nil || *v == "" {
			continue
		}
		if t, err := calendar.Parse(*v); err == nil {
			return &t
		}
	}
	return nil
}
