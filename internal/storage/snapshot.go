package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"myday/internal/list"
	"myday/internal/task"
)

// Snapshot is the full persisted state: every task and both list families.
type Snapshot struct {
	Tasks       []task.Task `json:"tasks"`
	SystemLists []list.List `json:"systemLists"`
	UserLists   []list.List `json:"userLists"`
}

// Backend loads and saves snapshots. A missing or unreadable store loads as
// an empty snapshot; only I/O failures are errors.
type Backend interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, s Snapshot) error
}

type listsDoc struct {
	System []list.List `json:"system"`
	User   []list.List `json:"user"`
}

func encodeTasks(tasks []task.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []task.Task{}
	}
	return json.Marshal(tasks)
}

func encodeLists(s Snapshot) ([]byte, error) {
	return json.Marshal(listsDoc{System: s.SystemLists, User: s.UserLists})
}

// decode turns the raw task and list documents into a snapshot, running the
// task format migration. A malformed document yields an error and the
// caller falls back to empty state.
func decode(tasksRaw, listsRaw []byte, now time.Time) (Snapshot, error) {
	var snap Snapshot
	tasks, err := task.Decode(tasksRaw, now)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Tasks = tasks
	if len(listsRaw) > 0 {
		var doc listsDoc
		if err := json.Unmarshal(listsRaw, &doc); err != nil {
			return Snapshot{}, fmt.Errorf("decode lists: %w", err)
		}
		snap.SystemLists, snap.UserLists = doc.System, doc.User
	}
	return snap, nil
}
