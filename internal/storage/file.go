package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	pkgLog "myday/pkg/log"
)

// FileStore persists the snapshot as one JSON document.
type FileStore struct {
	mu   sync.Mutex
	path string
	l    pkgLog.Logger
}

type fileDoc struct {
	Tasks json.RawMessage `json:"tasks"`
	Lists json.RawMessage `json:"lists"`
}

// NewFileStore creates dataDir if needed and stores state.json inside it.
func NewFileStore(dataDir string, l pkgLog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{path: filepath.Join(dataDir, "state.json"), l: l}, nil
}

func (f *FileStore) Load(ctx context.Context) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, nil
		}
		return Snapshot{}, err
	}
	var doc fileDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		f.l.Warnf(ctx, "state file unreadable, starting empty: %v", err)
		return Snapshot{}, nil
	}
	snap, err := decode(doc.Tasks, doc.Lists, time.Now())
	if err != nil {
		f.l.Warnf(ctx, "state file unreadable, starting empty: %v", err)
		return Snapshot{}, nil
	}
	return snap, nil
}

// Save writes to a temp file and renames it over the old state.
func (f *FileStore) Save(_ context.Context, snap Snapshot) error {
	tasks, err := encodeTasks(snap.Tasks)
	if err != nil {
		return err
	}
	lists, err := encodeLists(snap)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(fileDoc{Tasks: tasks, Lists: lists}, "", "  ")
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
