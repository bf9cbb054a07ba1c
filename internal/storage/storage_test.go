package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myday/internal/list"
	"myday/internal/task"
	pkgLog "myday/pkg/log"
)

func sampleSnapshot() Snapshot {
	planned := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	return Snapshot{
		Tasks: []task.Task{{
			ID:          "t1",
			Content:     "Pay rent",
			PlannedDate: &planned,
			Recurrence:  &task.Recurrence{Type: task.Monthly, Interval: 1},
			ListID:      task.DefaultListID,
			Steps:       []task.SubTask{{ID: "s1", Content: "log in"}},
			CreatedAt:   planned,
		}},
		SystemLists: list.DefaultSystemLists(),
		UserLists: []list.List{{
			ID: "list-1", Name: "Groceries", Icon: list.DefaultIcon, Kind: list.KindUser, Order: 0,
		}},
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "sub", "myday.db"), pkgLog.NewNop())
	require.NoError(t, err)
	defer s.Close()

	empty, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Tasks)
	assert.Empty(t, empty.UserLists)

	want := sampleSnapshot()
	require.NoError(t, s.Save(ctx, want))
	// second save exercises the upsert path
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Tasks, 1)
	assert.Equal(t, "Pay rent", got.Tasks[0].Content)
	require.NotNil(t, got.Tasks[0].Recurrence)
	assert.Equal(t, task.Monthly, got.Tasks[0].Recurrence.Type)
	assert.True(t, got.Tasks[0].PlannedDate.Equal(*want.Tasks[0].PlannedDate))
	require.Len(t, got.UserLists, 1)
	assert.Equal(t, "Groceries", got.UserLists[0].Name)
	assert.Len(t, got.SystemLists, len(want.SystemLists))
}

func TestSQLiteStoreMalformedLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "myday.db"), pkgLog.NewNop())
	require.NoError(t, err)
	defer s.Close()

	_, err = s.db.Exec(`INSERT INTO state (key, value) VALUES ('tasks', '{not json');`)
	require.NoError(t, err)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Tasks)
}

func TestOpenAddsUpdatedAtColumn(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "myday.db")

	raw, err := sql.Open("sqlite", sqliteDSN(path))
	require.NoError(t, err)
	_, err = raw.Exec(`CREATE TABLE state (key TEXT PRIMARY KEY, value TEXT NOT NULL);`)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO state (key, value) VALUES ('tasks', '[{"id":"a","content":"kept"}]');`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	s, err := Open(path, pkgLog.NewNop())
	require.NoError(t, err)
	defer s.Close()

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('state') WHERE name = 'updated_at';`).Scan(&n))
	assert.Equal(t, 1, n)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Tasks, 1)
	assert.Equal(t, "kept", got.Tasks[0].Content)

	require.NoError(t, s.Save(ctx, got))
	var updated sql.NullString
	require.NoError(t, s.db.QueryRow(`SELECT updated_at FROM state WHERE key = 'tasks';`).Scan(&updated))
	assert.True(t, updated.Valid)
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("", pkgLog.NewNop())
	assert.Error(t, err)
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")
	f, err := NewFileStore(dir, pkgLog.NewNop())
	require.NoError(t, err)

	empty, err := f.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Tasks)

	require.NoError(t, f.Save(ctx, sampleSnapshot()))
	got, err := f.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Tasks, 1)
	assert.Equal(t, "t1", got.Tasks[0].ID)
	assert.Len(t, got.Tasks[0].Steps, 1)
	assert.Equal(t, "list-1", got.UserLists[0].ID)
}

func TestFileStoreLegacyAndCorrupt(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	f, err := NewFileStore(dir, pkgLog.NewNop())
	require.NoError(t, err)

	legacy := `{"tasks":[{"id":7,"title":"old","completed":true,"listId":3}],"lists":null}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "state.json"), []byte(legacy), 0o644))
	got, err := f.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Tasks, 1)
	assert.Equal(t, "7", got.Tasks[0].ID)
	assert.Equal(t, "old", got.Tasks[0].Content)
	assert.True(t, got.Tasks[0].IsCompleted)
	assert.Equal(t, task.DefaultListID, got.Tasks[0].ListID)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "state.json"), []byte("]]"), 0o644))
	got, err = f.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Tasks)
}

type recordingBackend struct {
	mu       sync.Mutex
	saved    []Snapshot
	fail     error
	failures int
}

func (b *recordingBackend) Load(context.Context) (Snapshot, error) { return Snapshot{}, nil }

func (b *recordingBackend) Save(_ context.Context, s Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return b.fail
	}
	if b.failures > 0 {
		b.failures--
		return errors.New("temporarily unavailable")
	}
	b.saved = append(b.saved, s)
	return nil
}

func (b *recordingBackend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.saved)
}

func TestSaverFlushWritesLatest(t *testing.T) {
	b := &recordingBackend{}
	s := NewSaver(b, 0, pkgLog.NewNop())

	require.NoError(t, s.Flush(context.Background()))
	assert.Zero(t, b.count())

	s.Submit(Snapshot{Tasks: []task.Task{{ID: "a"}}})
	s.Submit(Snapshot{Tasks: []task.Task{{ID: "b"}}})
	require.NoError(t, s.Flush(context.Background()))
	require.Equal(t, 1, b.count())
	assert.Equal(t, "b", b.saved[0].Tasks[0].ID)

	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, 1, b.count())
}

func TestSaverKeepsSnapshotOnFailure(t *testing.T) {
	b := &recordingBackend{fail: errors.New("disk full")}
	s := NewSaver(b, 1, pkgLog.NewNop())

	s.Submit(Snapshot{Tasks: []task.Task{{ID: "a"}}})
	assert.Error(t, s.Flush(context.Background()))

	b.fail = nil
	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, 1, b.count())
}

func TestSaverRunWritesInBackground(t *testing.T) {
	b := &recordingBackend{}
	s := NewSaver(b, 100, pkgLog.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	s.Submit(Snapshot{Tasks: []task.Task{{ID: "a"}}})
	assert.Eventually(t, func() bool { return b.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestSaverRunRetriesFailedWrite(t *testing.T) {
	b := &recordingBackend{failures: 2}
	s := NewSaver(b, 100, pkgLog.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	s.Submit(Snapshot{Tasks: []task.Task{{ID: "a"}}})
	assert.Eventually(t, func() bool { return b.count() == 1 }, time.Second, 5*time.Millisecond)
}
