package counts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myday/internal/list"
	"myday/internal/task"
)

type badgeRecorder struct{ values []int }

func (b *badgeRecorder) SetBadge(n int) { b.values = append(b.values, n) }

func setup(t *testing.T) (*task.Store, *list.Store, *Synchronizer, *badgeRecorder) {
	t.Helper()
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.Local)
	tasks := task.NewStore(task.WithClock(func() time.Time { return now }))
	lists := list.NewStore()
	rec := &badgeRecorder{}
	sync := New(tasks, lists, rec)
	tasks.Subscribe(sync.Recompute)
	lists.Subscribe(sync.Recompute)
	sync.Recompute()
	return tasks, lists, sync, rec
}

func count(t *testing.T, lists *list.Store, id string) int {
	t.Helper()
	l, ok := lists.Get(id)
	require.True(t, ok, id)
	require.NotNil(t, l.Count, id)
	return *l.Count
}

func TestRecompute_AllCounts(t *testing.T) {
	tasks, lists, _, _ := setup(t)
	home, err := lists.Add("home", "")
	require.NoError(t, err)

	tasks.AddToMyDay("a")
	b := tasks.AddImportant("b")
	tasks.AddPlanned("c", nil)
	tasks.AddToList("d", home.ID)
	e := tasks.AddToList("e", home.ID)
	tasks.ToggleCompleted(e.ID)
	tasks.AddToList("orphan", "list-gone")
	tasks.ToggleMyDay(b.ID)

	assert.Equal(t, 2, count(t, lists, list.MyDay))
	assert.Equal(t, 1, count(t, lists, list.Important))
	assert.Equal(t, 1, count(t, lists, list.Planned))
	assert.Equal(t, 3, count(t, lists, list.Tasks))
	assert.Equal(t, 1, count(t, lists, list.Completed))
	assert.Equal(t, 5, count(t, lists, list.All), "all counts active tasks only")
	assert.Equal(t, 1, count(t, lists, home.ID))
}

func TestRecompute_ReactsToListChanges(t *testing.T) {
	tasks, lists, _, _ := setup(t)
	tasks.AddToList("early", "list-1")

	lists.Restore(list.DefaultSystemLists(), []list.List{{ID: "list-1", Name: "restored"}})

	assert.Equal(t, 1, count(t, lists, "list-1"))
	assert.Equal(t, 0, count(t, lists, list.Tasks))
}

func TestBadge_UnionNotSum(t *testing.T) {
	tasks, _, sync, rec := setup(t)

	a := tasks.AddToMyDay("A")
	b := tasks.AddToMyDay("B")
	tasks.ToggleImportant(b.ID)
	tasks.AddImportant("C")
	assert.Equal(t, 3, sync.Badge())

	tasks.ToggleCompleted(a.ID)
	assert.Equal(t, 2, sync.Badge())

	// only changes reach the sink
	assert.Equal(t, []int{0, 1, 2, 3, 2}, rec.values)
}

func TestBadge(t *testing.T) {
	a, b, c := task.Task{ID: "A"}, task.Task{ID: "B"}, task.Task{ID: "C"}
	assert.Equal(t, 3, Badge([]task.Task{a, b}, []task.Task{b, c}))
	assert.Equal(t, 0, Badge(nil, nil))
}
