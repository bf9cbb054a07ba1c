package list

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	n := 0
	return NewStore(WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("list-%d", n)
	}))
}

func orders(lists []List) []int {
	out := make([]int, 0, len(lists))
	for _, l := range lists {
		out = append(out, l.Order)
	}
	return out
}

func names(lists []List) []string {
	out := make([]string, 0, len(lists))
	for _, l := range lists {
		out = append(out, l.Name)
	}
	return out
}

func TestSystemLists_FixedCatalogue(t *testing.T) {
	s := newTestStore()
	sys := s.System()
	require.Len(t, sys, 6)
	ids := []string{MyDay, Important, Planned, Tasks, Completed, All}
	for i, l := range sys {
		assert.Equal(t, ids[i], l.ID)
		assert.Equal(t, i, l.Order)
		assert.Equal(t, KindSystem, l.Kind)
		assert.Nil(t, l.Count)
	}
	assert.True(t, sys[4].IsHidden)
	assert.True(t, sys[5].IsHidden)
	assert.Empty(t, s.User())
}

func TestAdd_DuplicateName(t *testing.T) {
	s := newTestStore()

	first, err := s.Add("X", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultIcon, first.Icon)
	assert.Equal(t, DefaultThemeColor, first.Theme.Value)
	assert.Equal(t, 0, first.CountOr(-1))

	_, err = s.Add("X", "")
	assert.True(t, errors.Is(err, ErrDuplicateName))

	// case-sensitive
	_, err = s.Add("x", "")
	assert.NoError(t, err)

	// system names are not reserved
	_, err = s.Add("Tasks", "")
	assert.NoError(t, err)

	s.Delete(first.ID)
	_, err = s.Add("X", "Cart")
	assert.NoError(t, err)
}

func TestRename(t *testing.T) {
	s := newTestStore()
	a, _ := s.Add("A", "")
	_, _ = s.Add("B", "")

	require.NoError(t, s.Rename(a.ID, "A"), "own name is not a duplicate")
	assert.ErrorIs(t, s.Rename(a.ID, "B"), ErrDuplicateName)
	require.NoError(t, s.Rename(a.ID, "C"))
	require.NoError(t, s.Rename("missing", "D"))

	got, ok := s.Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, "C", got.Name)
}

func TestOrderStaysDense(t *testing.T) {
	s := newTestStore()
	var ids []string
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		l, err := s.Add(name, "")
		require.NoError(t, err)
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, orders(s.User()))

	s.Delete(ids[1])
	assert.Equal(t, []string{"a", "c", "d", "e"}, names(s.User()))
	assert.Equal(t, []int{0, 1, 2, 3}, orders(s.User()))

	s.Move(ids[0], ids[4], After)
	assert.Equal(t, []string{"c", "d", "e", "a"}, names(s.User()))
	assert.Equal(t, []int{0, 1, 2, 3}, orders(s.User()))

	s.Move(ids[3], ids[2], Before)
	assert.Equal(t, []string{"d", "c", "e", "a"}, names(s.User()))

	s.Move(ids[0], ids[3], Before)
	assert.Equal(t, []string{"a", "d", "c", "e"}, names(s.User()))

	f, _ := s.Add("f", "")
	assert.Equal(t, 4, f.Order)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, orders(s.User()))

	s.Move("missing", ids[2], Before)
	s.Move(ids[2], ids[2], After)
	s.Delete("missing")
	assert.Equal(t, []string{"a", "d", "c", "e", "f"}, names(s.User()))
}

func TestAppearance(t *testing.T) {
	s := newTestStore()
	l, _ := s.Add("home", "")

	s.SetIcon(l.ID, "House")
	s.SetTheme(l.ID, Theme{Type: ThemeImage, Value: "beach.jpg"})
	s.SetTheme(MyDay, Theme{Type: ThemeColor, Value: "#D4F1EF"})
	s.ToggleHidden(Completed)
	s.ToggleHidden(l.ID) // user lists have no hidden flag

	got, _ := s.Get(l.ID)
	assert.Equal(t, "House", got.Icon)
	assert.Equal(t, ThemeImage, got.Theme.Type)
	assert.False(t, got.IsHidden)

	md, _ := s.Get(MyDay)
	assert.Equal(t, "#D4F1EF", md.Theme.Value)
	done, _ := s.Get(Completed)
	assert.False(t, done.IsHidden)
}

func TestCounts_WrittenWithoutPublishing(t *testing.T) {
	s := newTestStore()
	l, _ := s.Add("home", "")
	calls := 0
	s.Subscribe(func() { calls++ })

	s.SetSystemCount(MyDay, 3)
	s.SetUserCount(l.ID, 2)
	s.SetUserCount(MyDay, 9) // wrong namespace, ignored

	assert.Zero(t, calls)
	md, _ := s.Get(MyDay)
	assert.Equal(t, 3, md.CountOr(0))
	got, _ := s.Get(l.ID)
	assert.Equal(t, 2, got.CountOr(0))
}

func TestRestore_ResetsSystemCounts(t *testing.T) {
	s := newTestStore()
	s.SetSystemCount(Tasks, 5)

	stored := DefaultSystemLists()
	stored[0].IsHidden = true
	stored[0].Name = "renamed"
	stored[0].Theme = &Theme{Type: ThemeColor, Value: "#E7ECF0"}
	seven := 7
	stored[3].Count = &seven

	s.Restore(stored, []List{
		{ID: "list-b", Name: "b", Order: 4},
		{ID: "list-a", Name: "a", Order: 1},
	})

	for _, l := range s.System() {
		assert.Nil(t, l.Count, l.ID)
	}
	md, _ := s.Get(MyDay)
	assert.True(t, md.IsHidden)
	assert.Equal(t, "My Day", md.Name)
	assert.Equal(t, "#E7ECF0", md.Theme.Value)

	assert.Equal(t, []string{"a", "b"}, names(s.User()))
	assert.Equal(t, []int{0, 1}, orders(s.User()))
	assert.Equal(t, KindUser, s.User()[0].Kind)
}

func TestTextColor(t *testing.T) {
	assert.Equal(t, "#7D5294", TextColor(&Theme{Type: ThemeColor, Value: "#f2e7f9"}))
	assert.Equal(t, "#FFFFFF", TextColor(&Theme{Type: ThemeImage, Value: "x.png"}))
	assert.Equal(t, "#AC395D", TextColor(&Theme{Type: ThemeColor, Value: "#123456"}))
	assert.Equal(t, "#AC395D", TextColor(nil))
	assert.Len(t, ThemeColors(), 10)
}
