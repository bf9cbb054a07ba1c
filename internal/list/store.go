package list

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type Position int

const (
	Before Position = iota
	After
)

// Store holds system lists, which are permanent, and user lists, kept in
// display order with Order renumbered 0..n-1 after every structural change.
//
// Subscribers hear about structural and appearance changes. Count writes are
// not published, so a counter reacting to events cannot loop.
type Store struct {
	mu        sync.RWMutex
	system    []*List
	user      []*List
	newID     func() string
	listeners []func()
}

type Option func(*Store)

func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		newID: func() string { return "list-" + uuid.NewString() },
	}
	for _, l := range DefaultSystemLists() {
		l := l
		s.system = append(s.system, &l)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) publish() {
	s.mu.RLock()
	fns := append([]func(){}, s.listeners...)
	s.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

func snapshot(in []*List) []List {
	out := make([]List, 0, len(in))
	for _, l := range in {
		out = append(out, l.clone())
	}
	return out
}

func find(in []*List, id string) (*List, int) {
	for i, l := range in {
		if l.ID == id {
			return l, i
		}
	}
	return nil, -1
}

func (s *Store) System() []List {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.system)
}

func (s *Store) User() []List {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.user)
}

// Get looks in system lists first, then user lists.
func (s *Store) Get(id string) (List, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, _ := find(s.system, id); l != nil {
		return l.clone(), true
	}
	if l, _ := find(s.user, id); l != nil {
		return l.clone(), true
	}
	return List{}, false
}

// Restore loads persisted lists. System list identities stay fixed: stored
// entries only contribute their hidden flag and theme, and every system
// count is reset to unknown.
func (s *Store) Restore(system, user []List) {
	s.mu.Lock()
	stored := map[string]List{}
	for _, l := range system {
		stored[l.ID] = l
	}
	for _, l := range s.system {
		if prev, ok := stored[l.ID]; ok {
			l.IsHidden = prev.IsHidden
			if prev.Theme != nil {
				th := *prev.Theme
				l.Theme = &th
			}
		}
		l.Count = nil
	}
	s.user = make([]*List, 0, len(user))
	for _, l := range user {
		c := l.clone()
		c.Kind = KindUser
		s.user = append(s.user, &c)
	}
	sort.SliceStable(s.user, func(i, j int) bool { return s.user[i].Order < s.user[j].Order })
	s.renumber()
	s.mu.Unlock()
	s.publish()
}

// IsNameDuplicate reports whether another user list already uses name.
// Matching is exact and case-sensitive.
func (s *Store) IsNameDuplicate(name, excludeID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.duplicate(name, excludeID)
}

func (s *Store) duplicate(name, excludeID string) bool {
	for _, l := range s.user {
		if l.Name == name && l.ID != excludeID {
			return true
		}
	}
	return false
}

func (s *Store) renumber() {
	for i, l := range s.user {
		l.Order = i
	}
}

// Add creates a user list at the end. An empty icon gets DefaultIcon.
func (s *Store) Add(name, icon string) (List, error) {
	s.mu.Lock()
	if s.duplicate(name, "") {
		s.mu.Unlock()
		return List{}, fmt.Errorf("add %q: %w", name, ErrDuplicateName)
	}
	if icon == "" {
		icon = DefaultIcon
	}
	order := -1
	for _, l := range s.user {
		if l.Order > order {
			order = l.Order
		}
	}
	zero := 0
	l := &List{
		ID:    s.newID(),
		Name:  name,
		Icon:  icon,
		Kind:  KindUser,
		Order: order + 1,
		Count: &zero,
		Theme: color(DefaultThemeColor),
	}
	s.user = append(s.user, l)
	s.renumber()
	out := l.clone()
	s.mu.Unlock()
	s.publish()
	return out, nil
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	_, i := find(s.user, id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.user = append(s.user[:i], s.user[i+1:]...)
	s.renumber()
	s.mu.Unlock()
	s.publish()
}

func (s *Store) Rename(id, name string) error {
	s.mu.Lock()
	if s.duplicate(name, id) {
		s.mu.Unlock()
		return fmt.Errorf("rename to %q: %w", name, ErrDuplicateName)
	}
	l, _ := find(s.user, id)
	if l == nil {
		s.mu.Unlock()
		return nil
	}
	l.Name = name
	s.mu.Unlock()
	s.publish()
	return nil
}

// Move reinserts source next to target. Unknown ids leave the order alone.
func (s *Store) Move(sourceID, targetID string, pos Position) {
	s.mu.Lock()
	src, si := find(s.user, sourceID)
	_, ti := find(s.user, targetID)
	if src == nil || ti < 0 || sourceID == targetID {
		s.mu.Unlock()
		return
	}
	rest := append(s.user[:si:si], s.user[si+1:]...)
	_, ti = find(rest, targetID)
	if pos == After {
		ti++
	}
	moved := make([]*List, 0, len(s.user))
	moved = append(moved, rest[:ti]...)
	moved = append(moved, src)
	moved = append(moved, rest[ti:]...)
	s.user = moved
	s.renumber()
	s.mu.Unlock()
	s.publish()
}

func (s *Store) SetIcon(id, icon string) {
	s.edit(KindUser, id, func(l *List) { l.Icon = icon })
}

// SetTheme applies to system and user lists alike, system lists first.
func (s *Store) SetTheme(id string, th Theme) {
	s.edit("", id, func(l *List) { l.Theme = &th })
}

// ToggleHidden flips the visibility of a system list.
func (s *Store) ToggleHidden(id string) {
	s.edit(KindSystem, id, func(l *List) { l.IsHidden = !l.IsHidden })
}

// lookup finds id among lists of kind, or among both when kind is empty.
// Caller holds the lock.
func (s *Store) lookup(kind Kind, id string) *List {
	if kind != KindUser {
		if l, _ := find(s.system, id); l != nil {
			return l
		}
	}
	if kind != KindSystem {
		if l, _ := find(s.user, id); l != nil {
			return l
		}
	}
	return nil
}

func (s *Store) edit(kind Kind, id string, fn func(l *List)) {
	s.mu.Lock()
	l := s.lookup(kind, id)
	if l == nil {
		s.mu.Unlock()
		return
	}
	fn(l)
	s.mu.Unlock()
	s.publish()
}

// SetSystemCount records a derived count. It does not publish.
func (s *Store) SetSystemCount(id string, n int) {
	s.setCount(KindSystem, id, n)
}

// SetUserCount records a derived count. It does not publish.
func (s *Store) SetUserCount(id string, n int) {
	s.setCount(KindUser, id, n)
}

func (s *Store) setCount(kind Kind, id string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l := s.lookup(kind, id); l != nil {
		l.Count = &n
	}
}
