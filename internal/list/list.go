// Package list stores the fixed system lists and the user's own lists.
// Counts are written from outside; this package never derives them.
package list

import (
	"errors"
	"strings"
)

var ErrDuplicateName = errors.New("list name already exists")

// System list identities.
const (
	MyDay     = "my-day"
	Important = "important"
	Planned   = "planned"
	Tasks     = "tasks"
	Completed = "completed"
	All       = "all"
)

type Kind string

const (
	KindSystem Kind = "system"
	KindUser   Kind = "user"
)

type ThemeType string

const (
	ThemeColor ThemeType = "color"
	ThemeImage ThemeType = "image"
)

type Theme struct {
	Type  ThemeType `json:"type"`
	Value string    `json:"value"`
}

const (
	DefaultIcon       = "ListTodo"
	DefaultThemeColor = "#5F73C1"
)

// List is either a system list or a user list, told apart by Kind.
// A nil Count means not yet computed.
type List struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Icon     string `json:"icon,omitempty"`
	Kind     Kind   `json:"type"`
	Order    int    `json:"order"`
	Count    *int   `json:"count,omitempty"`
	IsHidden bool   `json:"isHidden,omitempty"`
	Theme    *Theme `json:"theme,omitempty"`
}

func (l List) clone() List {
	c := l
	if l.Count != nil {
		n := *l.Count
		c.Count = &n
	}
	if l.Theme != nil {
		th := *l.Theme
		c.Theme = &th
	}
	return c
}

// CountOr returns the count, or def when it is still unknown.
func (l List) CountOr(def int) int {
	if l.Count == nil {
		return def
	}
	return *l.Count
}

func color(v string) *Theme {
	return &Theme{Type: ThemeColor, Value: v}
}

// DefaultSystemLists is the built-in catalogue in display order.
func DefaultSystemLists() []List {
	return []List{
		{ID: MyDay, Name: "My Day", Icon: "Sun", Kind: KindSystem, Order: 0, Theme: color("#F2E7F9")},
		{ID: Important, Name: "Important", Icon: "Star", Kind: KindSystem, Order: 1, Theme: color("#FCE4EC")},
		{ID: Planned, Name: "Planned", Icon: "Calendar", Kind: KindSystem, Order: 2, Theme: color("#D5F1E5")},
		{ID: Tasks, Name: "Tasks", Icon: "ListTodo", Kind: KindSystem, Order: 3, Theme: color("#707E89")},
		{ID: Completed, Name: "Completed", Icon: "CheckCircle", Kind: KindSystem, Order: 4, IsHidden: true, Theme: color("#C5524D")},
		{ID: All, Name: "All", Icon: "List", Kind: KindSystem, Order: 5, IsHidden: true, Theme: color("#CA5474")},
	}
}

// palette pairs theme colours with a readable foreground.
var palette = map[string]string{
	"#ca5474": "#FFFFFF",
	"#c5524d": "#FFFFFF",
	"#f2e7f9": "#7D5294",
	"#d5f1e5": "#1E704D",
	"#d4f1ef": "#166F6B",
	"#ffe4e9": "#AC395D",
	"#707e89": "#FFFFFF",
	"#e7ecf0": "#586570",
	"#fce4ec": "#AC395D",
	"#5f73c1": "#FFFFFF",
}

// ThemeColors lists the selectable theme colours.
func ThemeColors() []string {
	return []string{"#CA5474", "#C5524D", "#F2E7F9", "#D5F1E5", "#D4F1EF", "#FFE4E9", "#707E89", "#E7ECF0", "#FCE4EC", "#5F73C1"}
}

// TextColor picks the foreground to draw over a theme.
func TextColor(th *Theme) string {
	const fallback = "#AC395D"
	if th == nil {
		return fallback
	}
	if th.Type == ThemeImage {
		return "#FFFFFF"
	}
	if fg, ok := palette[strings.ToLower(th.Value)]; ok {
		return fg
	}
	return fallback
}
