package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"myday/internal/app"
	"myday/internal/calendar"
	"myday/internal/config"
	"myday/internal/list"
	"myday/internal/reminder"
	"myday/internal/task"
	pkgLog "myday/pkg/log"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeNewList
	modeRename
)

// reminderMsg carries a due reminder from the poller into the update loop.
type reminderMsg struct {
	task task.Task
}

// repeatCycle is the order the repeat key steps through.
var repeatCycle = []task.RecurrenceType{task.Daily, task.Weekdays, task.Weekly, task.Monthly, task.Yearly}

type pendingDelete struct {
	id     string
	name   string
	isList bool
}

type Model struct {
	app        *app.App
	cfg        config.Config
	lists      []list.List
	selected   int
	tasks      []task.Task
	cursor     int
	mode       mode
	input      textinput.Model
	status     string
	pendingDel *pendingDelete
}

// New builds the model with the configured default list selected.
func New(a *app.App, cfg config.Config) Model {
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 256
	ti.Width = 40

	m := Model{
		app:    a,
		cfg:    cfg,
		input:  ti,
		mode:   modeList,
		status: fmt.Sprintf("Press '%s' to add, '%s' to complete, '%s' for a new list.", cfg.Keys.Add, keyLabel(cfg.Keys.Toggle), cfg.Keys.NewList),
	}
	m.reload()
	for i, l := range m.lists {
		if l.ID == cfg.DefaultList {
			m.selected = i
		}
	}
	m.reload()
	return m
}

// Run drives the terminal front-end until the user quits. Reminders are
// polled for the lifetime of the program and shown in the status line.
func Run(ctx context.Context, a *app.App, cfg config.Config, l pkgLog.Logger) error {
	program := tea.NewProgram(New(a, cfg), tea.WithContext(ctx))

	poller := reminder.New(a.Tasks, programNotifier{program}, l, reminder.Config{
		Interval: cfg.ReminderInterval(),
		DedupCap: cfg.Reminder.DedupCap,
		Clock:    a.Tasks.Clock(),
	})
	poller.Start(ctx)
	defer poller.Stop()

	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

type programNotifier struct {
	p *tea.Program
}

func (n programNotifier) Notify(_ context.Context, t task.Task) error {
	n.p.Send(reminderMsg{task: t})
	return nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.pendingDel != nil {
			return m.updateDeleteConfirm(msg.String())
		}
		return m.handleKey(msg)
	case reminderMsg:
		m.status = fmt.Sprintf("Reminder: %s", msg.task.Content)
		m.reload()
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if m.mode != modeList {
		return m.updateInputMode(key, msg)
	}
	return m.updateListMode(key)
}

func (m Model) currentList() (list.List, bool) {
	if len(m.lists) == 0 {
		return list.List{}, false
	}
	return m.lists[clampCursor(m.selected, len(m.lists))], true
}

func (m Model) currentTask() (task.Task, bool) {
	if len(m.tasks) == 0 {
		return task.Task{}, false
	}
	return m.tasks[clampCursor(m.cursor, len(m.tasks))], true
}

// reload re-reads the sidebar and the selected view from the stores.
func (m *Model) reload() {
	var visible []list.List
	for _, l := range m.app.Lists.System() {
		if !l.IsHidden {
			visible = append(visible, l)
		}
	}
	m.lists = append(visible, m.app.Lists.User()...)
	m.selected = clampCursor(m.selected, len(m.lists))
	if cur, ok := m.currentList(); ok {
		m.tasks = m.app.View(cur.ID)
	} else {
		m.tasks = nil
	}
	m.cursor = clampCursor(m.cursor, len(m.tasks))
}

func (m Model) startInput(md mode, placeholder, value, status string) (tea.Model, tea.Cmd) {
	m.mode = md
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.Focus()
	m.status = status
	return m, textinput.Blink
}

func (m Model) updateInputMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm:
		value := strings.TrimSpace(m.input.Value())
		if value == "" {
			m.status = "Name cannot be empty"
			return m, nil
		}
		if err := m.commitInput(value); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.input.SetValue("")
		m.input.Blur()
		m.mode = modeList
		m.reload()
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) commitInput(value string) error {
	switch m.mode {
	case modeAdd:
		cur, ok := m.currentList()
		if !ok {
			return errors.New("no list selected")
		}
		m.app.AddIn(cur.ID, value)
		m.cursor = 0
		m.status = "Added task"
	case modeNewList:
		l, err := m.app.Lists.Add(value, "")
		if err != nil {
			return listError(err, value)
		}
		m.reload()
		for i, cand := range m.lists {
			if cand.ID == l.ID {
				m.selected = i
			}
		}
		m.status = fmt.Sprintf("Created list %q", l.Name)
	case modeRename:
		cur, ok := m.currentList()
		if !ok {
			return errors.New("no list selected")
		}
		if err := m.app.Lists.Rename(cur.ID, value); err != nil {
			return listError(err, value)
		}
		m.status = "Renamed list"
	}
	return nil
}

func listError(err error, name string) error {
	if errors.Is(err, list.ErrDuplicateName) {
		return fmt.Errorf("a list named %q already exists", name)
	}
	return err
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case "ctrl+c", k.Quit:
		return m, tea.Quit
	case k.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(m.tasks))
	case k.Up, "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case k.NextList:
		m.selected = wrapIndex(m.selected+1, len(m.lists))
		m.cursor = 0
		m.reload()
	case k.PrevList:
		m.selected = wrapIndex(m.selected-1, len(m.lists))
		m.cursor = 0
		m.reload()
	case k.Add:
		return m.startInput(modeAdd, "Task title", "", "Add task: type a title and press Enter")
	case k.NewList:
		return m.startInput(modeNewList, "List name", "", "New list: type a name and press Enter")
	case k.Rename:
		cur, ok := m.currentList()
		if !ok || cur.Kind != list.KindUser {
			m.status = "Only your own lists can be renamed"
			return m, nil
		}
		return m.startInput(modeRename, "List name", cur.Name, "Rename list: edit the name and press Enter")
	case k.DeleteList:
		cur, ok := m.currentList()
		if !ok || cur.Kind != list.KindUser {
			m.status = "Only your own lists can be deleted"
			return m, nil
		}
		m.pendingDel = &pendingDelete{id: cur.ID, name: cur.Name, isList: true}
		m.status = fmt.Sprintf("Delete list \"%s\"? y/n", cur.Name)
	case k.Theme:
		cur, ok := m.currentList()
		if !ok {
			return m, nil
		}
		m.app.Lists.SetTheme(cur.ID, list.Theme{Type: list.ThemeColor, Value: nextColor(cur.Theme)})
		m.reload()
	default:
		return m.updateTaskKey(key)
	}
	return m, nil
}

// updateTaskKey handles keys that act on the task under the cursor.
func (m Model) updateTaskKey(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	t, ok := m.currentTask()
	if !ok {
		return m, nil
	}
	switch key {
	case k.Toggle:
		m.app.Tasks.ToggleCompleted(t.ID)
		if !t.IsCompleted && t.Recurrence != nil {
			m.status = "Completed, next occurrence scheduled"
		} else {
			m.status = "Toggled task"
		}
	case k.Important:
		m.app.Tasks.ToggleImportant(t.ID)
		m.status = "Toggled important"
	case k.MyDay:
		m.app.Tasks.ToggleMyDay(t.ID)
		m.status = "Toggled My Day"
	case k.DueForward, k.DueBack:
		step := 1
		if key == k.DueBack {
			step = -1
		}
		base := m.app.Tasks.Clock().Today()
		if t.PlannedDate != nil {
			base = t.PlannedDate.AddDate(0, 0, step)
		}
		m.app.Tasks.SetScheduledDate(t.ID, base)
		m.status = "Due " + calendar.DayKey(base)
	case k.Repeat:
		next := nextRecurrence(t.Recurrence)
		if next == nil && t.Recurrence != nil {
			m.app.Tasks.SetRecurrence(t.ID, nil)
			m.status = "Repeat off"
		} else {
			m.app.Tasks.SetRecurrence(t.ID, next)
			m.status = "Repeat " + string(next.Type)
		}
	case k.Delete:
		m.pendingDel = &pendingDelete{id: t.ID, name: t.Content}
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", t.Content)
		return m, nil
	default:
		return m, nil
	}
	m.reload()
	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.cfg.Keys.Cancel:
		m.status = "Delete cancelled"
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		if m.pendingDel.isList {
			m.app.DeleteList(m.pendingDel.id)
			m.status = "Deleted list"
		} else {
			m.app.Tasks.DeleteTask(m.pendingDel.id)
			m.status = "Deleted task"
		}
		m.pendingDel = nil
		m.reload()
		return m, nil
	default:
		return m, nil
	}
}

// nextRecurrence steps through repeatCycle and returns nil after the last.
func nextRecurrence(cur *task.Recurrence) *task.Recurrence {
	if cur == nil {
		return &task.Recurrence{Type: repeatCycle[0], Interval: 1}
	}
	for i, typ := range repeatCycle {
		if typ == cur.Type && i+1 < len(repeatCycle) {
			return &task.Recurrence{Type: repeatCycle[i+1], Interval: 1}
		}
	}
	return nil
}

func nextColor(th *list.Theme) string {
	colors := list.ThemeColors()
	if th != nil {
		for i, c := range colors {
			if strings.EqualFold(c, th.Value) {
				return colors[(i+1)%len(colors)]
			}
		}
	}
	return colors[0]
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func keyLabel(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func formatReminder(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
