package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"myday/internal/calendar"
	"myday/internal/config"
	"myday/internal/list"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	sidebarStyle = lipgloss.NewStyle().Width(24).PaddingRight(2).BorderStyle(lipgloss.NormalBorder()).BorderRight(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	starStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#AC395D"))
)

// headerStyle paints a list title in its theme colours.
func headerStyle(th *list.Theme) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color(list.TextColor(th)))
	if th != nil && th.Type == list.ThemeColor {
		s = s.Background(lipgloss.Color(th.Value))
	}
	return s
}

func (m Model) View() string {
	var b strings.Builder

	title := "My Day"
	if n := m.app.Counts.Badge(); n > 0 {
		title += fmt.Sprintf(" (%d)", n)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	main := m.renderTaskPane()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, sidebarStyle.Render(m.renderSidebar()), "  "+main))

	b.WriteString("\n---\n")
	if m.mode != modeList {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderDetail())
	}

	b.WriteString("\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(renderHelp(m.cfg.Keys)))

	return b.String()
}

func (m Model) renderSidebar() string {
	var b strings.Builder
	for i, l := range m.lists {
		cursor := " "
		if i == m.selected {
			cursor = ">"
		}
		count := ""
		if n := l.CountOr(0); n > 0 {
			count = fmt.Sprintf(" %d", n)
		}
		line := fmt.Sprintf("%s %s%s", cursor, l.Name, count)
		if i == m.selected {
			line = headerStyle(l.Theme).Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
		if l.Kind == list.KindSystem && i+1 < len(m.lists) && m.lists[i+1].Kind == list.KindUser {
			b.WriteString(mutedStyle.Render("  ──────"))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderTaskPane() string {
	cur, ok := m.currentList()
	if !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString(headerStyle(cur.Theme).Render(cur.Name))
	b.WriteString("\n\n")
	if len(m.tasks) == 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("Nothing here. Press '%s' to add a task.", m.cfg.Keys.Add)))
		return b.String()
	}
	clock := m.app.Tasks.Clock()
	for i, t := range m.tasks {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = ">"
		}
		checkbox := "[ ]"
		if t.IsCompleted {
			checkbox = "[x]"
		}
		line := fmt.Sprintf("%s %s %s", cursor, checkbox, t.Content)
		if t.IsImportant {
			line += " " + starStyle.Render("★")
		}
		var tags []string
		if clock.IsToday(t.MyDayDate) {
			tags = append(tags, "my day")
		}
		if t.PlannedDate != nil {
			tags = append(tags, "due "+calendar.DayKey(*t.PlannedDate))
		}
		if t.Recurrence != nil {
			tags = append(tags, "↻ "+string(t.Recurrence.Type))
		}
		if done, total := m.app.Tasks.StepsProgress(t.ID); total > 0 {
			tags = append(tags, fmt.Sprintf("%d/%d", done, total))
		}
		if len(tags) > 0 {
			line += "  " + mutedStyle.Render(strings.Join(tags, " · "))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderDetail() string {
	t, ok := m.currentTask()
	if !ok {
		return "No task selected\n"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Task      : %s\n", t.Content))
	b.WriteString(fmt.Sprintf("Status    : %s\n", humanDone(t.IsCompleted)))
	if t.PlannedDate != nil {
		b.WriteString(fmt.Sprintf("Due       : %s\n", calendar.DayKey(*t.PlannedDate)))
	}
	if t.ReminderTime != nil {
		b.WriteString(fmt.Sprintf("Reminder  : %s\n", formatReminder(t.ReminderTime)))
	}
	if t.Recurrence != nil {
		b.WriteString(fmt.Sprintf("Repeats   : %s every %d\n", t.Recurrence.Type, t.Recurrence.Every()))
	}
	if strings.TrimSpace(t.Note) != "" {
		b.WriteString(fmt.Sprintf("Note      : %s\n", t.Note))
	}
	return b.String()
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s/%s list • %s add • %s done • %s important • %s my day • %s/%s due • %s repeat • %s delete • %s new list • %s rename • %s delete list • %s theme • %s quit",
		k.Up, k.Down, k.NextList, k.PrevList, k.Add, keyLabel(k.Toggle), k.Important, k.MyDay, k.DueBack, k.DueForward, k.Repeat, k.Delete, k.NewList, k.Rename, k.DeleteList, k.Theme, k.Quit)
}

func humanDone(done bool) string {
	if done {
		return "done"
	}
	return "pending"
}
