package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"taskdeck/internal/config"
	"taskdeck/internal/task"
	"taskdeck/internal/views"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	faintStyle    = lipgloss.NewStyle().Faint(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	overdueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	urgentStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
)

func priorityStyle(p task.Priority) lipgloss.Style {
	switch p {
	case task.PriorityHigh:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	case task.PriorityMedium:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	case task.PriorityLow:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("taskdeck"))
	b.WriteString("\n\n")

	switch m.mode {
	case modeCalendar:
		b.WriteString(m.renderCalendar())
	case modeDetail, modeSubtaskInput:
		b.WriteString(m.renderDetail())
	default:
		if len(m.tasks) == 0 {
			b.WriteString("No tasks yet. Press '" + m.cfg.Keys.Add + "' to add one.")
		} else {
			b.WriteString(m.renderTaskList())
		}
	}

	b.WriteString("\n---\n")

	switch {
	case m.meta != nil:
		heading := "Task editor"
		if m.meta.taskID == "" {
			heading = "New task"
		}
		b.WriteString(heading + " (tab/shift+tab to move, enter to save/next, esc to cancel)")
		b.WriteString("\n\n")
		b.WriteString(m.renderMetaBox())
		b.WriteString("\n")
		b.WriteString("Field: " + m.meta.currentLabel())
		b.WriteString("\n")
		b.WriteString(m.input.View())
	case m.mode == modeSubtaskInput:
		b.WriteString(m.input.View())
	}

	b.WriteString("\n\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(faintStyle.Render(renderHelp(m.mode, m.cfg.Keys)))

	return b.String()
}

func renderHelp(md mode, k config.Keymap) string {
	switch md {
	case modeDetail:
		return fmt.Sprintf("%s/%s move • %s add subtask • %s toggle • %s edit subtask • %s delete subtask • %s edit • %s complete • %s back",
			k.Up, k.Down, k.AddSubtask, keyName(k.ToggleSubtask), k.EditSubtask, k.DeleteSubtask, k.Edit, k.Complete, k.Cancel)
	case modeCalendar:
		return fmt.Sprintf("%s/%s day • %s/%s week • %s/%s month • %s open • %s back",
			k.PrevDay, k.NextDay, k.Up, k.Down, k.PrevMonth, k.NextMonth, k.Detail, k.Cancel)
	}
	return fmt.Sprintf("%s/%s move • %s add • %s detail • %s complete • %s delete • %s edit • %s calendar • %s refresh • %s quit",
		k.Up, k.Down, k.Add, k.Detail, k.Complete, k.Delete, k.Edit, k.Calendar, k.Refresh, k.Quit)
}

func keyName(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func (m Model) renderTaskList() string {
	var b strings.Builder
	now := m.now()
	for i, t := range m.tasks {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s %s", cursor, checkbox(t.Completed), priorityStyle(t.Priority).Render("●")))
		b.WriteString(" " + t.Text)
		if t.Title != "" {
			b.WriteString(faintStyle.Render(" (" + t.Title + ")"))
		}
		if t.DueDate != nil {
			b.WriteString(" " + m.renderDue(t, now))
		}
		if pct, ok := views.Progress(t); ok {
			done, total := views.SubtaskCounts(t)
			b.WriteString(faintStyle.Render(fmt.Sprintf(" [%d/%d %d%%]", done, total, pct)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderDue(t task.Task, now time.Time) string {
	days, _ := views.DaysRemaining(t, now)
	label := "due " + formatDue(t.DueDate, m.loc)
	switch {
	case t.Completed:
		return faintStyle.Render(label)
	case days <= 0:
		return overdueStyle.Render(label + " (overdue)")
	case days == 1:
		label += " (1 day left)"
	default:
		label = fmt.Sprintf("%s (%d days left)", label, days)
	}
	if views.Urgent(t, now) {
		label += " " + urgentStyle.Render("urgent")
	}
	return label
}

func (m Model) renderDetail() string {
	t, ok := m.repo.Selected()
	if !ok {
		return "No task selected"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Text      : %s\n", t.Text))
	b.WriteString(fmt.Sprintf("Title     : %s\n", emptyPlaceholder(t.Title)))
	b.WriteString(fmt.Sprintf("Status    : %s\n", humanDone(t.Completed)))
	b.WriteString(fmt.Sprintf("Priority  : %s\n", priorityStyle(t.Priority).Render(string(t.Priority))))
	if t.DueDate != nil {
		b.WriteString(fmt.Sprintf("Due       : %s\n", m.renderDue(t, m.now())))
	} else {
		b.WriteString("Due       : (unscheduled)\n")
	}
	if !t.CreatedAt.IsZero() {
		b.WriteString(fmt.Sprintf("Created   : %s\n", t.CreatedAt.In(m.loc).Format("Jan 2, 2006 3:04 PM")))
	}

	done, total := views.SubtaskCounts(t)
	b.WriteString(fmt.Sprintf("\nSubtasks (%d/%d)", done, total))
	if pct, ok := views.Progress(t); ok {
		b.WriteString(fmt.Sprintf(" %s %d%%", progressBar(pct, 20), pct))
	}
	b.WriteString("\n")
	if total == 0 {
		b.WriteString(faintStyle.Render("  none yet"))
		b.WriteString("\n")
	}
	for i, s := range t.Subtasks {
		cursor := " "
		if i == m.subCursor && m.mode == modeDetail {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n", cursor, checkbox(s.Completed), s.Text))
	}
	return b.String()
}

func progressBar(pct, width int) string {
	filled := pct * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

func (m Model) renderCalendar() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.month.Format("January 2006")))
	b.WriteString("\n")

	grid := views.CalendarGrid(m.month, m.weekStart)
	counts := views.CountByDay(m.tasks, grid)
	for i := 0; i < 7; i++ {
		b.WriteString(fmt.Sprintf(" %-4s", grid[i].Weekday().String()[:3]))
	}
	b.WriteString("\n")
	for i, d := range grid {
		cell := fmt.Sprintf("%2d", d.Day())
		if counts[i] > 0 {
			cell += "*"
		} else {
			cell += " "
		}
		switch {
		case views.SameDay(d, m.day):
			cell = selectedStyle.Render(cell)
		case d.Month() != m.month.Month():
			cell = faintStyle.Render(cell)
		}
		b.WriteString("  " + cell)
		if i%7 == 6 {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.day.Format("Monday, January 2"))
	b.WriteString("\n")
	onDay := views.TasksOnDay(m.tasks, m.day)
	if len(onDay) == 0 {
		b.WriteString(faintStyle.Render("  no tasks"))
		b.WriteString("\n")
	}
	for _, t := range onDay {
		b.WriteString(fmt.Sprintf("  %s %s %s\n",
			priorityStyle(t.Priority).Render("●"), t.DueDate.In(m.loc).Format("3:04 PM"), t.Text))
	}
	return b.String()
}

func (m Model) renderMetaBox() string {
	if m.meta == nil {
		return ""
	}
	fields := metaFields()
	values := []string{m.meta.title, m.meta.text, m.meta.priority, m.meta.due}
	var b strings.Builder
	for i, name := range fields {
		prefix := " "
		if i == m.meta.index {
			prefix = ">"
		}
		b.WriteString(fmt.Sprintf("%s %-26s : %s\n", prefix, name, emptyPlaceholder(values[i])))
	}
	return b.String()
}

func firstOfMonth(t time.Time) time.Time {
	y, mo, _ := t.Date()
	return time.Date(y, mo, 1, 0, 0, 0, 0, t.Location())
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
}

func humanDone(done bool) string {
	if done {
		return "done"
	}
	return "pending"
}
