package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/views"
)

func (m Model) updateCalendarMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Cancel, m.cfg.Keys.Calendar:
		m.mode = modeList
		m.status = ""
	case m.cfg.Keys.PrevDay, "left":
		m = m.moveDay(-1)
	case m.cfg.Keys.NextDay, "right":
		m = m.moveDay(1)
	case m.cfg.Keys.Up, "up":
		m = m.moveDay(-7)
	case m.cfg.Keys.Down, "down":
		m = m.moveDay(7)
	case m.cfg.Keys.PrevMonth:
		m.month = firstOfMonth(m.month).AddDate(0, -1, 0)
		m.day = firstOfMonth(m.month)
	case m.cfg.Keys.NextMonth:
		m.month = firstOfMonth(m.month).AddDate(0, 1, 0)
		m.day = firstOfMonth(m.month)
	case m.cfg.Keys.Refresh:
		return m, m.run("refresh", "", m.repo.Refresh)
	case m.cfg.Keys.Detail:
		onDay := views.TasksOnDay(m.tasks, m.day)
		if len(onDay) == 0 {
			m.status = "Nothing due on " + m.day.Format("Mon Jan 2")
			return m, nil
		}
		return m.openDetail(onDay[0].ID), nil
	}
	return m, nil
}

// moveDay shifts the selected day and follows it into another month.
func (m Model) moveDay(n int) Model {
	m.day = m.day.AddDate(0, 0, n)
	if m.day.Year() != m.month.Year() || m.day.Month() != m.month.Month() {
		m.month = firstOfMonth(m.day)
	}
	return m
}
