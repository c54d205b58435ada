package ui

import (
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"taskdeck/internal/auth"
	"taskdeck/internal/config"
	"taskdeck/internal/repository"
	"taskdeck/internal/storage"
	"taskdeck/internal/task"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	session := auth.NewLocal()
	require.NoError(t, session.SignIn(auth.User{UID: "alice"}))
	repo := repository.New(store, session)
	t.Cleanup(repo.Close)

	cfg, err := config.LoadOrCreate(filepath.Join(t.TempDir(), config.DefaultConfigFileName))
	require.NoError(t, err)

	m := NewModel(repo, cfg)
	m.loc = time.UTC
	m.now = func() time.Time { return time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC) }
	m.month = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	m.day = time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	return drain(t, m, m.Init())
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drain runs cmd and feeds repository results back into the model.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	if done, ok := cmd().(opDoneMsg); ok {
		next, _ := m.Update(done)
		return next.(Model)
	}
	return m
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, cmd := m.Update(key(k))
		m = drain(t, next.(Model), cmd)
	}
	return m
}

func addTask(t *testing.T, m Model, text string) Model {
	t.Helper()
	m = press(t, m, "a")
	require.Equal(t, modeAdd, m.mode)
	require.NotNil(t, m.meta)
	m.input.SetValue(text)
	return press(t, m, "enter", "enter", "enter")
}

func TestAddTaskFromList(t *testing.T) {
	m := newTestModel(t)
	require.Equal(t, "Loaded 0 tasks", m.status)

	m = addTask(t, m, "Buy milk")
	require.Equal(t, modeList, m.mode)
	require.Equal(t, "Added task", m.status)
	require.Len(t, m.tasks, 1)
	require.Equal(t, "Buy milk", m.tasks[0].Text)
	require.Contains(t, m.View(), "Buy milk")
}

func TestAddRejectsEmptyText(t *testing.T) {
	m := newTestModel(t)
	m = addTask(t, m, "   ")
	require.Equal(t, modeAdd, m.mode)
	require.NotNil(t, m.meta)
	require.Equal(t, "text cannot be empty", m.status)
	require.Empty(t, m.tasks)

	m = press(t, m, "esc")
	require.Nil(t, m.meta)
	require.Equal(t, modeList, m.mode)
	require.Empty(t, m.tasks)
}

func TestAddCollectsEveryField(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "a", "shift+tab")
	require.Equal(t, "title", m.meta.currentLabel())
	require.Contains(t, m.View(), "New task")

	m.input.SetValue("Work")
	m = press(t, m, "enter")
	m.input.SetValue("report")
	m = press(t, m, "enter")
	require.Equal(t, "medium", m.input.Value())
	m.input.SetValue("high")
	m = press(t, m, "enter")
	m.input.SetValue("2026-05-06")
	m = press(t, m, "enter")

	require.Nil(t, m.meta)
	require.Equal(t, modeList, m.mode)
	require.Equal(t, "Added task", m.status)
	require.Len(t, m.tasks, 1)
	got := m.tasks[0]
	require.Equal(t, "Work", got.Title)
	require.Equal(t, "report", got.Text)
	require.Equal(t, task.PriorityHigh, got.Priority)
	require.True(t, got.DueDate.Equal(time.Date(2026, 5, 6, 0, 0, 0, 0, time.UTC)))

	view := m.View()
	require.Contains(t, view, "2 days left")
	require.Contains(t, view, "urgent")
}

func TestCompleteAndDelete(t *testing.T) {
	m := newTestModel(t)
	m = addTask(t, m, "one")
	m = addTask(t, m, "two")
	require.Equal(t, 1, m.cursor)

	m = press(t, m, "k", "x")
	require.Equal(t, "Completed task", m.status)
	require.True(t, m.tasks[0].Completed)
	require.Len(t, m.tasks, 2)

	m = press(t, m, "j", "d")
	require.True(t, m.confirmDel)
	m = press(t, m, "y")
	require.Equal(t, "Deleted task", m.status)
	require.Len(t, m.tasks, 1)

	m = press(t, m, "r")
	require.Empty(t, m.tasks)
}

func TestDetailSubtaskFlow(t *testing.T) {
	m := newTestModel(t)
	m = addTask(t, m, "trip")

	m = press(t, m, "enter")
	require.Equal(t, modeDetail, m.mode)
	require.Contains(t, m.View(), "Created   :")

	for _, text := range []string{"book", "pack"} {
		m = press(t, m, "s")
		require.Equal(t, modeSubtaskInput, m.mode)
		m.input.SetValue(text)
		m = press(t, m, "enter")
		require.Equal(t, modeDetail, m.mode)
	}

	m = press(t, m, " ")
	sel, ok := m.repo.Selected()
	require.True(t, ok)
	require.Len(t, sel.Subtasks, 2)
	require.True(t, sel.Subtasks[0].Completed)
	require.Contains(t, m.View(), "Subtasks (1/2)")
	require.Contains(t, m.View(), "50%")

	m = press(t, m, "j", "E")
	m.input.SetValue("pack bags")
	m = press(t, m, "enter")
	sel, _ = m.repo.Selected()
	require.Equal(t, "pack bags", sel.Subtasks[1].Text)

	m = press(t, m, "D")
	sel, _ = m.repo.Selected()
	require.Len(t, sel.Subtasks, 1)
	require.Equal(t, "book", sel.Subtasks[0].Text)

	m = press(t, m, "d", "y")
	require.Equal(t, modeList, m.mode)
	_, ok = m.repo.Selected()
	require.False(t, ok)
}

func TestMetadataEdit(t *testing.T) {
	m := newTestModel(t)
	m = addTask(t, m, "report")

	m = press(t, m, "e")
	require.Equal(t, modeMetadata, m.mode)
	m.input.SetValue("Work")
	m = press(t, m, "enter", "enter")
	m.input.SetValue("high")
	m = press(t, m, "enter")
	m.input.SetValue("2026-05-06 14:30")
	m = press(t, m, "enter")

	require.Nil(t, m.meta)
	require.Equal(t, modeList, m.mode)
	require.Equal(t, "Task saved", m.status)
	got := m.tasks[0]
	require.Equal(t, "Work", got.Title)
	require.Equal(t, task.PriorityHigh, got.Priority)
	require.True(t, got.DueDate.Equal(time.Date(2026, 5, 6, 14, 30, 0, 0, time.UTC)))
	require.Contains(t, m.View(), "3 days left")
}

func TestMetadataEditRejectsBadDate(t *testing.T) {
	m := newTestModel(t)
	m = addTask(t, m, "report")
	m = press(t, m, "e", "tab", "tab", "tab")
	m.input.SetValue("next week")
	m = press(t, m, "enter")
	require.NotNil(t, m.meta)
	require.Contains(t, m.status, "due date invalid")

	m = press(t, m, "esc")
	require.Nil(t, m.meta)
	require.Equal(t, modeList, m.mode)
}

func TestCalendarNavigation(t *testing.T) {
	m := newTestModel(t)
	m = addTask(t, m, "dentist")
	m = press(t, m, "e", "tab", "tab", "tab")
	m.input.SetValue("2026-05-04 15:00")
	m = press(t, m, "enter")

	m = press(t, m, "c")
	require.Equal(t, modeCalendar, m.mode)
	view := m.View()
	require.Contains(t, view, "May 2026")
	require.Contains(t, view, "3:00 PM dentist")

	m = press(t, m, "]")
	require.Equal(t, time.June, m.month.Month())
	require.Equal(t, 1, m.day.Day())

	m = press(t, m, "h")
	require.Equal(t, time.May, m.month.Month())
	require.Equal(t, 31, m.day.Day())

	m = press(t, m, "[", "[")
	require.Equal(t, time.March, m.month.Month())

	m.month = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	m.day = time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	m = press(t, m, "enter")
	require.Equal(t, modeDetail, m.mode)
	sel, ok := m.repo.Selected()
	require.True(t, ok)
	require.Equal(t, "dentist", sel.Text)
}

func TestFormatDue(t *testing.T) {
	d, err := task.ParseDue("2026-05-06", time.UTC)
	require.NoError(t, err)
	require.True(t, d.Equal(time.Date(2026, 5, 6, 0, 0, 0, 0, time.UTC)))

	d, err = task.ParseDue("  ", time.UTC)
	require.NoError(t, err)
	require.Nil(t, d)

	_, err = task.ParseDue("06/05/2026", time.UTC)
	require.Error(t, err)

	midnight := time.Date(2026, 5, 6, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "2026-05-06", formatDue(&midnight, time.UTC))
	afternoon := time.Date(2026, 5, 6, 14, 30, 0, 0, time.UTC)
	require.Equal(t, "2026-05-06 14:30", formatDue(&afternoon, time.UTC))
	require.Equal(t, "", formatDue(nil, time.UTC))
}
