package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/task"
)

// metaState backs the task editor. An empty taskID means the editor is
// collecting a new task.
type metaState struct {
	taskID   string
	title    string
	text     string
	priority string
	due      string
	index    int
}

func metaFields() []string {
	return []string{"title", "text", "priority (low/medium/high)", "due (YYYY-MM-DD [HH:MM])"}
}

func (m Model) startMetadataEdit(t task.Task) (tea.Model, tea.Cmd) {
	m.returnTo = m.mode
	m.meta = &metaState{
		taskID:   t.ID,
		title:    t.Title,
		text:     t.Text,
		priority: string(t.Priority),
		due:      formatDue(t.DueDate, m.loc),
	}
	m.input.SetValue(m.meta.currentValue())
	m.input.Placeholder = m.meta.currentLabel()
	m.input.Focus()
	m.mode = modeMetadata
	m.status = "Edit task: tab to move, enter to save/next, esc to cancel"
	return m, nil
}

func (m Model) startCreate() (tea.Model, tea.Cmd) {
	m.returnTo = modeList
	m.meta = &metaState{priority: string(task.PriorityMedium), index: 1}
	m.input.SetValue("")
	m.input.Placeholder = m.meta.currentLabel()
	m.input.Focus()
	m.mode = modeAdd
	m.status = "New task: tab to move, enter to save/next, esc to cancel"
	return m, nil
}

func (m Model) updateMetadataMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.meta = nil
		m.mode = m.returnTo
		m.input.Blur()
		m.status = "Edit cancelled"
		return m, nil
	case "tab", "down":
		m.meta.setCurrentValue(m.input.Value())
		m.meta.index = wrapIndex(m.meta.index+1, len(metaFields()))
		m.input.SetValue(m.meta.currentValue())
		m.input.Placeholder = m.meta.currentLabel()
		m.status = m.metaPrompt()
		return m, nil
	case "shift+tab", "up":
		m.meta.setCurrentValue(m.input.Value())
		m.meta.index = wrapIndex(m.meta.index-1, len(metaFields()))
		m.input.SetValue(m.meta.currentValue())
		m.input.Placeholder = m.meta.currentLabel()
		m.status = m.metaPrompt()
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.meta.setCurrentValue(m.input.Value())
		if m.meta.index >= len(metaFields())-1 {
			return m.saveMetadata()
		}
		m.meta.index++
		m.input.SetValue(m.meta.currentValue())
		m.input.Placeholder = m.meta.currentLabel()
		m.status = m.metaPrompt()
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) saveMetadata() (tea.Model, tea.Cmd) {
	f, err := m.meta.fields(m.loc)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	id := m.meta.taskID
	m.meta = nil
	m.mode = m.returnTo
	m.input.Blur()
	m.status = "Saving..."
	if id == "" {
		repo := m.repo
		return m, func() tea.Msg {
			id, err := repo.Add(context.Background(), f)
			return opDoneMsg{op: "add", taskID: id, err: err}
		}
	}
	patch := task.Patch{Title: &f.Title, Text: &f.Text, Priority: &f.Priority}
	if f.DueDate == nil {
		patch.ClearDueDate = true
	} else {
		patch.DueDate = f.DueDate
	}
	return m, m.run("edit", id, func(ctx context.Context) error {
		return m.repo.EditDetails(ctx, id, patch)
	})
}

func (ms metaState) fields(loc *time.Location) (task.Fields, error) {
	text := strings.TrimSpace(ms.text)
	if text == "" {
		return task.Fields{}, errors.New("text cannot be empty")
	}
	priority, err := task.ParsePriority(ms.priority)
	if err != nil {
		return task.Fields{}, fmt.Errorf("priority invalid: %q", ms.priority)
	}
	due, err := task.ParseDue(ms.due, loc)
	if err != nil {
		return task.Fields{}, fmt.Errorf("due date invalid: %v", err)
	}
	return task.Fields{
		Title:    strings.TrimSpace(ms.title),
		Text:     text,
		Priority: priority,
		DueDate:  due,
	}, nil
}

func (ms metaState) currentLabel() string {
	return metaFields()[ms.index]
}

func (ms metaState) currentValue() string {
	switch ms.index {
	case 0:
		return ms.title
	case 1:
		return ms.text
	case 2:
		return ms.priority
	case 3:
		return ms.due
	default:
		return ""
	}
}

func (ms *metaState) setCurrentValue(v string) {
	switch ms.index {
	case 0:
		ms.title = v
	case 1:
		ms.text = v
	case 2:
		ms.priority = v
	case 3:
		ms.due = v
	}
}

func (m Model) metaPrompt() string {
	if m.meta == nil {
		return ""
	}
	return fmt.Sprintf("Editing %s (field %d of %d). Enter to advance, Esc to cancel, tab to move.",
		m.meta.currentLabel(), m.meta.index+1, len(metaFields()))
}

func formatDue(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	local := t.In(loc)
	if local.Hour() == 0 && local.Minute() == 0 {
		return local.Format(task.DateLayout)
	}
	return local.Format(task.DateTimeLayout)
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
