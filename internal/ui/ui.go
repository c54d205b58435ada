package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/config"
	"taskdeck/internal/repository"
	"taskdeck/internal/task"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeDetail
	modeSubtaskInput
	modeMetadata
	modeCalendar
)

// opDoneMsg reports the end of a repository call started by run.
type opDoneMsg struct {
	op     string
	taskID string
	err    error
}

type Model struct {
	repo      *repository.Repository
	cfg       config.Config
	weekStart time.Weekday
	loc       *time.Location
	now       func() time.Time

	tasks      []task.Task
	cursor     int
	subCursor  int
	mode       mode
	input      textinput.Model
	status     string
	confirmDel bool
	pendingDel *task.Task
	returnTo   mode
	meta       *metaState
	subEdit    string
	month      time.Time
	day        time.Time
}

func NewModel(repo *repository.Repository, cfg config.Config) Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	weekStart, err := cfg.FirstWeekday()
	if err != nil {
		weekStart = time.Sunday
	}
	now := time.Now()
	return Model{
		repo:      repo,
		cfg:       cfg,
		weekStart: weekStart,
		loc:       time.Local,
		now:       time.Now,
		tasks:     repo.Tasks(),
		status:    "Loading tasks...",
		input:     ti,
		mode:      modeList,
		month:     firstOfMonth(now),
		day:       now,
	}
}

func Run(repo *repository.Repository, cfg config.Config) error {
	program := tea.NewProgram(NewModel(repo, cfg), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.run("refresh", "", m.repo.Refresh)
}

// run performs fn off the update loop and reports back with an opDoneMsg.
func (m Model) run(op, taskID string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: op, taskID: taskID, err: fn(context.Background())}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case opDoneMsg:
		return m.opDone(msg), nil
	case tea.KeyMsg:
		if m.meta != nil {
			return m.updateMetadataMode(msg.String(), msg)
		}
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

func (m Model) opDone(msg opDoneMsg) Model {
	m.tasks = m.repo.Tasks()
	m.cursor = clampCursor(m.cursor, len(m.tasks))
	if msg.err != nil {
		m.status = fmt.Sprintf("%s failed: %v", msg.op, msg.err)
		return m
	}
	if msg.op == "add" && msg.taskID != "" {
		if i := indexOf(m.tasks, msg.taskID); i >= 0 {
			m.cursor = i
		}
	}
	if m.mode == modeDetail {
		sel, ok := m.repo.Selected()
		if !ok {
			m.mode = modeList
		} else {
			m.subCursor = clampCursor(m.subCursor, len(sel.Subtasks))
		}
	}
	m.status = opStatus(msg.op, len(m.tasks))
	return m
}

func opStatus(op string, n int) string {
	switch op {
	case "refresh":
		return fmt.Sprintf("Loaded %d tasks", n)
	case "add":
		return "Added task"
	case "complete":
		return "Completed task"
	case "delete":
		return "Deleted task"
	case "edit":
		return "Task saved"
	}
	return strings.ToUpper(op[:1]) + op[1:] + " done"
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch m.mode {
	case modeDetail:
		return m.updateDetailMode(key)
	case modeSubtaskInput:
		return m.updateSubtaskInput(key, msg)
	case modeCalendar:
		return m.updateCalendarMode(key)
	}
	return m.updateListMode(key)
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		if len(m.tasks) == 0 {
			return m, nil
		}
		m.cursor = clampCursor(m.cursor+1, len(m.tasks))
	case m.cfg.Keys.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.tasks))
		}
	case m.cfg.Keys.Add:
		return m.startCreate()
	case m.cfg.Keys.Refresh:
		m.status = "Refreshing..."
		return m, m.run("refresh", "", m.repo.Refresh)
	case m.cfg.Keys.Calendar:
		m.mode = modeCalendar
		m.status = "Calendar"
	case m.cfg.Keys.Complete:
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		return m, m.completeCmd(t.ID)
	case m.cfg.Keys.Delete:
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		return m.askDelete(t), nil
	case m.cfg.Keys.Detail:
		t, ok := m.current()
		if !ok {
			m.status = "No tasks"
			return m, nil
		}
		return m.openDetail(t.ID), nil
	case m.cfg.Keys.Edit:
		t, ok := m.current()
		if !ok {
			m.status = "No tasks to edit"
			return m, nil
		}
		return m.startMetadataEdit(t)
	}
	return m, nil
}

func (m Model) updateDetailMode(key string) (tea.Model, tea.Cmd) {
	sel, ok := m.repo.Selected()
	if !ok {
		m.mode = modeList
		return m, nil
	}
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Cancel:
		m.repo.ClearSelection()
		m.mode = modeList
		m.status = ""
	case m.cfg.Keys.Down, "down":
		m.subCursor = clampCursor(m.subCursor+1, len(sel.Subtasks))
	case m.cfg.Keys.Up, "up":
		m.subCursor = clampCursor(m.subCursor-1, len(sel.Subtasks))
	case m.cfg.Keys.AddSubtask:
		m.subEdit = ""
		m.input.SetValue("")
		m.input.Placeholder = "Add a subtask..."
		m.input.Focus()
		m.mode = modeSubtaskInput
		m.status = "New subtask: type and press Enter"
	case m.cfg.Keys.EditSubtask:
		if len(sel.Subtasks) == 0 {
			return m, nil
		}
		sub := sel.Subtasks[clampCursor(m.subCursor, len(sel.Subtasks))]
		m.subEdit = sub.ID
		m.input.SetValue(sub.Text)
		m.input.Focus()
		m.mode = modeSubtaskInput
		m.status = "Edit subtask: Enter to save, Esc to cancel"
	case m.cfg.Keys.ToggleSubtask:
		if len(sel.Subtasks) == 0 {
			return m, nil
		}
		subID := sel.Subtasks[clampCursor(m.subCursor, len(sel.Subtasks))].ID
		return m, m.run("toggle subtask", sel.ID, func(ctx context.Context) error {
			return m.repo.ToggleSubtask(ctx, sel.ID, subID)
		})
	case m.cfg.Keys.DeleteSubtask:
		if len(sel.Subtasks) == 0 {
			return m, nil
		}
		subID := sel.Subtasks[clampCursor(m.subCursor, len(sel.Subtasks))].ID
		return m, m.run("delete subtask", sel.ID, func(ctx context.Context) error {
			return m.repo.RemoveSubtask(ctx, sel.ID, subID)
		})
	case m.cfg.Keys.Complete:
		return m, m.completeCmd(sel.ID)
	case m.cfg.Keys.Delete:
		return m.askDelete(sel), nil
	case m.cfg.Keys.Edit:
		return m.startMetadataEdit(sel)
	}
	return m, nil
}

func (m Model) updateSubtaskInput(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m.input.Blur()
		m.mode = modeDetail
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm:
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			m.status = "Subtask cannot be empty"
			return m, nil
		}
		sel, ok := m.repo.Selected()
		m.input.SetValue("")
		m.input.Blur()
		m.mode = modeDetail
		if !ok {
			m.mode = modeList
			return m, nil
		}
		subID := m.subEdit
		if subID == "" {
			return m, m.run("add subtask", sel.ID, func(ctx context.Context) error {
				_, err := m.repo.AddSubtask(ctx, sel.ID, text)
				return err
			})
		}
		return m, m.run("edit subtask", sel.ID, func(ctx context.Context) error {
			return m.repo.EditSubtaskText(ctx, sel.ID, subID, text)
		})
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.cfg.Keys.Cancel:
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		m.confirmDel = false
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			return m, nil
		}
		id := m.pendingDel.ID
		m.pendingDel = nil
		return m, m.run("delete", id, func(ctx context.Context) error {
			return m.repo.Remove(ctx, id)
		})
	default:
		return m, nil
	}
}

func (m Model) askDelete(t task.Task) Model {
	m.confirmDel = true
	m.pendingDel = &t
	m.status = fmt.Sprintf("Delete \"%s\"? y/n", t.Text)
	return m
}

func (m Model) completeCmd(id string) tea.Cmd {
	repo := m.repo
	return m.run("complete", id, func(ctx context.Context) error {
		return repo.Complete(ctx, id)
	})
}

func (m Model) openDetail(id string) Model {
	if !m.repo.Select(id) {
		m.status = "Task is gone, refresh with " + m.cfg.Keys.Refresh
		return m
	}
	m.mode = modeDetail
	m.subCursor = 0
	m.status = ""
	return m
}

func (m Model) current() (task.Task, bool) {
	if len(m.tasks) == 0 {
		return task.Task{}, false
	}
	return m.tasks[clampCursor(m.cursor, len(m.tasks))], true
}

func indexOf(tasks []task.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
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
