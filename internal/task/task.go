// Package task holds the task model shared by the store gateways, the
// repository and the views.
package task

import (
	"fmt"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority accepts a priority name in any case. An empty string yields
// the default priority.
func ParsePriority(v string) (Priority, error) {
	switch Priority(strings.ToLower(strings.TrimSpace(v))) {
	case "", PriorityMedium:
		return PriorityMedium, nil
	case PriorityLow:
		return PriorityLow, nil
	case PriorityHigh:
		return PriorityHigh, nil
	}
	return "", fmt.Errorf("%w: unknown priority %q", ErrValidation, v)
}

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type Subtask struct {
	ID        string
	Text      string
	Completed bool
}

type Task struct {
	ID        string
	Title     string
	Text      string
	Completed bool
	Priority  Priority
	DueDate   *time.Time
	Subtasks  []Subtask
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a copy that shares no memory with t.
func (t Task) Clone() Task {
	c := t
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	c.Subtasks = make([]Subtask, len(t.Subtasks))
	copy(c.Subtasks, t.Subtasks)
	return c
}

func (t Task) SubtaskIndex(id string) int {
	for i, s := range t.Subtasks {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Fields are the caller supplied attributes of a new task.
type Fields struct {
	Title    string
	Text     string
	Priority Priority
	DueDate  *time.Time
}

// Normalize validates f and fills in defaults.
func (f Fields) Normalize() (Fields, error) {
	f.Text = strings.TrimSpace(f.Text)
	f.Title = strings.TrimSpace(f.Title)
	if f.Text == "" {
		return f, fmt.Errorf("%w: text is required", ErrValidation)
	}
	if f.Priority == "" {
		f.Priority = PriorityMedium
	}
	if !f.Priority.Valid() {
		return f, fmt.Errorf("%w: unknown priority %q", ErrValidation, f.Priority)
	}
	return f, nil
}

// New builds the task stored for f. Subtasks start empty.
func (f Fields) New(id string, now time.Time) Task {
	return Task{
		ID:        id,
		Title:     f.Title,
		Text:      f.Text,
		Priority:  f.Priority,
		DueDate:   f.DueDate,
		Subtasks:  []Subtask{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Patch is a partial update. Nil fields are left unchanged; ClearDueDate
// unschedules the task and wins over DueDate.
type Patch struct {
	Title        *string
	Text         *string
	Priority     *Priority
	DueDate      *time.Time
	ClearDueDate bool
	Completed    *bool
}

func (p Patch) Validate() error {
	if p.Text != nil && strings.TrimSpace(*p.Text) == "" {
		return fmt.Errorf("%w: text is required", ErrValidation)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrValidation, *p.Priority)
	}
	return nil
}

func (p Patch) Empty() bool {
	return p.Title == nil && p.Text == nil && p.Priority == nil &&
		p.DueDate == nil && !p.ClearDueDate && p.Completed == nil
}

// Apply merges p into t.
func (p Patch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Text != nil {
		t.Text = strings.TrimSpace(*p.Text)
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	switch {
	case p.ClearDueDate:
		t.DueDate = nil
	case p.DueDate != nil:
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

// Filter narrows ListTasks. The zero value lists every task.
type Filter struct {
	PendingOnly bool
}

func (f Filter) Match(t Task) bool {
	return !f.PendingOnly || !t.Completed
}

func ValidateSubtaskText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: subtask text is required", ErrValidation)
	}
	return text, nil
}

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04"
)

// ParseDue accepts a date or a date with time in loc. A bare date is due at
// the start of that day; an empty string means unscheduled.
func ParseDue(v string, loc *time.Location) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{DateTimeLayout, DateLayout} {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: want YYYY-MM-DD or YYYY-MM-DD HH:MM, got %q", ErrValidation, v)
}
