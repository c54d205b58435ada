package storage

import (
	"time"

	"taskdeck/internal/task"
)

// document is the stored shape of a task. Subtasks are embedded.
type document struct {
	ID        string       `json:"-" bson:"_id"`
	Title     string       `json:"title" bson:"title"`
	Text      string       `json:"text" bson:"text"`
	Completed bool         `json:"completed" bson:"completed"`
	Priority  string       `json:"priority" bson:"priority"`
	DueDate   *time.Time   `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	Subtasks  []subtaskDoc `json:"subtasks" bson:"subtasks"`
	CreatedAt time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt" bson:"updatedAt"`
}

type subtaskDoc struct {
	ID        string `json:"id" bson:"id"`
	Text      string `json:"text" bson:"text"`
	Completed bool   `json:"completed" bson:"completed"`
}

func fromTask(t task.Task) document {
	d := document{
		ID:        t.ID,
		Title:     t.Title,
		Text:      t.Text,
		Completed: t.Completed,
		Priority:  string(t.Priority),
		DueDate:   t.DueDate,
		Subtasks:  make([]subtaskDoc, 0, len(t.Subtasks)),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	for _, s := range t.Subtasks {
		d.Subtasks = append(d.Subtasks, subtaskDoc(s))
	}
	return d
}

func (d document) toTask() task.Task {
	t := task.Task{
		ID:        d.ID,
		Title:     d.Title,
		Text:      d.Text,
		Completed: d.Completed,
		Priority:  task.Priority(d.Priority),
		DueDate:   d.DueDate,
		Subtasks:  make([]task.Subtask, 0, len(d.Subtasks)),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if !t.Priority.Valid() {
		t.Priority = task.PriorityMedium
	}
	for _, s := range d.Subtasks {
		t.Subtasks = append(t.Subtasks, task.Subtask(s))
	}
	return t
}
