package repository

import (
	"context"

	"taskdeck/internal/task"
)

// Gateway is the remote document store scoped per user. Implementations
// return errors wrapping the task package sentinels and never touch
// repository state.
type Gateway interface {
	ListTasks(ctx context.Context, uid string, f task.Filter) ([]task.Task, error)
	CreateTask(ctx context.Context, uid string, f task.Fields) (string, error)
	UpdateTask(ctx context.Context, uid, id string, p task.Patch) error
	DeleteTask(ctx context.Context, uid, id string) error
	SetCompleted(ctx context.Context, uid, id string, completed bool) error
	AppendSubtask(ctx context.Context, uid, taskID string, sub task.Subtask) error
	RemoveSubtask(ctx context.Context, uid, taskID, subtaskID string) error
	UpdateSubtaskText(ctx context.Context, uid, taskID, subtaskID, text string) error
	SetSubtaskCompleted(ctx context.Context, uid, taskID, subtaskID string, completed bool) error
}
