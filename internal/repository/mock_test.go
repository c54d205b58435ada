package repository

import (
	"context"

	"github.com/stretchr/testify/mock"

	"taskdeck/internal/task"
)

type gatewayMock struct {
	mock.Mock
}

var _ Gateway = (*gatewayMock)(nil)

func (m *gatewayMock) ListTasks(ctx context.Context, uid string, f task.Filter) ([]task.Task, error) {
	args := m.Called(ctx, uid, f)

	var tasks []task.Task
	if value := args.Get(0); value != nil {
		tasks = value.([]task.Task)
	}
	return tasks, args.Error(1)
}

func (m *gatewayMock) CreateTask(ctx context.Context, uid string, f task.Fields) (string, error) {
	args := m.Called(ctx, uid, f)
	return args.String(0), args.Error(1)
}

func (m *gatewayMock) UpdateTask(ctx context.Context, uid, id string, p task.Patch) error {
	return m.Called(ctx, uid, id, p).Error(0)
}

func (m *gatewayMock) DeleteTask(ctx context.Context, uid, id string) error {
	return m.Called(ctx, uid, id).Error(0)
}

func (m *gatewayMock) SetCompleted(ctx context.Context, uid, id string, completed bool) error {
	return m.Called(ctx, uid, id, completed).Error(0)
}

func (m *gatewayMock) AppendSubtask(ctx context.Context, uid, taskID string, sub task.Subtask) error {
	return m.Called(ctx, uid, taskID, sub).Error(0)
}

func (m *gatewayMock) RemoveSubtask(ctx context.Context, uid, taskID, subtaskID string) error {
	return m.Called(ctx, uid, taskID, subtaskID).Error(0)
}

func (m *gatewayMock) UpdateSubtaskText(ctx context.Context, uid, taskID, subtaskID, text string) error {
	return m.Called(ctx, uid, taskID, subtaskID, text).Error(0)
}

func (m *gatewayMock) SetSubtaskCompleted(ctx context.Context, uid, taskID, subtaskID string, completed bool) error {
	return m.Called(ctx, uid, taskID, subtaskID, completed).Error(0)
}
