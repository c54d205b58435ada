// Package repository keeps the signed-in user's task list in memory and
// mediates every change through a Gateway.
//
// Each mutation follows the same sequence: the gateway write is issued
// first and the cached copy is patched only after the store acknowledged
// it. A failed write leaves the cache untouched. The mutex guards the cache
// only and is never held across a gateway call, so operations on different
// tasks proceed independently. Refresh replaces the whole cache and wins
// over local patches that land while it is in flight.
package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskdeck/internal/auth"
	"taskdeck/internal/task"
)

type Repository struct {
	gateway Gateway
	session auth.Session
	logger  *zap.Logger
	newID   func() string
	now     func() time.Time

	mu          sync.RWMutex
	uid         string
	tasks       []task.Task
	selection   Selection
	unsubscribe func()
}

type Option func(*Repository)

func WithLogger(l *zap.Logger) Option {
	return func(r *Repository) { r.logger = l }
}

// WithIDGenerator replaces the subtask id source.
func WithIDGenerator(fn func() string) Option {
	return func(r *Repository) { r.newID = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(r *Repository) { r.now = fn }
}

func New(g Gateway, s auth.Session, opts ...Option) *Repository {
	r := &Repository{
		gateway: g,
		session: s,
		logger:  zap.NewNop(),
		newID:   uuid.NewString,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	if u, ok := s.CurrentUser(); ok {
		r.uid = u.UID
	}
	r.unsubscribe = s.Subscribe(r.userChanged)
	return r
}

// Close stops following sign-in changes.
func (r *Repository) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
	}
}

func (r *Repository) userChanged(u *auth.User) {
	uid := ""
	if u != nil {
		uid = u.UID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if uid == r.uid {
		return
	}
	r.logger.Info("session changed, dropping cached tasks", zap.String("uid", uid))
	r.uid = uid
	r.tasks = nil
	r.selection.Clear()
}

func (r *Repository) user() (string, error) {
	u, ok := r.session.CurrentUser()
	if !ok {
		return "", task.ErrUnauthenticated
	}
	return u.UID, nil
}

// Tasks returns a copy of the cached list. It is empty while nobody is
// signed in.
func (r *Repository) Tasks() []task.Task {
	uid, err := r.user()
	if err != nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.uid != uid {
		return nil
	}
	out := make([]task.Task, len(r.tasks))
	for i, t := range r.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (r *Repository) Task(id string) (task.Task, bool) {
	uid, err := r.user()
	if err != nil {
		return task.Task{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.uid != uid {
		return task.Task{}, false
	}
	if i := r.indexOf(id); i >= 0 {
		return r.tasks[i].Clone(), true
	}
	return task.Task{}, false
}

// Select marks a cached task as the detail task. Unknown ids are ignored.
func (r *Repository) Select(id string) bool {
	if _, ok := r.Task(id); !ok {
		return false
	}
	r.selection.Select(id)
	return true
}

func (r *Repository) ClearSelection() {
	r.selection.Clear()
}

// Selected returns the current copy of the selected task.
func (r *Repository) Selected() (task.Task, bool) {
	id, ok := r.selection.ID()
	if !ok {
		return task.Task{}, false
	}
	return r.Task(id)
}

// Refresh replaces the cache with the user's pending tasks ordered by due
// date, undated last. On failure the cache is left as it was.
func (r *Repository) Refresh(ctx context.Context) error {
	uid, err := r.user()
	if err != nil {
		return err
	}
	tasks, err := r.gateway.ListTasks(ctx, uid, task.Filter{PendingOnly: true})
	if err != nil {
		r.logger.Warn("refresh failed", zap.String("uid", uid), zap.Error(err))
		return err
	}
	sortByDue(tasks)

	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.session.CurrentUser(); !ok || cur.UID != uid {
		return nil
	}
	r.uid = uid
	r.tasks = tasks
	r.logger.Debug("refreshed tasks", zap.String("uid", uid), zap.Int("count", len(tasks)))
	return nil
}

// Add creates a task and reloads the list so the cache carries the id and
// timestamps assigned by the store.
func (r *Repository) Add(ctx context.Context, f task.Fields) (string, error) {
	uid, err := r.user()
	if err != nil {
		return "", err
	}
	f, err = f.Normalize()
	if err != nil {
		return "", err
	}
	id, err := r.gateway.CreateTask(ctx, uid, f)
	if err != nil {
		r.logger.Warn("create task failed", zap.String("uid", uid), zap.Error(err))
		return "", err
	}
	r.logger.Debug("created task", zap.String("uid", uid), zap.String("task_id", id))
	if err := r.Refresh(ctx); err != nil {
		return id, fmt.Errorf("task %s created, reload failed: %w", id, err)
	}
	return id, nil
}

func (r *Repository) EditDetails(ctx context.Context, id string, p task.Patch) error {
	if _, err := r.user(); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	return r.commit(ctx, "edit", id,
		func(uid string) error { return r.gateway.UpdateTask(ctx, uid, id, p) },
		func(i int) {
			if i < 0 {
				return
			}
			p.Apply(&r.tasks[i])
			r.tasks[i].UpdatedAt = r.now()
			if p.DueDate != nil || p.ClearDueDate {
				sortByDue(r.tasks)
			}
		})
}

// Remove deletes the task and clears the selection when it pointed at it.
func (r *Repository) Remove(ctx context.Context, id string) error {
	return r.commit(ctx, "remove", id,
		func(uid string) error { return r.gateway.DeleteTask(ctx, uid, id) },
		func(i int) {
			if i >= 0 {
				r.tasks = slices.Delete(r.tasks, i, i+1)
			}
			r.selection.ClearIf(id)
		})
}

// Complete marks the task done. It stays in the cache until the next
// Refresh, which only loads pending tasks.
func (r *Repository) Complete(ctx context.Context, id string) error {
	return r.commit(ctx, "complete", id,
		func(uid string) error { return r.gateway.SetCompleted(ctx, uid, id, true) },
		func(i int) {
			if i >= 0 {
				r.tasks[i].Completed = true
				r.tasks[i].UpdatedAt = r.now()
			}
		})
}

func (r *Repository) AddSubtask(ctx context.Context, id, text string) (task.Subtask, error) {
	if _, err := r.user(); err != nil {
		return task.Subtask{}, err
	}
	text, err := task.ValidateSubtaskText(text)
	if err != nil {
		return task.Subtask{}, err
	}
	sub := task.Subtask{ID: r.newID(), Text: text}
	err = r.commit(ctx, "add subtask", id,
		func(uid string) error { return r.gateway.AppendSubtask(ctx, uid, id, sub) },
		func(i int) {
			if i >= 0 && r.tasks[i].SubtaskIndex(sub.ID) < 0 {
				r.tasks[i].Subtasks = append(r.tasks[i].Subtasks, sub)
			}
		})
	if err != nil {
		return task.Subtask{}, err
	}
	return sub, nil
}

// ToggleSubtask flips the cached completion state of a subtask and writes
// the result. The cached value is the source of truth for the flip.
func (r *Repository) ToggleSubtask(ctx context.Context, id, subtaskID string) error {
	cur, ok := r.Task(id)
	if !ok {
		if _, err := r.user(); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", task.ErrNotFound, id)
	}
	j := cur.SubtaskIndex(subtaskID)
	if j < 0 {
		return fmt.Errorf("%w: subtask %s in task %s", task.ErrNotFound, subtaskID, id)
	}
	next := !cur.Subtasks[j].Completed
	return r.commit(ctx, "toggle subtask", id,
		func(uid string) error { return r.gateway.SetSubtaskCompleted(ctx, uid, id, subtaskID, next) },
		r.patchSubtask(subtaskID, func(s *task.Subtask) { s.Completed = next }))
}

// RemoveSubtask succeeds without change when the subtask is already gone.
func (r *Repository) RemoveSubtask(ctx context.Context, id, subtaskID string) error {
	return r.commit(ctx, "remove subtask", id,
		func(uid string) error { return r.gateway.RemoveSubtask(ctx, uid, id, subtaskID) },
		func(i int) {
			if i < 0 {
				return
			}
			if j := r.tasks[i].SubtaskIndex(subtaskID); j >= 0 {
				r.tasks[i].Subtasks = slices.Delete(r.tasks[i].Subtasks, j, j+1)
			}
		})
}

func (r *Repository) EditSubtaskText(ctx context.Context, id, subtaskID, text string) error {
	if _, err := r.user(); err != nil {
		return err
	}
	text, err := task.ValidateSubtaskText(text)
	if err != nil {
		return err
	}
	return r.commit(ctx, "edit subtask", id,
		func(uid string) error { return r.gateway.UpdateSubtaskText(ctx, uid, id, subtaskID, text) },
		r.patchSubtask(subtaskID, func(s *task.Subtask) { s.Text = text }))
}

func (r *Repository) patchSubtask(subtaskID string, fn func(*task.Subtask)) func(int) {
	return func(i int) {
		if i < 0 {
			return
		}
		if j := r.tasks[i].SubtaskIndex(subtaskID); j >= 0 {
			fn(&r.tasks[i].Subtasks[j])
		}
	}
}

// commit issues the remote write and, once acknowledged, runs apply with
// the cache locked. apply receives the cached index of id, or -1 when the
// task is not cached. Results for a user who has since signed out are
// dropped.
func (r *Repository) commit(ctx context.Context, op, id string, remote func(uid string) error, apply func(i int)) error {
	uid, err := r.user()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := remote(uid); err != nil {
		r.logger.Warn("store write failed",
			zap.String("op", op), zap.String("uid", uid), zap.String("task_id", id), zap.Error(err))
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.uid != uid {
		return nil
	}
	apply(r.indexOf(id))
	r.logger.Debug("applied", zap.String("op", op), zap.String("uid", uid), zap.String("task_id", id))
	return nil
}

// callers hold r.mu
func (r *Repository) indexOf(id string) int {
	return slices.IndexFunc(r.tasks, func(t task.Task) bool { return t.ID == id })
}

// sortByDue orders by due date ascending with undated tasks last. Ties
// keep fetch order.
func sortByDue(tasks []task.Task) {
	slices.SortStableFunc(tasks, func(a, b task.Task) int {
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return 0
		case a.DueDate == nil:
			return 1
		case b.DueDate == nil:
			return -1
		}
		return a.DueDate.Compare(*b.DueDate)
	})
}
