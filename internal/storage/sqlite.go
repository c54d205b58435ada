package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"taskdeck/internal/task"
)

// SQLiteStore keeps task documents in a single sqlite file. Each row is one
// document addressed by its full path.
type SQLiteStore struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, err
	}
	// A single connection serializes transactions, which is what makes
	// subtask appends atomic.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		db:    db,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS documents (
	path TEXT PRIMARY KEY,
	collection TEXT NOT NULL,
	body TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`
	const index = `CREATE INDEX IF NOT EXISTS documents_by_collection ON documents (collection);`
	if _, err := s.db.Exec(ddl); err != nil {
		return err
	}
	_, err := s.db.Exec(index)
	return err
}

func (s *SQLiteStore) ListTasks(ctx context.Context, uid string, f task.Filter) ([]task.Task, error) {
	col, err := CollectionPath(uid)
	if err != nil {
		return nil, err
	}
	q := `SELECT path, body FROM documents WHERE collection = ?`
	if f.PendingOnly {
		q += ` AND json_extract(body, '$.completed') = 0`
	}
	q += ` ORDER BY rowid;`

	rows, err := s.db.QueryContext(ctx, q, col)
	if err != nil {
		return nil, unavailable("list tasks", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		var path, body string
		if err := rows.Scan(&path, &body); err != nil {
			return nil, unavailable("list tasks", err)
		}
		doc, err := decodeDocument(path, body)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, doc.toTask())
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list tasks", err)
	}
	return tasks, nil
}

func (s *SQLiteStore) CreateTask(ctx context.Context, uid string, f task.Fields) (string, error) {
	f, err := f.Normalize()
	if err != nil {
		return "", err
	}
	col, err := CollectionPath(uid)
	if err != nil {
		return "", err
	}
	id := s.newID()
	now := s.now()
	body, err := json.Marshal(fromTask(f.New(id, now)))
	if err != nil {
		return "", err
	}
	stamp := now.Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (path, collection, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?);`,
		col+"/"+id, col, string(body), stamp, stamp)
	if err != nil {
		return "", unavailable("create task", err)
	}
	return id, nil
}

func (s *SQLiteStore) UpdateTask(ctx context.Context, uid, id string, p task.Patch) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.modify(ctx, uid, id, func(d *document) (bool, error) {
		t := d.toTask()
		p.Apply(&t)
		*d = fromTask(t)
		return true, nil
	})
}

func (s *SQLiteStore) SetCompleted(ctx context.Context, uid, id string, completed bool) error {
	return s.UpdateTask(ctx, uid, id, task.Patch{Completed: &completed})
}

// DeleteTask succeeds when the document is already gone.
func (s *SQLiteStore) DeleteTask(ctx context.Context, uid, id string) error {
	path, err := DocumentPath(uid, id)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE path = ?;`, path); err != nil {
		return unavailable("delete task", err)
	}
	return nil
}

func (s *SQLiteStore) AppendSubtask(ctx context.Context, uid, taskID string, sub task.Subtask) error {
	if strings.TrimSpace(sub.ID) == "" {
		return fmt.Errorf("%w: subtask id is empty", task.ErrValidation)
	}
	text, err := task.ValidateSubtaskText(sub.Text)
	if err != nil {
		return err
	}
	sub.Text = text
	return s.modify(ctx, uid, taskID, func(d *document) (bool, error) {
		for _, existing := range d.Subtasks {
			if existing.ID == sub.ID {
				return false, fmt.Errorf("%w: duplicate subtask id %s", task.ErrValidation, sub.ID)
			}
		}
		d.Subtasks = append(d.Subtasks, subtaskDoc(sub))
		return true, nil
	})
}

// RemoveSubtask is a no-op when the subtask is already absent.
func (s *SQLiteStore) RemoveSubtask(ctx context.Context, uid, taskID, subtaskID string) error {
	return s.modify(ctx, uid, taskID, func(d *document) (bool, error) {
		for i, existing := range d.Subtasks {
			if existing.ID == subtaskID {
				d.Subtasks = append(d.Subtasks[:i], d.Subtasks[i+1:]...)
				return true, nil
			}
		}
		return false, nil
	})
}

func (s *SQLiteStore) UpdateSubtaskText(ctx context.Context, uid, taskID, subtaskID, text string) error {
	text, err := task.ValidateSubtaskText(text)
	if err != nil {
		return err
	}
	return s.modifySubtask(ctx, uid, taskID, subtaskID, func(sub *subtaskDoc) {
		sub.Text = text
	})
}

func (s *SQLiteStore) SetSubtaskCompleted(ctx context.Context, uid, taskID, subtaskID string, completed bool) error {
	return s.modifySubtask(ctx, uid, taskID, subtaskID, func(sub *subtaskDoc) {
		sub.Completed = completed
	})
}

func (s *SQLiteStore) modifySubtask(ctx context.Context, uid, taskID, subtaskID string, fn func(*subtaskDoc)) error {
	return s.modify(ctx, uid, taskID, func(d *document) (bool, error) {
		for i := range d.Subtasks {
			if d.Subtasks[i].ID == subtaskID {
				fn(&d.Subtasks[i])
				return true, nil
			}
		}
		return false, fmt.Errorf("%w: subtask %s in task %s", task.ErrNotFound, subtaskID, taskID)
	})
}

// modify runs a read-modify-write of one document inside a transaction. fn
// reports whether the document changed; unchanged documents are not written.
func (s *SQLiteStore) modify(ctx context.Context, uid, id string, fn func(*document) (bool, error)) error {
	path, err := DocumentPath(uid, id)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin", err)
	}
	defer tx.Rollback()

	var body string
	err = tx.QueryRowContext(ctx, `SELECT body FROM documents WHERE path = ?;`, path).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", task.ErrNotFound, path)
	}
	if err != nil {
		return unavailable("read task", err)
	}
	doc, err := decodeDocument(path, body)
	if err != nil {
		return err
	}
	changed, err := fn(&doc)
	if err != nil || !changed {
		return err
	}
	doc.ID = id
	doc.UpdatedAt = s.now()
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `UPDATE documents SET body = ?, updated_at = ? WHERE path = ?;`,
		string(data), doc.UpdatedAt.Format(time.RFC3339Nano), path)
	if err != nil {
		return unavailable("write task", err)
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit", err)
	}
	return nil
}

func decodeDocument(path, body string) (document, error) {
	var doc document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return doc, fmt.Errorf("decode %s: %w", path, err)
	}
	doc.ID = path[strings.LastIndex(path, "/")+1:]
	return doc, nil
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	q.Set("_txlock", "immediate")
	u.RawQuery = q.Encode()
	return u.String()
}
