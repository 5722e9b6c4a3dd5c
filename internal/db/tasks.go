package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/store"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	var status string
	if err := row.Scan(&t.ID, &t.Title, &status, &t.Position, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return models.Task{}, err
	}
	s, err := models.ParseStatus(status)
	if err != nil {
		return models.Task{}, err
	}
	t.Status = s
	return t, nil
}

// InsertTask creates a new task
func (db *DB) InsertTask(ctx context.Context, task store.NewTask) (models.Task, error) {
	id := uuid.New().String()
	now := db.now()

	_, err := db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, status, position, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)
	`, id, task.Title, string(task.Status), task.Position, now, now)
	if err != nil {
		return models.Task{}, store.Unavailable("insert task", err)
	}

	return db.GetTask(ctx, id)
}

// GetTask retrieves a task by ID
func (db *DB) GetTask(ctx context.Context, id string) (models.Task, error) {
	t, err := scanTask(db.QueryRowContext(ctx, `
		SELECT id, title, status, position, created_at, updated_at
		FROM tasks WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return models.Task{}, store.NotFound(id)
	}
	if err != nil {
		return models.Task{}, store.Unavailable("get task", err)
	}
	return t, nil
}

// ListTasks returns all tasks ordered by position, then insertion time
func (db *DB) ListTasks(ctx context.Context) ([]models.Task, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, title, status, position, created_at, updated_at
		FROM tasks
		ORDER BY position ASC, created_at ASC, rowid ASC
	`)
	if err != nil {
		return nil, store.Unavailable("list tasks", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, store.Unavailable("list tasks", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Unavailable("list tasks", err)
	}

	return tasks, nil
}

// UpdateTaskStatus moves a task to another column
func (db *DB) UpdateTaskStatus(ctx context.Context, id string, status models.Status, updatedAt time.Time) error {
	result, err := db.ExecContext(ctx, `
		UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?
	`, string(status), updatedAt.UTC(), id)
	if err != nil {
		return store.Unavailable("update task", err)
	}
	return affected(result, id, "update task")
}

// DeleteTask deletes a task
func (db *DB) DeleteTask(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return store.Unavailable("delete task", err)
	}
	return affected(result, id, "delete task")
}

func affected(result sql.Result, id, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return store.Unavailable(op, err)
	}
	if n == 0 {
		return store.NotFound(id)
	}
	return nil
}
