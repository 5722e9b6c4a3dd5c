// Package postgres stores tasks in a hosted PostgreSQL tasks table, the layout
// used by Supabase projects.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/store"
)

// Schema creates the tasks table when it is missing.
const Schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	title text NOT NULL CHECK (title <> ''),
	status text NOT NULL DEFAULT 'todo' CHECK (status IN ('todo', 'in_progress', 'completed')),
	position integer NOT NULL DEFAULT 0,
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_tasks_position ON tasks(position);
`

const taskColumns = "id::text, title, status, position, created_at, updated_at"

// execer is the subset of pgxpool.Pool the store uses.
type execer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store reads and writes tasks through a pgx pool
type Store struct {
	db    execer
	close func()
}

// Ensure Store implements store.Client interface
var _ store.Client = (*Store)(nil)

// Connect opens a pool against dsn and verifies it with a ping.
// When migrate is set the tasks table is created if missing.
func Connect(ctx context.Context, dsn string, migrate bool) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, store.Unavailable("ping", err)
	}
	if migrate {
		if _, err := pool.Exec(ctx, Schema); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return &Store{db: pool, close: pool.Close}, nil
}

// Close releases the pool
func (s *Store) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}

func scanTask(row pgx.Row) (models.Task, error) {
	var t models.Task
	var status string
	if err := row.Scan(&t.ID, &t.Title, &status, &t.Position, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return models.Task{}, err
	}
	st, err := models.ParseStatus(status)
	if err != nil {
		return models.Task{}, err
	}
	t.Status = st
	return t, nil
}

// ListTasks returns every task ascending by position
func (s *Store) ListTasks(ctx context.Context) ([]models.Task, error) {
	rows, err := s.db.Query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY position ASC, created_at ASC, id ASC`)
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

// InsertTask inserts a row and returns it with the server-assigned id and timestamps
func (s *Store) InsertTask(ctx context.Context, task store.NewTask) (models.Task, error) {
	t, err := scanTask(s.db.QueryRow(ctx,
		`INSERT INTO tasks (title, status, position) VALUES ($1, $2, $3) RETURNING `+taskColumns,
		task.Title, string(task.Status), task.Position))
	if err != nil {
		return models.Task{}, store.Unavailable("insert task", err)
	}
	return t, nil
}

// UpdateTaskStatus sets status and updated_at for one row
func (s *Store) UpdateTaskStatus(ctx context.Context, id string, status models.Status, updatedAt time.Time) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE tasks SET status = $1, updated_at = $2 WHERE id::text = $3`,
		string(status), updatedAt, id)
	return commandResult(tag, err, id, "update task")
}

// DeleteTask removes one row
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM tasks WHERE id::text = $1`, id)
	return commandResult(tag, err, id, "delete task")
}

func commandResult(tag pgconn.CommandTag, err error, id, op string) error {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.NotFound(id)
		}
		return store.Unavailable(op, err)
	}
	if tag.RowsAffected() == 0 {
		return store.NotFound(id)
	}
	return nil
}
