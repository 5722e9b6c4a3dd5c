// Package repository implements the task operations the board performs
// against a store.Client.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tgienger/kanban/internal/logger"
	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/store"
)

// ErrEmptyTitle is returned by Create when the title is blank.
var ErrEmptyTitle = errors.New("task title is empty")

// Repository wraps a store client with list, create, update-status and delete.
type Repository struct {
	store store.Client
	log   *logger.Logger
	now   func() time.Time
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock replaces the clock used for updated_at.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// New creates a repository over client.
func New(client store.Client, log *logger.Logger, opts ...Option) *Repository {
	if log == nil {
		log = logger.Default()
	}
	r := &Repository{
		store: client,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ListAllOrdered returns every task ascending by position.
func (r *Repository) ListAllOrdered(ctx context.Context) ([]models.Task, error) {
	tasks, err := r.store.ListTasks(ctx)
	if err != nil {
		r.log.WithError(err).Warn("Failed to load tasks")
		return nil, err
	}
	r.log.Debug("Loaded tasks", zap.Int("count", len(tasks)))
	return tasks, nil
}

// Create inserts a todo task placed after the todo tasks in current, the
// list the caller has loaded.
func (r *Repository) Create(ctx context.Context, title string, current []models.Task) (models.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Task{}, ErrEmptyTitle
	}

	position := models.NextPosition(current)
	task, err := r.store.InsertTask(ctx, store.NewTask{
		Title:    title,
		Status:   models.StatusTodo,
		Position: position,
	})
	if err != nil {
		r.log.WithError(err).Warn("Failed to create task", zap.String("title", title))
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}
	r.log.WithTaskID(task.ID).Debug("Created task", zap.Int("position", task.Position))
	return task, nil
}

// UpdateStatus moves a task to status and refreshes updated_at.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	if !status.Valid() {
		return fmt.Errorf("update task %s: %w: %q", id, models.ErrInvalidStatus, status)
	}
	log := r.log.WithTaskID(id)
	if err := r.store.UpdateTaskStatus(ctx, id, status, r.now()); err != nil {
		log.WithError(err).Warn("Failed to update task status", zap.String("status", string(status)))
		return fmt.Errorf("update task %s: %w", id, err)
	}
	log.Debug("Updated task status", zap.String("status", string(status)))
	return nil
}

// Delete removes a task. A task that is already gone is not an error.
func (r *Repository) Delete(ctx context.Context, id string) error {
	log := r.log.WithTaskID(id)
	err := r.store.DeleteTask(ctx, id)
	switch {
	case err == nil:
		log.Debug("Deleted task")
		return nil
	case store.IsNotFound(err):
		log.Debug("Task already deleted")
		return nil
	default:
		log.WithError(err).Warn("Failed to delete task")
		return fmt.Errorf("delete task %s: %w", id, err)
	}
}
