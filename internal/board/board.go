// Package board keeps the in-memory view of the task list in step with the
// store and implements the user interactions that change it.
package board

import (
	"context"

	"go.uber.org/zap"

	"github.com/tgienger/kanban/internal/logger"
	"github.com/tgienger/kanban/internal/models"
)

// Repository is the subset of task operations the board needs.
type Repository interface {
	ListAllOrdered(ctx context.Context) ([]models.Task, error)
	Create(ctx context.Context, title string, current []models.Task) (models.Task, error)
	UpdateStatus(ctx context.Context, id string, status models.Status) error
	Delete(ctx context.Context, id string) error
}

// Board owns the task state and routes every write through its SyncPolicy.
// Handler failures are logged and swallowed.
type Board struct {
	repo   Repository
	state  *State
	policy SyncPolicy
	log    *logger.Logger

	drag    *Drag
	confirm *DeleteConfirmation
}

// Option configures a Board.
type Option func(*Board)

// WithSyncPolicy replaces the default FullReload policy.
func WithSyncPolicy(p SyncPolicy) Option {
	return func(b *Board) { b.policy = p }
}

// WithLogger sets the board logger.
func WithLogger(log *logger.Logger) Option {
	return func(b *Board) { b.log = log }
}

// New creates a board over repo with an empty state.
func New(repo Repository, opts ...Option) *Board {
	b := &Board{
		repo:   repo,
		state:  &State{},
		policy: FullReload{},
		log:    logger.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.drag = &Drag{board: b}
	b.confirm = &DeleteConfirmation{board: b}
	return b
}

// State returns the board state.
func (b *Board) State() *State { return b.state }

// Drag returns the board's drag gesture.
func (b *Board) Drag() *Drag { return b.drag }

// DeleteConfirmation returns the board's delete dialog state.
func (b *Board) DeleteConfirmation() *DeleteConfirmation { return b.confirm }

// Reload fetches every task and replaces the state. On failure the state
// is left as it was.
func (b *Board) Reload(ctx context.Context) error {
	tasks, err := b.repo.ListAllOrdered(ctx)
	if err != nil {
		b.log.WithError(err).Error("Failed to reload tasks")
		return err
	}
	b.state.Replace(tasks)
	return nil
}

// AddTask creates a todo task with title and syncs.
func (b *Board) AddTask(ctx context.Context, title string) {
	current := b.state.Tasks()
	err := b.policy.Apply(ctx, b, func(ctx context.Context) error {
		_, err := b.repo.Create(ctx, title, current)
		return err
	})
	if err != nil {
		b.log.WithError(err).Error("Failed to add task", zap.String("title", title))
	}
}

// Toggle advances a task to its next status. Unknown ids are ignored.
func (b *Board) Toggle(ctx context.Context, id string) {
	task, ok := b.state.Find(id)
	if !ok {
		return
	}
	b.setStatus(ctx, task, models.NextStatus(task.Status))
}

func (b *Board) setStatus(ctx context.Context, task models.Task, status models.Status) {
	err := b.policy.Apply(ctx, b, func(ctx context.Context) error {
		return b.repo.UpdateStatus(ctx, task.ID, status)
	})
	if err != nil {
		b.log.WithTaskID(task.ID).WithError(err).Error("Failed to update task status",
			zap.String("from", string(task.Status)),
			zap.String("to", string(status)))
	}
}

func (b *Board) deleteTask(ctx context.Context, id string) {
	err := b.policy.Apply(ctx, b, func(ctx context.Context) error {
		return b.repo.Delete(ctx, id)
	})
	if err != nil {
		b.log.WithTaskID(id).WithError(err).Error("Failed to delete task")
	}
}
