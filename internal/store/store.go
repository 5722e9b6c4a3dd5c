// Package store defines the contract every task backend satisfies and the
// errors they report.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tgienger/kanban/internal/models"
)

var (
	// ErrUnavailable marks a network or remote failure.
	ErrUnavailable = errors.New("store unavailable")
	// ErrNotFound marks an update or delete that matched no row.
	ErrNotFound = errors.New("task not found")
)

// NewTask carries the columns written on insert. The store assigns the id and
// both timestamps.
type NewTask struct {
	Title    string
	Status   models.Status
	Position int
}

// Client is the remote tasks table.
type Client interface {
	// ListTasks returns every task ascending by position.
	ListTasks(ctx context.Context) ([]models.Task, error)
	InsertTask(ctx context.Context, task NewTask) (models.Task, error)
	// UpdateTaskStatus returns ErrNotFound when id does not exist.
	UpdateTaskStatus(ctx context.Context, id string, status models.Status, updatedAt time.Time) error
	// DeleteTask returns ErrNotFound when id does not exist.
	DeleteTask(ctx context.Context, id string) error
	Close() error
}

// Unavailable wraps a backend error so it matches ErrUnavailable.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

// NotFound reports a missing task id so it matches ErrNotFound.
func NotFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnavailable checks if the error came from an unreachable or failing store.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
