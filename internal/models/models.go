package models

import (
	"errors"
	"fmt"
	"time"
)

// Status is the column a task lives in
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every status in column order
var Statuses = []Status{StatusTodo, StatusInProgress, StatusCompleted}

// ErrInvalidStatus is returned when a value outside the enumeration is parsed
var ErrInvalidStatus = errors.New("invalid task status")

// ParseStatus converts a stored value into a Status
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Valid reports whether s is one of the three column statuses
func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// NextStatus returns the status the toggle control moves a task to.
// todo -> in_progress -> completed -> todo
func NextStatus(current Status) Status {
	switch current {
	case StatusTodo:
		return StatusInProgress
	case StatusInProgress:
		return StatusCompleted
	default:
		return StatusTodo
	}
}

// Title returns the column heading for a status
func (s Status) Title() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	}
	return string(s)
}

// Task represents a single card on the board
type Task struct {
	ID        string
	Title     string
	Status    Status
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NextPosition returns the position for a new todo task: one past the highest
// position among current todo tasks, or 0 when there are none.
func NextPosition(tasks []Task) int {
	highest := -1
	for _, t := range tasks {
		if t.Status == StatusTodo && t.Position > highest {
			highest = t.Position
		}
	}
	return highest + 1
}

// FilterByStatus returns the tasks in the given column, keeping their order
func FilterByStatus(tasks []Task, status Status) []Task {
	var out []Task
	for _, t := range tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}
