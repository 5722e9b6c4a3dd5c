package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tgienger/kanban/internal/models"
)

// Memory provides in-process task storage
type Memory struct {
	mu    sync.RWMutex
	tasks []models.Task
	now   func() time.Time
}

// Ensure Memory implements Client interface
var _ Client = (*Memory)(nil)

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{now: func() time.Time { return time.Now().UTC() }}
}

// Close is a no-op for the in-memory store
func (m *Memory) Close() error {
	return nil
}

// ListTasks returns all tasks by position, ties in insertion order
func (m *Memory) ListTasks(ctx context.Context) ([]models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Task, len(m.tasks))
	copy(out, m.tasks)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// InsertTask stores a new task with a generated id
func (m *Memory) InsertTask(ctx context.Context, task NewTask) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	t := models.Task{
		ID:        uuid.New().String(),
		Title:     task.Title,
		Status:    task.Status,
		Position:  task.Position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.tasks = append(m.tasks, t)
	return t, nil
}

// UpdateTaskStatus sets the status and updated_at of one task
func (m *Memory) UpdateTaskStatus(ctx context.Context, id string, status models.Status, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.tasks {
		if m.tasks[i].ID == id {
			m.tasks[i].Status = status
			m.tasks[i].UpdatedAt = updatedAt
			return nil
		}
	}
	return NotFound(id)
}

// DeleteTask removes one task
func (m *Memory) DeleteTask(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.tasks {
		if m.tasks[i].ID == id {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return nil
		}
	}
	return NotFound(id)
}
