package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/kanban/internal/models"
)

func TestMemory_InsertAssignsIDAndTimestamps(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	task, err := m.InsertTask(ctx, NewTask{Title: "Buy milk", Status: models.StatusTodo, Position: 0})
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.False(t, task.CreatedAt.IsZero())
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)
}

func TestMemory_ListOrdersByPositionStable(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	b, _ := m.InsertTask(ctx, NewTask{Title: "b", Status: models.StatusTodo, Position: 1})
	a, _ := m.InsertTask(ctx, NewTask{Title: "a", Status: models.StatusCompleted, Position: 0})
	c, _ := m.InsertTask(ctx, NewTask{Title: "c", Status: models.StatusTodo, Position: 0})

	tasks, err := m.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, []string{a.ID, c.ID, b.ID}, []string{tasks[0].ID, tasks[1].ID, tasks[2].ID})
}

func TestMemory_UpdateAndDeleteMissing(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	err := m.UpdateTaskStatus(ctx, "nope", models.StatusCompleted, time.Now())
	assert.True(t, IsNotFound(err))

	err = m.DeleteTask(ctx, "nope")
	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnavailable(err))
}

func TestMemory_UpdateStatus(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	task, _ := m.InsertTask(ctx, NewTask{Title: "x", Status: models.StatusTodo, Position: 3})

	at := task.UpdatedAt.Add(time.Minute)
	require.NoError(t, m.UpdateTaskStatus(ctx, task.ID, models.StatusInProgress, at))

	tasks, _ := m.ListTasks(ctx)
	require.Len(t, tasks, 1)
	assert.Equal(t, models.StatusInProgress, tasks[0].Status)
	assert.Equal(t, 3, tasks[0].Position)
	assert.True(t, tasks[0].UpdatedAt.Equal(at))
}

func TestUnavailable_Wraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable("list tasks", cause)

	assert.True(t, IsUnavailable(err))
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, Unavailable("noop", nil))
}
