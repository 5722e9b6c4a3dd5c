package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStatus_Cycle(t *testing.T) {
	assert.Equal(t, StatusInProgress, NextStatus(StatusTodo))
	assert.Equal(t, StatusCompleted, NextStatus(StatusInProgress))
	assert.Equal(t, StatusTodo, NextStatus(StatusCompleted))

	for _, s := range Statuses {
		assert.Equal(t, s, NextStatus(NextStatus(NextStatus(s))), "three toggles from %s", s)
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses {
		got, err := ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
		assert.True(t, s.Valid())
	}

	_, err := ParseStatus("done")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.False(t, Status("").Valid())
}

func TestNextPosition(t *testing.T) {
	tests := []struct {
		name  string
		tasks []Task
		want  int
	}{
		{name: "empty board", tasks: nil, want: 0},
		{
			name:  "only other columns",
			tasks: []Task{{Status: StatusCompleted, Position: 7}, {Status: StatusInProgress, Position: 3}},
			want:  0,
		},
		{
			name:  "two todo tasks",
			tasks: []Task{{Status: StatusTodo, Position: 0}, {Status: StatusTodo, Position: 1}},
			want:  2,
		},
		{
			name:  "gap after delete is not compacted",
			tasks: []Task{{Status: StatusTodo, Position: 4}, {Status: StatusCompleted, Position: 9}},
			want:  5,
		},
		{
			name:  "negative positions floor at zero",
			tasks: []Task{{Status: StatusTodo, Position: -4}},
			want:  0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextPosition(tt.tasks))
		})
	}
}

func TestFilterByStatus_KeepsOrder(t *testing.T) {
	tasks := []Task{
		{ID: "a", Status: StatusTodo},
		{ID: "b", Status: StatusCompleted},
		{ID: "c", Status: StatusTodo},
	}
	todo := FilterByStatus(tasks, StatusTodo)
	require.Len(t, todo, 2)
	assert.Equal(t, "a", todo[0].ID)
	assert.Equal(t, "c", todo[1].ID)
	assert.Empty(t, FilterByStatus(tasks, StatusInProgress))
}
