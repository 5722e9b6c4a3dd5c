package views

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/kanban/internal/board"
	"github.com/tgienger/kanban/internal/logger"
	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/repository"
	"github.com/tgienger/kanban/internal/store"
	"github.com/tgienger/kanban/internal/store/storetest"
)

func newTestView(t *testing.T, width int, seed ...store.NewTask) (*BoardView, *storetest.Recorder) {
	t.Helper()
	rec := storetest.New()
	rec.Seed(context.Background(), seed...)
	b := board.New(repository.New(rec, logger.NewNop()), board.WithLogger(logger.NewNop()))

	v := NewBoardView(b)
	v.Update(tea.WindowSizeMsg{Width: width, Height: 40})
	drain(v, v.Init())
	rec.Reset()
	return v, rec
}

// drain runs cmd and feeds a resulting sync back into the view.
func drain(v *BoardView, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg, ok := cmd().(SyncedMsg); ok {
		v.Update(msg)
	}
}

func press(v *BoardView, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = v.Update(keyMsg(k))
	}
	return cmd
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func typeText(v *BoardView, text string) {
	for _, r := range text {
		v.Update(keyMsg(string(r)))
	}
}

func statusOf(t *testing.T, v *BoardView, title string) models.Status {
	t.Helper()
	for _, task := range v.board.State().Tasks() {
		if task.Title == title {
			return task.Status
		}
	}
	t.Fatalf("task %q not found", title)
	return ""
}

func TestBoardView_RendersColumns(t *testing.T) {
	v, _ := newTestView(t, 120,
		store.NewTask{Title: "Write report", Status: models.StatusTodo},
		store.NewTask{Title: "Ship it", Status: models.StatusCompleted, Position: 1},
	)

	out := v.View()
	for _, want := range []string{"Kanban Board", "Organize your daily tasks", "To Do", "In Progress", "Completed", "Write report", "✓ Ship it", "No tasks"} {
		assert.Contains(t, out, want)
	}
}

func TestBoardView_NarrowShowsHelpHint(t *testing.T) {
	v, _ := newTestView(t, 40)

	out := v.View()
	assert.Contains(t, out, "? help")
	assert.Contains(t, out, "To Do")
}

func TestBoardView_AddTask(t *testing.T) {
	v, rec := newTestView(t, 120)

	press(v, "n")
	require.True(t, v.Adding())
	assert.Contains(t, v.View(), "New Task")

	typeText(v, "Buy milk")
	drain(v, press(v, "enter"))

	assert.False(t, v.Adding())
	assert.Equal(t, []string{storetest.OpInsert, storetest.OpList}, rec.Calls())
	task, ok := v.Selected()
	require.True(t, ok)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, models.StatusTodo, task.Status)
	assert.Equal(t, 0, task.Position)
}

func TestBoardView_AddBlankTitleStaysOpen(t *testing.T) {
	v, rec := newTestView(t, 120)

	press(v, "n")
	typeText(v, "   ")
	cmd := press(v, "enter")

	assert.Nil(t, cmd)
	assert.True(t, v.Adding())
	assert.Empty(t, rec.Calls())
}

func TestBoardView_AddEscCloses(t *testing.T) {
	v, rec := newTestView(t, 120)

	press(v, "n")
	typeText(v, "later")
	press(v, "esc")

	assert.False(t, v.Adding())
	assert.Empty(t, rec.Calls())
}

func TestBoardView_ToggleFollowsCard(t *testing.T) {
	v, _ := newTestView(t, 120, store.NewTask{Title: "Buy milk", Status: models.StatusTodo})

	drain(v, press(v, " "))
	assert.Equal(t, models.StatusInProgress, statusOf(t, v, "Buy milk"))
	assert.Equal(t, 1, v.Column())

	drain(v, press(v, "x"))
	assert.Equal(t, models.StatusCompleted, statusOf(t, v, "Buy milk"))
	assert.Equal(t, 2, v.Column())

	drain(v, press(v, " "))
	assert.Equal(t, models.StatusTodo, statusOf(t, v, "Buy milk"))
	assert.Equal(t, 0, v.Column())
}

func TestBoardView_DragToCompleted(t *testing.T) {
	v, rec := newTestView(t, 120, store.NewTask{Title: "Report", Status: models.StatusTodo})

	press(v, "m")
	require.True(t, v.board.Drag().Active())
	press(v, "right", "right")
	assert.Contains(t, v.View(), `Moving "Report" to Completed`)

	drain(v, press(v, "enter"))

	assert.Equal(t, models.StatusCompleted, statusOf(t, v, "Report"))
	assert.False(t, v.board.Drag().Active())
	assert.Equal(t, 2, v.Column())
	assert.Equal(t, []string{storetest.OpUpdate, storetest.OpList}, rec.Calls())
}

func TestBoardView_DropOnSameColumn(t *testing.T) {
	v, rec := newTestView(t, 120, store.NewTask{Title: "Report", Status: models.StatusTodo})

	press(v, "m", "right", "left")
	drain(v, press(v, "enter"))

	assert.Empty(t, rec.Calls())
	assert.False(t, v.board.Drag().Active())
	assert.Equal(t, models.StatusTodo, statusOf(t, v, "Report"))
}

func TestBoardView_DragEscCancels(t *testing.T) {
	v, rec := newTestView(t, 120, store.NewTask{Title: "Report", Status: models.StatusTodo})

	press(v, "m", "right", "esc")

	assert.False(t, v.board.Drag().Active())
	assert.Equal(t, 0, v.Column())
	assert.Empty(t, rec.Calls())
}

func TestBoardView_DeleteRequiresConfirmation(t *testing.T) {
	v, rec := newTestView(t, 120,
		store.NewTask{Title: "Keep", Status: models.StatusTodo, Position: 0},
		store.NewTask{Title: "Drop", Status: models.StatusTodo, Position: 1},
	)

	press(v, "down", "d")
	assert.Contains(t, v.View(), "Delete Task?")
	assert.Contains(t, v.View(), `"Drop"`)

	press(v, "n")
	assert.False(t, v.board.DeleteConfirmation().Open())
	assert.Empty(t, rec.Calls())
	assert.Equal(t, 2, v.board.State().Len())

	press(v, "d")
	drain(v, press(v, "y"))

	assert.Equal(t, []string{storetest.OpDelete, storetest.OpList}, rec.Calls())
	require.Equal(t, 1, v.board.State().Len())
	assert.Equal(t, "Keep", v.board.State().Tasks()[0].Title)
	assert.Equal(t, 0, v.Cursor())
}

func TestBoardView_HelpPopup(t *testing.T) {
	v, _ := newTestView(t, 120)

	press(v, "?")
	assert.Contains(t, v.View(), "Keyboard Shortcuts")

	press(v, "j")
	assert.NotContains(t, v.View(), "Keyboard Shortcuts")
}

func TestBoardView_Navigation(t *testing.T) {
	v, _ := newTestView(t, 120,
		store.NewTask{Title: "a", Status: models.StatusTodo, Position: 0},
		store.NewTask{Title: "b", Status: models.StatusTodo, Position: 1},
	)

	press(v, "left")
	assert.Equal(t, 0, v.Column())

	press(v, "down", "down", "down")
	assert.Equal(t, 1, v.Cursor())

	press(v, "l", "l", "l")
	assert.Equal(t, 2, v.Column())
	_, ok := v.Selected()
	assert.False(t, ok)

	press(v, "h", "h", "k")
	assert.Equal(t, 0, v.Cursor())
}

func TestBoardView_ActionsOnEmptyColumn(t *testing.T) {
	v, rec := newTestView(t, 120)

	assert.Nil(t, press(v, " "))
	press(v, "d", "m")

	assert.False(t, v.board.DeleteConfirmation().Open())
	assert.False(t, v.board.Drag().Active())
	assert.Empty(t, rec.Calls())
}

func TestBoardView_ReloadKeepsStateOnFailure(t *testing.T) {
	v, rec := newTestView(t, 120, store.NewTask{Title: "a", Status: models.StatusTodo})
	rec.Fail(storetest.OpList)

	drain(v, press(v, "r"))

	assert.Equal(t, 1, v.board.State().Len())
	assert.Contains(t, v.View(), "a")
}
