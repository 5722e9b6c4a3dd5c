package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/kanban/internal/board"
	"github.com/tgienger/kanban/internal/ui/views"
)

// App is the root model; it hosts the board view.
type App struct {
	board     *board.Board
	boardView *views.BoardView
}

// Creates a new application
func NewApp(b *board.Board) *App {
	return &App{
		board:     b,
		boardView: views.NewBoardView(b),
	}
}

func (a *App) Init() tea.Cmd {
	return a.boardView.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// ctrl+c quits from any mode, including text entry
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyCtrlC {
		a.board.Drag().Cancel()
		return a, tea.Quit
	}

	_, cmd := a.boardView.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	return a.boardView.View()
}
