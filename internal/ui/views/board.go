package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/kanban/internal/board"
	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/ui/keys"
	"github.com/tgienger/kanban/internal/ui/styles"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// SyncedMsg is sent when a board operation has finished and the task
// state may have changed.
type SyncedMsg struct{}

// BoardView shows the three status columns
type BoardView struct {
	board  *board.Board
	styles *styles.Styles
	keys   keys.KeyMap
	help   help.Model

	width  int
	height int

	// UI state
	col    int
	cursor [3]int
	follow string // task to focus after the next sync

	// Add task modal
	adding     bool
	titleInput textinput.Model

	// Help popup (shown with ?)
	showHelpPopup bool
}

// NewBoardView creates a new board view
func NewBoardView(b *board.Board) *BoardView {
	title := textinput.New()
	title.Placeholder = "What needs to be done?"
	title.CharLimit = 200
	title.Cursor.Style = lipgloss.NewStyle().Foreground(styles.Current.Cursor)

	s := styles.NewStyles()
	h := help.New()
	h.Styles.ShortKey = s.HelpKey
	h.Styles.FullKey = s.HelpKey
	h.Styles.ShortDesc = s.HelpDesc
	h.Styles.FullDesc = s.HelpDesc

	return &BoardView{
		board:      b,
		styles:     s,
		keys:       keys.DefaultKeyMap(),
		help:       h,
		titleInput: title,
	}
}

// Init loads the tasks
func (v *BoardView) Init() tea.Cmd {
	return v.reload
}

func (v *BoardView) reload() tea.Msg {
	// Failures are logged by the board; the previous tasks stay on screen.
	_ = v.board.Reload(context.Background())
	return SyncedMsg{}
}

// run executes a board operation off the update loop.
func (v *BoardView) run(op func(ctx context.Context)) tea.Cmd {
	return func() tea.Msg {
		op(context.Background())
		return SyncedMsg{}
	}
}

// Column returns the focused column index.
func (v *BoardView) Column() int { return v.col }

// Cursor returns the card cursor within the focused column.
func (v *BoardView) Cursor() int { return v.cursor[v.col] }

// Adding reports whether the add task modal is open.
func (v *BoardView) Adding() bool { return v.adding }

// Selected returns the focused card.
func (v *BoardView) Selected() (models.Task, bool) {
	tasks := v.board.State().InColumn(models.Statuses[v.col])
	if len(tasks) == 0 {
		return models.Task{}, false
	}
	return tasks[clamp(v.cursor[v.col], 0, len(tasks)-1)], true
}

// Update handles messages
func (v *BoardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.help.Width = styles.ContentWidth(v.width)
		v.titleInput.Width = clamp(styles.ContentWidth(v.width)-16, 10, 60)
		return v, nil

	case SyncedMsg:
		v.afterSync()
		return v, nil

	case tea.KeyMsg:
		// Any key closes the help popup
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.board.DeleteConfirmation().Open() {
			return v.updateConfirmDelete(msg)
		}

		if v.adding {
			return v.updateAdding(msg)
		}

		if v.board.Drag().Active() {
			return v.updateCarrying(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *BoardView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Left):
		v.col = clamp(v.col-1, 0, len(models.Statuses)-1)
		return v, nil

	case key.Matches(msg, v.keys.Right):
		v.col = clamp(v.col+1, 0, len(models.Statuses)-1)
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.cursor[v.col] > 0 {
			v.cursor[v.col]--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		n := len(v.board.State().InColumn(models.Statuses[v.col]))
		if v.cursor[v.col] < n-1 {
			v.cursor[v.col]++
		}
		return v, nil

	case key.Matches(msg, v.keys.Toggle):
		task, ok := v.Selected()
		if !ok {
			return v, nil
		}
		v.follow = task.ID
		return v, v.run(func(ctx context.Context) { v.board.Toggle(ctx, task.ID) })

	case key.Matches(msg, v.keys.New):
		v.adding = true
		v.titleInput.Reset()
		v.titleInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Delete):
		if task, ok := v.Selected(); ok {
			v.board.DeleteConfirmation().Request(task.ID)
		}
		return v, nil

	case key.Matches(msg, v.keys.Move):
		if task, ok := v.Selected(); ok {
			v.board.Drag().Begin(task)
		}
		return v, nil

	case key.Matches(msg, v.keys.Reload):
		return v, v.reload

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

func (v *BoardView) updateCarrying(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	drag := v.board.Drag()

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Left):
		v.col = clamp(v.col-1, 0, len(models.Statuses)-1)
		drag.Hover(models.Statuses[v.col])
		return v, nil

	case key.Matches(msg, v.keys.Right):
		v.col = clamp(v.col+1, 0, len(models.Statuses)-1)
		drag.Hover(models.Statuses[v.col])
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		task, _ := drag.Task()
		target, ok := drag.Target()
		if !ok {
			return v, nil
		}
		v.follow = task.ID
		return v, v.run(func(ctx context.Context) { drag.Complete(ctx, target) })

	case key.Matches(msg, v.keys.Back):
		if task, ok := drag.Task(); ok {
			v.col = columnIndex(task.Status)
		}
		drag.Cancel()
		return v, nil
	}

	return v, nil
}

func (v *BoardView) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.closeAdding()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		title := strings.TrimSpace(v.titleInput.Value())
		if title == "" {
			return v, nil
		}
		v.closeAdding()
		v.col = columnIndex(models.StatusTodo)
		v.cursor[v.col] = len(v.board.State().InColumn(models.StatusTodo))
		return v, v.run(func(ctx context.Context) { v.board.AddTask(ctx, title) })
	}

	var cmd tea.Cmd
	v.titleInput, cmd = v.titleInput.Update(msg)
	return v, cmd
}

func (v *BoardView) closeAdding() {
	v.adding = false
	v.titleInput.Blur()
	v.titleInput.Reset()
}

func (v *BoardView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	confirm := v.board.DeleteConfirmation()
	switch {
	case key.Matches(msg, v.keys.Confirm):
		return v, v.run(confirm.Confirm)
	case key.Matches(msg, v.keys.Deny):
		confirm.Cancel()
	}
	return v, nil
}

// afterSync keeps cursors inside their columns and follows a moved card.
func (v *BoardView) afterSync() {
	state := v.board.State()
	for i, status := range models.Statuses {
		n := len(state.InColumn(status))
		v.cursor[i] = clamp(v.cursor[i], 0, max(n-1, 0))
	}

	if v.follow == "" {
		return
	}
	id := v.follow
	v.follow = ""
	task, ok := state.Find(id)
	if !ok {
		return
	}
	v.col = columnIndex(task.Status)
	for i, t := range state.InColumn(task.Status) {
		if t.ID == id {
			v.cursor[v.col] = i
			break
		}
	}
}

func columnIndex(status models.Status) int {
	for i, s := range models.Statuses {
		if s == status {
			return i
		}
	}
	return 0
}

// View renders the board
func (v *BoardView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.board.DeleteConfirmation().Open() {
		return v.renderDeleteConfirm()
	}

	if v.adding {
		return v.renderAddModal()
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(v.renderColumns())
	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *BoardView) contentWidth() int {
	if v.width <= 0 {
		return styles.MaxWidth
	}
	return styles.ContentWidth(v.width)
}

func (v *BoardView) renderHeader() string {
	s := v.styles
	title := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Kanban Board"),
		s.Subtitle.Render("Organize your daily tasks"),
	)

	if v.contentWidth() < styles.NarrowWidth {
		return title
	}

	button := s.ButtonPrimary.Render("+ New task (n)")
	gap := max(v.contentWidth()-lipgloss.Width(title)-lipgloss.Width(button), 2)
	return lipgloss.JoinHorizontal(lipgloss.Center, title, strings.Repeat(" ", gap), button)
}

func (v *BoardView) renderColumns() string {
	width := v.contentWidth()
	narrow := width < styles.NarrowWidth

	// Rounded border adds two columns to each rendered width
	colWidth := width/len(models.Statuses) - 2
	if narrow {
		colWidth = width - 2
	}
	colWidth = max(colWidth, 12)

	cols := make([]string, 0, len(models.Statuses))
	for i, status := range models.Statuses {
		cols = append(cols, v.renderColumn(i, status, colWidth, narrow))
	}

	if narrow {
		return lipgloss.JoinVertical(lipgloss.Left, cols...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

// visibleCards returns how many cards fit in a column.
func (v *BoardView) visibleCards(narrow bool) int {
	if v.height <= 0 {
		return 1 << 10
	}
	avail := v.height - 10
	if narrow {
		avail /= len(models.Statuses)
	}
	return max(avail, 3)
}

func (v *BoardView) renderColumn(i int, status models.Status, width int, narrow bool) string {
	s := v.styles
	accent := styles.ColumnAccent(status)
	tasks := v.board.State().InColumn(status)
	drag := v.board.Drag()
	carried, carrying := drag.Task()
	target, _ := drag.Target()

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		s.ColumnTitle.Foreground(accent).Render(status.Title()),
		" ",
		s.Badge.Render(strconv.Itoa(len(tasks))),
	)

	lines := []string{header, ""}
	if carrying && target == status && carried.Status != status {
		lines = append(lines, s.CardCarried.Width(width-1).Render("↳ "+carried.Title))
	}

	if len(tasks) == 0 {
		lines = append(lines, s.Empty.Render("No tasks"))
	}

	limit := v.visibleCards(narrow)
	start := 0
	if i == v.col && v.cursor[i] >= limit {
		start = v.cursor[i] - limit + 1
	}
	end := min(start+limit, len(tasks))
	for j := start; j < end; j++ {
		task := tasks[j]
		selected := i == v.col && j == v.cursor[i] && !carrying
		lines = append(lines, v.renderCard(task, selected, carrying && task.ID == carried.ID, width))
	}
	if end < len(tasks) {
		lines = append(lines, s.Muted.Render(fmt.Sprintf("… %d more", len(tasks)-end)))
	}

	border := styles.Current.Border
	if i == v.col || (carrying && target == status) {
		border = accent
	}
	return s.Column.Width(width).BorderForeground(border).Render(
		lipgloss.JoinVertical(lipgloss.Left, lines...),
	)
}

func (v *BoardView) renderCard(task models.Task, selected, carried bool, width int) string {
	s := v.styles

	mark := "○"
	title := task.Title
	if task.Status == models.StatusCompleted {
		mark = "✓"
		title = s.CardDone.Render(title)
	}
	text := mark + " " + title

	switch {
	case carried:
		return s.CardCarried.Width(width - 1).Render(text)
	case selected:
		return s.CardSelected.Width(width).Render(text)
	default:
		return s.Card.Width(width).Render(text)
	}
}

func (v *BoardView) renderHelp() string {
	s := v.styles
	if task, ok := v.board.Drag().Task(); ok {
		target, _ := v.board.Drag().Target()
		label := s.Muted.Render(fmt.Sprintf("Moving %q to %s", task.Title, target.Title()))
		return s.Help.Render(label + "  " + v.help.ShortHelpView(v.keys.CarryHelp()))
	}

	// At narrow widths, show hint to press ? for help
	if v.contentWidth() < 50 {
		return s.Help.Render(s.HelpKey.Render("?") + " help")
	}
	return s.Help.Render(v.help.View(v.keys))
}

func (v *BoardView) renderHelpPopup() string {
	s := v.styles
	content := lipgloss.JoinVertical(lipgloss.Left,
		s.ModalTitle.Render("Keyboard Shortcuts"),
		"",
		v.help.FullHelpView(v.keys.FullHelp()),
		"",
		s.Muted.Render("Press any key to close"),
	)
	return v.place(s.Modal.Render(content))
}

func (v *BoardView) renderAddModal() string {
	s := v.styles
	content := lipgloss.JoinVertical(lipgloss.Left,
		s.ModalTitle.Render("New Task"),
		"",
		s.Input.Render(v.titleInput.View()),
		"",
		s.Muted.Render("enter add • esc cancel"),
	)
	return v.place(s.Modal.Render(content))
}

func (v *BoardView) renderDeleteConfirm() string {
	s := v.styles

	name := ""
	if id, ok := v.board.DeleteConfirmation().Pending(); ok {
		if task, found := v.board.State().Find(id); found {
			name = task.Title
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.ModalTitle.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.Muted.Render(fmt.Sprintf("%q will be removed permanently.", name)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonDanger.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)
	return v.place(content)
}

func (v *BoardView) place(content string) string {
	if v.width <= 0 || v.height <= 0 {
		return content
	}
	centered := lipgloss.Place(v.contentWidth(), v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
