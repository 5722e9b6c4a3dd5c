package board

import (
	"context"
	"sync"
)

// DeleteConfirmation holds a pending delete until the user confirms it.
type DeleteConfirmation struct {
	board *Board

	mu     sync.Mutex
	taskID string
	open   bool
}

// Request records the intent to delete id and opens the dialog.
func (c *DeleteConfirmation) Request(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.taskID = id
	c.open = true
}

// Open reports whether the dialog is showing.
func (c *DeleteConfirmation) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Pending returns the task awaiting confirmation.
func (c *DeleteConfirmation) Pending() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open || c.taskID == "" {
		return "", false
	}
	return c.taskID, true
}

// Confirm deletes the pending task and syncs. The dialog closes whatever
// the outcome.
func (c *DeleteConfirmation) Confirm(ctx context.Context) {
	c.mu.Lock()
	id, ok := c.taskID, c.open && c.taskID != ""
	c.taskID = ""
	c.open = false
	c.mu.Unlock()

	if !ok {
		return
	}
	c.board.deleteTask(ctx, id)
}

// Cancel closes the dialog without touching the store.
func (c *DeleteConfirmation) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.taskID = ""
	c.open = false
}
