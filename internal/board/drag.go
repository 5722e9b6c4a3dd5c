package board

import (
	"context"
	"sync"

	"github.com/tgienger/kanban/internal/models"
)

// Drag is the pick up, hover and drop gesture that moves a card to any
// column. The carried task is a snapshot taken at Begin.
type Drag struct {
	board *Board

	mu     sync.Mutex
	task   *models.Task
	target models.Status
}

// Begin picks up task.
func (d *Drag) Begin(task models.Task) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.task = &task
	d.target = task.Status
}

// Hover marks status as the column the card is over. Ignored when nothing
// is carried.
func (d *Drag) Hover(status models.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.task == nil || !status.Valid() {
		return
	}
	d.target = status
}

// Active reports whether a task is being carried.
func (d *Drag) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.task != nil
}

// Task returns the carried task.
func (d *Drag) Task() (models.Task, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.task == nil {
		return models.Task{}, false
	}
	return *d.task, true
}

// Target returns the hovered column.
func (d *Drag) Target() (models.Status, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.task == nil {
		return "", false
	}
	return d.target, true
}

// Complete drops the carried task on status. Nothing is written when no
// task is carried or when status is the column it came from. The gesture
// ends either way.
func (d *Drag) Complete(ctx context.Context, status models.Status) {
	d.mu.Lock()
	task := d.task
	d.task = nil
	d.target = ""
	d.mu.Unlock()

	if task == nil || task.Status == status {
		return
	}
	d.board.setStatus(ctx, *task, status)
}

// Cancel drops the carried task without writing.
func (d *Drag) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.task = nil
	d.target = ""
}
