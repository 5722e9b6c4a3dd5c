// Package storetest provides a store.Client that records calls and can be
// told to fail, for tests of the layers above the store.
package storetest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/store"
)

// Operation names recorded by Recorder.
const (
	OpList   = "list"
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ErrInjected is the cause wrapped by failures set with Fail.
var ErrInjected = errors.New("injected failure")

// Recorder wraps an in-memory store and records every call.
type Recorder struct {
	*store.Memory

	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

// Ensure Recorder implements store.Client interface
var _ store.Client = (*Recorder)(nil)

// New returns a Recorder over an empty in-memory store.
func New() *Recorder {
	return &Recorder{Memory: store.NewMemory(), fail: map[string]error{}}
}

// Fail makes every following call to op return an unavailable error.
func (r *Recorder) Fail(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail[op] = store.Unavailable(op, ErrInjected)
}

// Recover clears all injected failures.
func (r *Recorder) Recover() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = map[string]error{}
}

// Calls returns the operations seen so far.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns how many times op was called.
func (r *Recorder) Count(op string) int {
	n := 0
	for _, c := range r.Calls() {
		if c == op {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// Seed inserts tasks directly, without recording.
func (r *Recorder) Seed(ctx context.Context, tasks ...store.NewTask) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		created, err := r.Memory.InsertTask(ctx, t)
		if err != nil {
			panic(err)
		}
		out = append(out, created)
	}
	return out
}

func (r *Recorder) record(op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, op)
	return r.fail[op]
}

func (r *Recorder) ListTasks(ctx context.Context) ([]models.Task, error) {
	if err := r.record(OpList); err != nil {
		return nil, err
	}
	return r.Memory.ListTasks(ctx)
}

func (r *Recorder) InsertTask(ctx context.Context, task store.NewTask) (models.Task, error) {
	if err := r.record(OpInsert); err != nil {
		return models.Task{}, err
	}
	return r.Memory.InsertTask(ctx, task)
}

func (r *Recorder) UpdateTaskStatus(ctx context.Context, id string, status models.Status, updatedAt time.Time) error {
	if err := r.record(OpUpdate); err != nil {
		return err
	}
	return r.Memory.UpdateTaskStatus(ctx, id, status, updatedAt)
}

func (r *Recorder) DeleteTask(ctx context.Context, id string) error {
	if err := r.record(OpDelete); err != nil {
		return err
	}
	return r.Memory.DeleteTask(ctx, id)
}
