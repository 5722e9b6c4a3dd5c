package board

import "context"

// Mutation is a single store write.
type Mutation func(ctx context.Context) error

// SyncPolicy decides how the board catches up with the store after a write.
type SyncPolicy interface {
	Apply(ctx context.Context, b *Board, m Mutation) error
}

// FullReload runs the mutation and, when it succeeds, reloads the whole
// task list. Nothing is applied locally ahead of the store.
type FullReload struct{}

// Apply runs m and reloads the board only when m succeeds.
func (FullReload) Apply(ctx context.Context, b *Board, m Mutation) error {
	if err := m(ctx); err != nil {
		return err
	}
	return b.Reload(ctx)
}
