package board

import (
	"sync"

	"github.com/tgienger/kanban/internal/models"
)

// State holds the last task list loaded from the store. It is only ever
// replaced as a whole.
type State struct {
	mu    sync.RWMutex
	tasks []models.Task
}

// Replace swaps in a freshly loaded list.
func (s *State) Replace(tasks []models.Task) {
	next := make([]models.Task, len(tasks))
	copy(next, tasks)

	s.mu.Lock()
	s.tasks = next
	s.mu.Unlock()
}

// Tasks returns a copy of every task in store order.
func (s *State) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// InColumn returns the tasks with the given status, in store order.
func (s *State) InColumn(status models.Status) []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.FilterByStatus(s.tasks, status)
}

// Find looks a task up by id.
func (s *State) Find(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

// Counts returns the number of tasks per status.
func (s *State) Counts() map[models.Status]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[models.Status]int, len(models.Statuses))
	for _, status := range models.Statuses {
		counts[status] = 0
	}
	for _, t := range s.tasks {
		counts[t.Status]++
	}
	return counts
}

// Len returns the number of tasks.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}
