package store

import (
	"errors"
	"sync"

	"github.com/gofrs/uuid"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"
)

var ErrTaskNotFound = errors.New("task not found")

// Store holds the live task collection of the in-memory pipeline. Every
// read and write goes through its lock; callers only ever see copies.
type Store struct {
	mu    sync.RWMutex
	tasks []models.Task
}

func New() *Store {
	return &Store{tasks: []models.Task{}}
}

func (s *Store) All() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.tasks)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Replace swaps in a freshly extracted collection.
func (s *Store) Replace(tasks []models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = cloneAll(tasks)
}

// Apply swaps in a reordered copy of the collection, typically computed from
// All outside the lock. Tasks deleted since the snapshot stay deleted, status
// changes made since are kept, and tasks the snapshot never saw go last.
func (s *Store) Apply(ranked []models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := make(map[uuid.UUID]int, len(s.tasks))
	for i, t := range s.tasks {
		current[t.ID] = i
	}

	out := make([]models.Task, 0, len(s.tasks))
	placed := make(map[uuid.UUID]bool, len(ranked))
	for _, t := range ranked {
		i, ok := current[t.ID]
		if !ok || placed[t.ID] {
			continue
		}
		t = clone(t)
		t.Status = s.tasks[i].Status
		out = append(out, t)
		placed[t.ID] = true
	}
	for _, t := range s.tasks {
		if !placed[t.ID] {
			out = append(out, t)
		}
	}
	s.tasks = out
}

func (s *Store) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.tasks {
		if t.ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return ErrTaskNotFound
}

func (s *Store) UpdateStatus(id uuid.UUID, status models.Status) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Status = status
			return clone(s.tasks[i]), nil
		}
	}
	return models.Task{}, ErrTaskNotFound
}

func (s *Store) Clear() {
	s.Replace(nil)
}

func cloneAll(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	for i, t := range tasks {
		out[i] = clone(t)
	}
	return out
}

// clone copies the metadata map and due date so callers cannot mutate the
// stored task through a returned value.
func clone(t models.Task) models.Task {
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	if t.Metadata != nil {
		m := make(map[string]any, len(t.Metadata))
		for k, v := range t.Metadata {
			m[k] = v
		}
		t.Metadata = m
	}
	return t
}
