// Package memory is the in-memory record store backend used for tests
// and local development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"contas/internal/core"
	"contas/internal/store"
)

type Store struct {
	mu      sync.Mutex
	tasks   map[string]core.Task
	incomes map[string]core.Income
}

func New() *Store {
	return &Store{
		tasks:   make(map[string]core.Task),
		incomes: make(map[string]core.Income),
	}
}

func (s *Store) ListTasks(_ context.Context, f store.Filter) ([]core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Task
	for _, t := range s.tasks {
		if !matches(f, t.UserID, t.Month, t.Year) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) CreateTask(_ context.Context, t core.Task) (core.Task, error) {
	if err := t.Validate(); err != nil {
		return core.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	s.tasks[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTask(_ context.Context, t core.Task) (core.Task, error) {
	if err := t.Validate(); err != nil {
		return core.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.tasks[t.ID]
	if !ok || prev.UserID != t.UserID {
		return core.Task{}, store.ErrNotFound
	}
	t.CreatedAt = prev.CreatedAt
	s.tasks[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTaskStatus(_ context.Context, userID, id string, status core.TaskStatus) error {
	if !status.Valid() {
		return core.ErrInvalidStatus
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return store.ErrNotFound
	}
	t.Status = status
	s.tasks[id] = t
	return nil
}

func (s *Store) DeleteTask(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *Store) ListIncomes(_ context.Context, f store.Filter) ([]core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Income
	for _, i := range s.incomes {
		if !matches(f, i.UserID, i.Month, i.Year) {
			continue
		}
		out = append(out, i)
	}
	return out, nil
}

func (s *Store) ListAllIncomes(_ context.Context, userID string) ([]core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Income
	for _, i := range s.incomes {
		if userID != "" && i.UserID != userID {
			continue
		}
		out = append(out, i)
	}
	return out, nil
}

func (s *Store) CreateIncome(_ context.Context, i core.Income) (core.Income, error) {
	if err := i.Validate(); err != nil {
		return core.Income{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = time.Now()
	}
	s.incomes[i.ID] = i
	return i, nil
}

func (s *Store) UpdateIncome(_ context.Context, i core.Income) (core.Income, error) {
	if err := i.Validate(); err != nil {
		return core.Income{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.incomes[i.ID]
	if !ok || prev.UserID != i.UserID {
		return core.Income{}, store.ErrNotFound
	}
	i.CreatedAt = prev.CreatedAt
	s.incomes[i.ID] = i
	return i, nil
}

func (s *Store) DeleteIncome(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.incomes[id]
	if !ok || i.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.incomes, id)
	return nil
}

func matches(f store.Filter, userID string, month, year int) bool {
	if f.UserID != "" && userID != f.UserID {
		return false
	}
	if f.Month != 0 && month != f.Month {
		return false
	}
	if f.Year != 0 && year != f.Year {
		return false
	}
	return true
}
