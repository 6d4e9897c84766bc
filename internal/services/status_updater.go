package services

import (
	"context"
	"sync"

	"contas/internal/core"
)

// UpdateState tracks whether a status change is in flight for a task.
type UpdateState int

const (
	StateIdle UpdateState = iota
	StateUpdating
)

// statusStore is the slice of Service the updater needs.
type statusStore interface {
	UpdateTaskStatus(ctx context.Context, userID, id string, status core.TaskStatus) error
}

// StatusUpdater applies task status changes optimistically over a
// local snapshot of the month's tasks: the snapshot flips immediately,
// the store call follows, and a failure rolls the snapshot back. Each
// failure is surfaced exactly once through TakeError.
type StatusUpdater struct {
	store  statusStore
	userID string

	mu     sync.Mutex
	tasks  []core.Task
	states map[string]UpdateState
	err    error
}

func NewStatusUpdater(store statusStore, userID string, tasks []core.Task) *StatusUpdater {
	return &StatusUpdater{
		store:  store,
		userID: userID,
		tasks:  append([]core.Task(nil), tasks...),
		states: make(map[string]UpdateState),
	}
}

// Tasks returns the current snapshot, optimistic values included.
func (u *StatusUpdater) Tasks() []core.Task {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]core.Task(nil), u.tasks...)
}

// State reports whether a change is in flight for the task.
func (u *StatusUpdater) State(id string) UpdateState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.states[id]
}

// TakeError returns the most recent failure and clears it. A second
// call reports nothing until another failure happens.
func (u *StatusUpdater) TakeError() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	err := u.err
	u.err = nil
	return err
}

// Apply changes a task's status. Requesting the status the task
// already has is a no-op. While a change for the same task is in
// flight, further changes to it are rejected silently; other tasks
// are unaffected.
func (u *StatusUpdater) Apply(ctx context.Context, id string, status core.TaskStatus) {
	u.mu.Lock()
	idx := -1
	for i := range u.tasks {
		if u.tasks[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 || u.states[id] == StateUpdating {
		u.mu.Unlock()
		return
	}
	previous := u.tasks[idx].Status
	if previous == status {
		u.mu.Unlock()
		return
	}

	u.tasks[idx].Status = status
	u.states[id] = StateUpdating
	u.mu.Unlock()

	err := u.store.UpdateTaskStatus(ctx, u.userID, id, status)

	u.mu.Lock()
	defer u.mu.Unlock()
	u.states[id] = StateIdle
	if err != nil {
		// Roll the optimistic flip back; the snapshot must agree
		// with the store again.
		for i := range u.tasks {
			if u.tasks[i].ID == id {
				u.tasks[i].Status = previous
				break
			}
		}
		u.err = err
	}
}
