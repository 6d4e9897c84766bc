// Package store defines the ports every record store backend
// implements. The record store owns durability and is the single
// source of truth; this service only caches what it reads.
package store

import (
	"context"
	"errors"

	"contas/internal/core"
)

// ErrNotFound is returned when a record id does not exist (or belongs
// to another user).
var ErrNotFound = errors.New("record not found")

// Filter narrows list operations. A zero Month/Year means no period
// filter. UserID is ignored by the remote backend, which scopes rows
// by the caller's credential.
type Filter struct {
	UserID string
	Month  int
	Year   int
}

type (
	TaskStore interface {
		// ListTasks returns the complete set of tasks matching the
		// filter; no pagination is assumed.
		ListTasks(ctx context.Context, f Filter) ([]core.Task, error)
		CreateTask(ctx context.Context, t core.Task) (core.Task, error)
		UpdateTask(ctx context.Context, t core.Task) (core.Task, error)
		// UpdateTaskStatus changes only the status of a task.
		UpdateTaskStatus(ctx context.Context, userID, id string, status core.TaskStatus) error
		DeleteTask(ctx context.Context, userID, id string) error
	}

	IncomeStore interface {
		ListIncomes(ctx context.Context, f Filter) ([]core.Income, error)
		// ListAllIncomes returns every income of the user across all
		// periods; it feeds the by-month aggregate.
		ListAllIncomes(ctx context.Context, userID string) ([]core.Income, error)
		CreateIncome(ctx context.Context, i core.Income) (core.Income, error)
		UpdateIncome(ctx context.Context, i core.Income) (core.Income, error)
		DeleteIncome(ctx context.Context, userID, id string) error
	}

	// RecordStore is the unified backend surface.
	RecordStore interface {
		TaskStore
		IncomeStore
	}
)
