// Package memory is an in-memory ledger used in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"contas/internal/mirror"
)

type Ledger struct {
	mu      sync.Mutex
	entries []mirror.Entry
}

func New() *Ledger {
	return &Ledger{}
}

func (l *Ledger) Append(_ context.Context, e mirror.Entry) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	return fmt.Sprintf("row-%d", len(l.entries)), nil
}

// Entries returns a copy of everything appended so far.
func (l *Ledger) Entries() []mirror.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]mirror.Entry(nil), l.entries...)
}
