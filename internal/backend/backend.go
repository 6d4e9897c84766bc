// Package backend selects and builds the record store implementation.
package backend

import (
	"fmt"
	"time"

	"contas/internal/store"
)

// Type identifies a record store backend.
type Type string

const (
	RemoteBackend Type = "remote"
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

// IsValid reports whether t names a known backend.
func (t Type) IsValid() bool {
	switch t {
	case RemoteBackend, SQLiteBackend, MemoryBackend:
		return true
	}
	return false
}

// Types returns all valid backend types.
func Types() []Type {
	return []Type{RemoteBackend, SQLiteBackend, MemoryBackend}
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result carries the built record store and its optional cleanup.
type Result struct {
	Store   store.RecordStore
	Cleanup CleanupFunc
}

// Config holds what each backend needs to construct itself.
type Config struct {
	Type Type

	// Remote backend.
	RecordStoreURL string
	RemoteTimeout  time.Duration

	// SQLite backend.
	SQLiteDBPath string
}

// Validate checks the selected backend has what it needs.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	switch c.Type {
	case RemoteBackend:
		if c.RecordStoreURL == "" {
			return fmt.Errorf("record store URL is required for the remote backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("database path is required for the sqlite backend")
		}
	}
	return nil
}
