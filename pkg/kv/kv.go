// Package kv defines the key-value capability the dashboard persists through.
//
// Every backend (in-memory, JSON file, PostgreSQL, encrypted decorator) implements
// Storage, so the chart/table Store never touches a process-wide handle directly.
package kv

import "errors"

var (
	// ErrKeyNotFound is returned when a requested key does not exist.
	ErrKeyNotFound = errors.New("key not found")

	// ErrNotListable is returned by decorators whose wrapped backend cannot enumerate keys.
	ErrNotListable = errors.New("storage cannot list keys")
)

// --- Functional Interfaces (Interface Segregation) ---

// Reader defines the read side of a storage backend.
type Reader interface {
	Get(key string) (string, error)
}

// Writer defines the write and remove side of a storage backend.
type Writer interface {
	Set(key, value string) error
	Remove(key string) error
}

// Lister enumerates stored keys. Used by migrations and backups.
type Lister interface {
	Keys() ([]string, error)
}

// --- Composite Interfaces ---

// Storage is the {get, set, remove} capability injected into the Store.
type Storage interface {
	Reader
	Writer
}

// ListableStorage is a Storage that can also enumerate its keys.
type ListableStorage interface {
	Storage
	Lister
}
