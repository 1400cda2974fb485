// Package dashboard persists chart and table collections through an injected kv.Storage.
//
// Each collection is a JSON array stored under one key. Every write reads the whole
// collection, changes it in memory and writes it back. Writes are serialized inside
// one Store; two processes sharing a backend still race and the last writer wins.
package dashboard

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/celerix-dev/mobidash/pkg/kv"
	"github.com/rs/zerolog/log"
)

// DefaultKeyPrefix namespaces the collection keys.
const DefaultKeyPrefix = "mobidash_"

// UserDataKey holds the user's preferences. It is not prefixed.
const UserDataKey = "user-data"

var (
	// ErrNotFound is matched by every lookup failure.
	ErrNotFound = errors.New("not found")

	ErrChartNotFound = fmt.Errorf("chart %w", ErrNotFound)
	ErrTableNotFound = fmt.Errorf("table %w", ErrNotFound)
)

// Collection names used in change notifications.
const (
	CollectionCharts      = "charts"
	CollectionTables      = "tables"
	CollectionPreferences = "preferences"
)

// Change operations.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
	OpCleared = "cleared"
)

// Change describes a successful write.
type Change struct {
	Op         string
	Collection string
	ID         string
	At         time.Time
}

// Notifier receives a Change after each successful write.
type Notifier interface {
	Notify(Change)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Change)

func (f NotifierFunc) Notify(c Change) { f(c) }

// Store is the CRUD layer over the chart and table collections.
type Store struct {
	mu       sync.Mutex
	storage  kv.Storage
	prefix   string
	now      func() time.Time
	newID    func() string
	notifier Notifier
}

// Option configures a Store.
type Option func(*Store)

// WithKeyPrefix replaces DefaultKeyPrefix.
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithNotifier registers a change listener.
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// New creates a Store over storage.
func New(storage kv.Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		prefix:  DefaultKeyPrefix,
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		newID:   NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ChartsKey is the storage key of the chart collection.
func (s *Store) ChartsKey() string { return s.prefix + CollectionCharts }

// TablesKey is the storage key of the table collection.
func (s *Store) TablesKey() string { return s.prefix + CollectionTables }

// ClearAllData removes both collections. Preferences are kept.
func (s *Store) ClearAllData() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Remove(s.ChartsKey()); err != nil {
		return fmt.Errorf("clear charts: %w", err)
	}
	if err := s.storage.Remove(s.TablesKey()); err != nil {
		return fmt.Errorf("clear tables: %w", err)
	}

	s.notify(OpCleared, CollectionCharts, "")
	s.notify(OpCleared, CollectionTables, "")
	return nil
}

func (s *Store) notify(op, collection, id string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(Change{Op: op, Collection: collection, ID: id, At: s.now()})
}

// readAll is the lenient read behind GetAll*: absent or undecodable collections read as empty.
func readAll[T any](storage kv.Reader, key string) []T {
	items, err := kv.GetJSON[[]T](storage, key)
	if err != nil {
		if !errors.Is(err, kv.ErrKeyNotFound) {
			log.Warn().Err(err).Str("key", key).Msg("failed to read collection, treating as empty")
		}
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

// load is the strict read used before a write, so a corrupt collection is
// reported instead of being overwritten.
func load[T any](storage kv.Reader, key string) ([]T, error) {
	items, err := kv.GetJSON[[]T](storage, key)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return items, nil
}

func store[T any](storage kv.Writer, key string, items []T) error {
	if err := kv.SetJSON(storage, key, items); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
