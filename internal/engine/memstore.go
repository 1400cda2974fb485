package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/celerix-dev/mobidash/pkg/kv"
	"github.com/rs/zerolog/log"
)

// MemStore is a thread-safe in-memory key-value engine.
// When a Persistence is attached, a mutation is only applied in memory once
// its snapshot is on disk, so a failed write leaves the store unchanged.
type MemStore struct {
	mu        sync.RWMutex
	writeMu   sync.Mutex // serializes mutations including their disk write
	data      map[string]string
	seq       uint64 // bumped on every mutation, orders snapshots
	persister *Persistence
}

var _ kv.ListableStorage = (*MemStore)(nil)

// NewMemStore initializes a store.
// It accepts existing data (from Load) and an optional persister.
func NewMemStore(initialData map[string]string, p *Persistence) *MemStore {
	if initialData == nil {
		initialData = make(map[string]string)
	}
	return &MemStore{
		data:      initialData,
		persister: p,
	}
}

// Wait blocks until any in-flight mutation has been written.
func (m *MemStore) Wait() {
	m.writeMu.Lock()
	m.writeMu.Unlock()
}

// --- Interface Implementation ---

func (m *MemStore) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	val, ok := m.data[key]
	if !ok {
		return "", kv.ErrKeyNotFound
	}
	return val, nil
}

func (m *MemStore) Set(key, value string) error {
	return m.mutate(func(data map[string]string) bool {
		data[key] = value
		return true
	})
}

func (m *MemStore) Remove(key string) error {
	return m.mutate(func(data map[string]string) bool {
		if _, ok := data[key]; !ok {
			return false
		}
		delete(data, key)
		return true
	})
}

func (m *MemStore) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]string, 0, len(m.data))
	for k := range m.data {
		list = append(list, k)
	}
	sort.Strings(list)
	return list, nil
}

// mutate applies change to a copy of the key space, persists the copy and only
// then swaps it in. Readers never observe a value that did not reach disk.
func (m *MemStore) mutate(change func(map[string]string) bool) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.RLock()
	next := m.copyData()
	m.mu.RUnlock()

	if !change(next) {
		return nil
	}
	seq := m.seq + 1
	if m.persister != nil {
		if err := m.persister.SaveSnapshot(seq, next); err != nil {
			log.Warn().Err(err).Uint64("seq", seq).Msg("persistence failed, write discarded")
			return fmt.Errorf("persist snapshot: %w", err)
		}
	}

	m.mu.Lock()
	m.data = next
	m.seq = seq
	m.mu.Unlock()
	return nil
}

// copyData creates a copy of the whole map.
// It MUST be called while holding m.mu.Lock or m.mu.RLock.
func (m *MemStore) copyData() map[string]string {
	out := make(map[string]string, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out
}
