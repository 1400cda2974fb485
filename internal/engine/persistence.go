// Package engine provides the in-memory and JSON-file key-value backends.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// SnapshotFile is the name of the JSON snapshot inside the data directory.
const SnapshotFile = "mobidash.json"

// Persistence handles the disk I/O for the MemStore.
type Persistence struct {
	DataDir string
	mu      sync.Mutex // Protects concurrent writes to the filesystem
	written uint64     // sequence of the newest snapshot on disk
}

// NewPersistence initializes a persistence handler.
func NewPersistence(dir string) (*Persistence, error) {
	// Ensure the data directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Persistence{DataDir: dir}, nil
}

// Path returns the snapshot location.
func (p *Persistence) Path() string {
	return filepath.Join(p.DataDir, SnapshotFile)
}

// Save writes the full key space to disk atomically.
func (p *Persistence) Save(data map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.write(data)
}

// SaveSnapshot writes data only if seq is newer than the last snapshot written.
func (p *Persistence) SaveSnapshot(seq uint64, data map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if seq <= p.written {
		return nil
	}
	if err := p.write(data); err != nil {
		return err
	}
	p.written = seq
	return nil
}

func (p *Persistence) write(data map[string]string) error {
	filePath := p.Path()
	tempPath := filePath + ".tmp"

	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	// Write to a temporary file first
	if err := os.WriteFile(tempPath, bytes, 0644); err != nil {
		return err
	}

	// Atomic rename: readers see either the old snapshot or the new one, never a torn file.
	return os.Rename(tempPath, filePath)
}

// Load returns the stored key space. A missing snapshot yields an empty map.
// A corrupt snapshot is renamed aside (see QuarantinePath) so the next write
// cannot overwrite it, and an empty map is returned.
func (p *Persistence) Load() (map[string]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	data := make(map[string]string)

	content, err := os.ReadFile(p.Path())
	if errors.Is(err, os.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(content, &data); err != nil {
		aside := p.QuarantinePath(time.Now())
		if rerr := os.Rename(p.Path(), aside); rerr != nil {
			return nil, fmt.Errorf("snapshot %s is corrupt (%v) and could not be moved aside: %w", p.Path(), err, rerr)
		}
		log.Warn().Err(err).Str("file", p.Path()).Str("moved_to", aside).Msg("could not decode snapshot, starting empty")
		return make(map[string]string), nil
	}
	return data, nil
}

// QuarantinePath is where a corrupt snapshot found at t is kept.
func (p *Persistence) QuarantinePath(t time.Time) string {
	return fmt.Sprintf("%s.corrupt-%s", p.Path(), t.UTC().Format("20060102T150405.000000000"))
}
