package engine

import (
	"fmt"

	"github.com/celerix-dev/mobidash/pkg/kv"
)

// Source is a backend that can be enumerated and read.
type Source interface {
	kv.Reader
	kv.Lister
}

// Migrate copies every key from src to dst and returns how many keys were copied.
// This works for:
// - Memory/File -> Postgres (the "upgrade")
// - Postgres -> File (the "backup/offline")
func Migrate(src Source, dst kv.Writer) (int, error) {
	keys, err := src.Keys()
	if err != nil {
		return 0, fmt.Errorf("failed to list keys: %w", err)
	}

	copied := 0
	for _, k := range keys {
		val, err := src.Get(k)
		if err != nil {
			return copied, fmt.Errorf("failed to read key %s: %w", k, err)
		}
		if err := dst.Set(k, val); err != nil {
			return copied, fmt.Errorf("failed to set key %s in destination: %w", k, err)
		}
		copied++
	}

	return copied, nil
}
