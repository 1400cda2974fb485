// Package backend opens the key-value storage selected by configuration.
package backend

import (
	"context"
	"fmt"

	"github.com/celerix-dev/mobidash/internal/config"
	"github.com/celerix-dev/mobidash/internal/engine"
	"github.com/celerix-dev/mobidash/internal/pgkv"
	"github.com/celerix-dev/mobidash/internal/vault"
	"github.com/celerix-dev/mobidash/pkg/kv"
	"github.com/rs/zerolog/log"
)

// Backend is an open storage backend.
type Backend struct {
	kv.ListableStorage

	// Name is the configured backend kind.
	Name string

	close func()
}

// Close flushes pending writes and releases connections.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open opens the backend named by cfg.Backend, wrapping it with encryption
// when cfg.EncryptionKey is set.
func Open(ctx context.Context, cfg config.StorageConfig) (*Backend, error) {
	b, err := open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.EncryptionKey == "" {
		return b, nil
	}

	key, err := vault.ParseKey(cfg.EncryptionKey)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.ListableStorage = vault.Wrap(b.ListableStorage, key)
	log.Info().Str("backend", b.Name).Msg("encryption at rest enabled")
	return b, nil
}

func open(ctx context.Context, cfg config.StorageConfig) (*Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return &Backend{ListableStorage: engine.NewMemStore(nil, nil), Name: cfg.Backend}, nil

	case config.BackendFile:
		p, err := engine.NewPersistence(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initialize persistence: %w", err)
		}
		data, err := p.Load()
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", p.Path(), err)
		}
		mem := engine.NewMemStore(data, p)
		log.Info().Str("path", p.Path()).Int("keys", len(data)).Msg("file store loaded")
		return &Backend{ListableStorage: mem, Name: cfg.Backend, close: mem.Wait}, nil

	case config.BackendPostgres:
		s, err := pgkv.Open(ctx, pgkv.Options{
			URL:      cfg.DatabaseURL,
			MaxConns: int32(cfg.MaxConns),
			MinConns: int32(cfg.MinConns),
			Timeout:  cfg.QueryTimeout,
		})
		if err != nil {
			return nil, err
		}
		log.Info().Msg("postgres store connected")
		return &Backend{ListableStorage: s, Name: cfg.Backend, close: s.Close}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
