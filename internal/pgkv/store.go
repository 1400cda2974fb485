// Package pgkv stores dashboard keys in a PostgreSQL table.
package pgkv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/celerix-dev/mobidash/pkg/kv"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	DefaultTable   = "mobidash_kv"
	DefaultTimeout = 5 * time.Second
)

// Options configures Open.
type Options struct {
	URL      string
	MaxConns int32
	MinConns int32
	Timeout  time.Duration
	Table    string
}

// Store is a kv.ListableStorage backed by one table:
// (key text primary key, value text not null, updated_at timestamptz).
type Store struct {
	pool    *pgxpool.Pool
	table   string
	timeout time.Duration
	owned   bool
}

var _ kv.ListableStorage = (*Store)(nil)

// Open connects, verifies the connection and creates the table if needed.
func Open(ctx context.Context, opts Options) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if opts.MaxConns > 0 {
		poolConfig.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = opts.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := New(pool, opts.Table, opts.Timeout)
	s.owned = true
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing pool. Empty table and zero timeout select the defaults.
func New(pool *pgxpool.Pool, table string, timeout time.Duration) *Store {
	if table == "" {
		table = DefaultTable
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store{
		pool:    pool,
		table:   pgx.Identifier{table}.Sanitize(),
		timeout: timeout,
	}
}

// Close releases the pool if Open created it.
func (s *Store) Close() {
	if s.owned {
		s.pool.Close()
	}
}

// EnsureSchema creates the key-value table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key        text PRIMARY KEY,
		value      text NOT NULL,
		updated_at timestamptz NOT NULL DEFAULT now()
	)`, s.table))
	if err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

func (s *Store) Get(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var value string
	err := s.pool.QueryRow(ctx, fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, s.table), key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", kv.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	_, err := s.pool.Exec(ctx, fmt.Sprintf(`INSERT INTO %s (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`, s.table), key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Remove(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, s.table), key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (s *Store) Keys() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, fmt.Sprintf(`SELECT key FROM %s ORDER BY key`, s.table))
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	return keys, nil
}
