// Package postgres implements the storage.KV contract on PostgreSQL, for
// setups that already run a database server and want the memory blob there
// instead of a local file.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/scrypster/mnemo/internal/storage"
)

// schema holds the single key-value table the blob is stored in.
const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// KVStore implements storage.KV using PostgreSQL.
type KVStore struct {
	db *sql.DB
}

// NewKVStore connects to PostgreSQL with the given DSN and ensures the kv
// table exists.
func NewKVStore(dsn string) (*KVStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &KVStore{db: db}, nil
}

// Get returns the value stored under key, or storage.ErrKeyNotFound.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = $1", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to read key %q: %w", key, err)
	}
	return value, nil
}

// Put writes the value under key with upsert semantics.
func (s *KVStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = now()
	`, key, value)
	if err != nil {
		return fmt.Errorf("postgres: failed to write key %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *KVStore) Close() error {
	return s.db.Close()
}

// Compile-time assertion.
var _ storage.KV = (*KVStore)(nil)
