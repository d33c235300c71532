// Package storage provides the memory store and its persistence abstraction.
// All memories are serialized as one JSON array and persisted under a single
// fixed key in a key-value engine; engines live in subpackages (sqlite is the
// default, postgres is an alternative).
package storage

import (
	"context"
	"errors"
)

// StorageKey is the fixed key the serialized memory array is stored under.
const StorageKey = "@memory_app:memories"

// ErrKeyNotFound is returned by KV.Get when the key has never been written.
var ErrKeyNotFound = errors.New("storage: key not found")

// ErrImport is returned when an import payload does not deserialize to a
// JSON array of memories.
var ErrImport = errors.New("import payload is not a JSON array of memories")

// KV is the minimal key-value contract a storage engine must provide.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}
