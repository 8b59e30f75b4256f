package kvstore

import (
	"context"
	"io"
	"time"
)

// Store is the key-value surface shared by the SQLite and memory backends.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
	io.Closer
}

// MemoryPath selects the in-process backend in Open.
const MemoryPath = ":memory:"

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// Open returns a MemoryStore for MemoryPath or an empty path, a SQLiteStore otherwise.
func Open(path string) (Store, error) {
	if path == "" || path == MemoryPath {
		return NewMemoryStore(), nil
	}
	return OpenSQLite(path)
}
