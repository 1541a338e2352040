// Package store defines the persistence contract the session core writes
// through, plus file and SQLite backends. Records are opaque bytes grouped
// into named collections; the core serializes sessions and their metadata
// projections to JSON before handing them here.
package store

import (
	"context"
	"errors"
)

// Collections used by the session core.
const (
	CollectionSessions = "sessions"
	CollectionMetadata = "session_metadata"
)

// Sentinel errors for store operations.
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrLoadFailed  = errors.New("load failed")
	ErrSaveFailed  = errors.New("save failed")
)

// Store persists records keyed by (collection, key). Implementations are
// stateless and safe for concurrent use; they perform I/O on each call
// without caching.
type Store interface {
	// Save creates or overwrites a record.
	Save(ctx context.Context, collection, key string, value []byte) error
	// Load retrieves a record, or ErrKeyNotFound.
	Load(ctx context.Context, collection, key string) ([]byte, error)
	// Delete removes a record. Missing keys are ignored.
	Delete(ctx context.Context, collection, key string) error
	// ListKeys returns all keys in a collection, sorted.
	ListKeys(ctx context.Context, collection string) ([]string, error)
}
