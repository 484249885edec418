// Package db is the Redis facade shared by the Redis record store and the
// RediSearch index adapter. Consumers declare the narrow subset they need.
package db

import (
	"context"
	"time"
)

// Store is everything the Redis implementation offers.
type Store interface {
	Pinger
	JSONStore
	KeyStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JSONStore reads and writes whole JSON documents.
type JSONStore interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	// JSONSetNX writes only when key is absent and reports whether it did.
	JSONSetNX(ctx context.Context, key, path string, data []byte) (bool, error)
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
}

// KeyStore provides key lifecycle operations.
type KeyStore interface {
	DelCount(ctx context.Context, key string) (int64, error)
}

// IndexManager installs FT index schemas. Indexes are never dropped: an installed
// mapping is only ever extended.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	AlterIndex(ctx context.Context, name string, fields []IndexField) error
}

// Searcher runs scored FT.SEARCH queries.
type Searcher interface {
	Search(ctx context.Context, q *TextQuery) (*SearchResult, error)
}
