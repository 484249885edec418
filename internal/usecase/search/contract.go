package search

import (
	"context"

	domdoc "github.com/kailas-cloud/searchsync/internal/domain/document"
	"github.com/kailas-cloud/searchsync/internal/domain/index"
)

// Querier is the read side of an index client adapter.
type Querier interface {
	Query(ctx context.Context, q index.Query) (index.Response, error)
}

// RecordReader reads primary-store records for hydration.
type RecordReader interface {
	Get(ctx context.Context, collection, id string) (domdoc.Document, error)
}

// SharedIndexes reports whether an index holds more than one type.
type SharedIndexes interface {
	IsShared(index string) bool
}
