package indexsync

import (
	"context"

	"github.com/kailas-cloud/searchsync/internal/domain/index"
)

// Indexer is the write side of an index client adapter.
type Indexer interface {
	IndexDocument(ctx context.Context, ref index.Ref, projection map[string]any) (index.WriteResult, error)
	DeleteDocument(ctx context.Context, ref index.Ref) error
}
