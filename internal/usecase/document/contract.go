package document

import (
	"context"

	domdoc "github.com/kailas-cloud/searchsync/internal/domain/document"
	"github.com/kailas-cloud/searchsync/internal/domain/event"
	dommodel "github.com/kailas-cloud/searchsync/internal/domain/model"
)

// RecordStore is the primary document store.
type RecordStore interface {
	Put(ctx context.Context, collection string, doc *domdoc.Document) (created bool, err error)
	Get(ctx context.Context, collection, id string) (domdoc.Document, error)
	Delete(ctx context.Context, collection, id string) error
}

// ModelReader resolves registered models by name.
type ModelReader interface {
	Get(name string) (dommodel.Model, error)
}

// Syncer receives post-save and post-remove lifecycle hooks.
type Syncer interface {
	OnSave(ctx context.Context, m dommodel.Model, doc domdoc.Document) <-chan event.IndexedEvent
	OnRemove(ctx context.Context, m dommodel.Model, id string) <-chan event.RemovedEvent
}
