package document

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/searchsync/internal/domain"
	domdoc "github.com/kailas-cloud/searchsync/internal/domain/document"
	"github.com/kailas-cloud/searchsync/internal/domain/event"
	dommodel "github.com/kailas-cloud/searchsync/internal/domain/model"
)

// SaveResult is the synchronous outcome of a save plus its indexing signal.
type SaveResult struct {
	Created bool
	Indexed <-chan event.IndexedEvent
}

// Service persists model documents and fires the lifecycle hooks that keep the index in sync.
type Service struct {
	store  RecordStore
	models ModelReader
	syncer Syncer
}

// New creates a document service.
func New(store RecordStore, models ModelReader, syncer Syncer) *Service {
	return &Service{store: store, models: models, syncer: syncer}
}

// Save stores the record and then fires the post-save hook.
// The primary-key field, if present in fields, is replaced by id.
func (s *Service) Save(ctx context.Context, modelName, id string, fields map[string]any) (SaveResult, error) {
	m, err := s.models.Get(modelName)
	if err != nil {
		return SaveResult{}, err
	}

	doc, err := domdoc.New(id, fields, m.PrimaryKey())
	if err != nil {
		return SaveResult{}, fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err)
	}

	created, err := s.store.Put(ctx, m.Collection(), &doc)
	if err != nil {
		return SaveResult{}, fmt.Errorf("store document: %w", err)
	}

	return SaveResult{Created: created, Indexed: s.syncer.OnSave(ctx, m, doc)}, nil
}

// Get reads a record from the primary store.
func (s *Service) Get(ctx context.Context, modelName, id string) (dommodel.Model, domdoc.Document, error) {
	m, err := s.models.Get(modelName)
	if err != nil {
		return dommodel.Model{}, domdoc.Document{}, err
	}
	doc, err := s.store.Get(ctx, m.Collection(), id)
	if err != nil {
		return dommodel.Model{}, domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return m, doc, nil
}

// Remove deletes the record and then fires the post-remove hook with its id.
func (s *Service) Remove(ctx context.Context, modelName, id string) (<-chan event.RemovedEvent, error) {
	m, err := s.models.Get(modelName)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Get(ctx, m.Collection(), id); err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if err := s.store.Delete(ctx, m.Collection(), id); err != nil {
		return nil, fmt.Errorf("delete document: %w", err)
	}
	return s.syncer.OnRemove(ctx, m, id), nil
}
