package document

import (
	"context"
	"testing"

	"github.com/kailas-cloud/searchsync/internal/domain"
	domdoc "github.com/kailas-cloud/searchsync/internal/domain/document"
	"github.com/kailas-cloud/searchsync/internal/domain/event"
	"github.com/kailas-cloud/searchsync/internal/domain/mapping"
	dommodel "github.com/kailas-cloud/searchsync/internal/domain/model"
	"github.com/kailas-cloud/searchsync/internal/domain/schema"
)

// --- Mocks ---

type mockStore struct {
	putFn    func(ctx context.Context, collection string, doc *domdoc.Document) (bool, error)
	getFn    func(ctx context.Context, collection, id string) (domdoc.Document, error)
	deleteFn func(ctx context.Context, collection, id string) error
}

func (m *mockStore) Put(ctx context.Context, collection string, doc *domdoc.Document) (bool, error) {
	if m.putFn != nil {
		return m.putFn(ctx, collection, doc)
	}
	return true, nil
}

func (m *mockStore) Get(ctx context.Context, collection, id string) (domdoc.Document, error) {
	if m.getFn != nil {
		return m.getFn(ctx, collection, id)
	}
	return domdoc.Reconstruct(id, map[string]any{}), nil
}

func (m *mockStore) Delete(ctx context.Context, collection, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, collection, id)
	}
	return nil
}

type mockModels map[string]dommodel.Model

func (m mockModels) Get(name string) (dommodel.Model, error) {
	mdl, ok := m[name]
	if !ok {
		return dommodel.Model{}, domain.ErrModelNotFound
	}
	return mdl, nil
}

type mockSyncer struct {
	saved   []domdoc.Document
	removed []string
}

func (m *mockSyncer) OnSave(_ context.Context, mdl dommodel.Model, doc domdoc.Document) <-chan event.IndexedEvent {
	m.saved = append(m.saved, doc)
	ch := make(chan event.IndexedEvent, 1)
	ch <- event.IndexedEvent{Model: mdl.Name(), ID: doc.ID(), State: event.Indexed}
	close(ch)
	return ch
}

func (m *mockSyncer) OnRemove(_ context.Context, mdl dommodel.Model, id string) <-chan event.RemovedEvent {
	m.removed = append(m.removed, id)
	ch := make(chan event.RemovedEvent, 1)
	ch <- event.RemovedEvent{Model: mdl.Name(), ID: id, State: event.Removed, Attempts: 1}
	close(ch)
	return ch
}

// --- Fixtures ---

func tweetModel(t *testing.T) dommodel.Model {
	t.Helper()
	s := schema.New("",
		schema.Field{Name: "user", Type: schema.String, Indexed: schema.Bool(true)},
		schema.Field{Name: "message", Type: schema.String, Indexed: schema.Bool(true)},
	)
	mp, err := mapping.Generate(s)
	if err != nil {
		t.Fatalf("generate mapping: %v", err)
	}
	m, err := dommodel.New(dommodel.Definition{Name: "Tweet", Schema: s}, mp)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	return m
}
