package indexsync

import (
	"context"
	"sync"
	"testing"

	domdoc "github.com/kailas-cloud/searchsync/internal/domain/document"
	"github.com/kailas-cloud/searchsync/internal/domain/index"
	"github.com/kailas-cloud/searchsync/internal/domain/mapping"
	dommodel "github.com/kailas-cloud/searchsync/internal/domain/model"
	"github.com/kailas-cloud/searchsync/internal/domain/schema"
)

// mockIndexer implements Indexer for tests and records every call.
type mockIndexer struct {
	indexFn  func(ctx context.Context, ref index.Ref, projection map[string]any) (index.WriteResult, error)
	deleteFn func(ctx context.Context, ref index.Ref, attempt int) error

	mu          sync.Mutex
	indexed     []map[string]any
	deleteCalls int
}

func (m *mockIndexer) IndexDocument(ctx context.Context, ref index.Ref, projection map[string]any) (index.WriteResult, error) {
	m.mu.Lock()
	m.indexed = append(m.indexed, projection)
	m.mu.Unlock()
	if m.indexFn != nil {
		return m.indexFn(ctx, ref, projection)
	}
	return index.WriteResult{Index: ref.Index, Type: ref.Type, ID: ref.ID, Created: true, Result: "created"}, nil
}

func (m *mockIndexer) DeleteDocument(ctx context.Context, ref index.Ref) error {
	m.mu.Lock()
	m.deleteCalls++
	n := m.deleteCalls
	m.mu.Unlock()
	if m.deleteFn != nil {
		return m.deleteFn(ctx, ref, n)
	}
	return nil
}

func (m *mockIndexer) deletes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteCalls
}

func newTestEngine(t *testing.T) (*Engine, *mockIndexer) {
	t.Helper()
	mi := &mockIndexer{}
	return New(mi, nil).WithRetryDelay(0), mi
}

func tweetModel(t *testing.T) dommodel.Model {
	t.Helper()
	s := schema.New("",
		schema.Field{Name: "user", Type: schema.String, Indexed: schema.Bool(true)},
		schema.Field{Name: "message", Type: schema.String, Indexed: schema.Bool(true)},
		schema.Field{Name: "secret", Type: schema.String},
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

func tweetDocument(t *testing.T) domdoc.Document {
	t.Helper()
	doc, err := domdoc.New("1", map[string]any{
		"user":    "jamescarr",
		"message": "I like Riak better",
		"secret":  "do not index",
	}, "_id")
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return doc
}
