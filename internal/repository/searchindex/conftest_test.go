package searchindex

import (
	"context"
	"testing"

	"github.com/kailas-cloud/searchsync/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	pingFn        func(ctx context.Context) error
	jsonSetFn     func(ctx context.Context, key, path string, data []byte) error
	delCountFn    func(ctx context.Context, key string) (int64, error)
	jsonSetNXFn   func(ctx context.Context, key, path string, data []byte) (bool, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	alterIndexFn  func(ctx context.Context, name string, fields []db.IndexField) error
	searchFn      func(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

func (m *mockStore) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) DelCount(ctx context.Context, key string) (int64, error) {
	if m.delCountFn != nil {
		return m.delCountFn(ctx, key)
	}
	return 1, nil
}

func (m *mockStore) JSONSetNX(ctx context.Context, key, path string, data []byte) (bool, error) {
	if m.jsonSetNXFn != nil {
		return m.jsonSetNXFn(ctx, key, path, data)
	}
	return true, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) AlterIndex(ctx context.Context, name string, fields []db.IndexField) error {
	if m.alterIndexFn != nil {
		return m.alterIndexFn(ctx, name, fields)
	}
	return nil
}

func (m *mockStore) Search(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, ""), ms
}
