package record

import (
	"context"
	"testing"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	pingFn      func(ctx context.Context) error
	jsonSetFn   func(ctx context.Context, key, path string, data []byte) error
	jsonSetNXFn func(ctx context.Context, key, path string, data []byte) (bool, error)
	jsonGetFn   func(ctx context.Context, key string, paths ...string) ([]byte, error)
	delCountFn  func(ctx context.Context, key string) (int64, error)
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

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return []byte("[]"), nil
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

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, ""), ms
}
