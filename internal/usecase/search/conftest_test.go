package search

import (
	"context"
	"sync"
	"testing"

	"github.com/kailas-cloud/searchsync/internal/domain"
	domdoc "github.com/kailas-cloud/searchsync/internal/domain/document"
	"github.com/kailas-cloud/searchsync/internal/domain/index"
	"github.com/kailas-cloud/searchsync/internal/domain/mapping"
	dommodel "github.com/kailas-cloud/searchsync/internal/domain/model"
	"github.com/kailas-cloud/searchsync/internal/domain/schema"
	"github.com/kailas-cloud/searchsync/internal/domain/search/request"
)

// --- Mocks ---

type mockQuerier struct {
	resp index.Response
	err  error
	last index.Query
}

func (m *mockQuerier) Query(_ context.Context, q index.Query) (index.Response, error) {
	m.last = q
	return m.resp, m.err
}

type mockRecords struct {
	mu    sync.Mutex
	docs  map[string]domdoc.Document
	errs  map[string]error
	calls []string
}

func (m *mockRecords) Get(_ context.Context, collection, id string) (domdoc.Document, error) {
	m.mu.Lock()
	m.calls = append(m.calls, collection+"/"+id)
	m.mu.Unlock()
	if err, ok := m.errs[id]; ok {
		return domdoc.Document{}, err
	}
	if d, ok := m.docs[id]; ok {
		return d, nil
	}
	return domdoc.Document{}, domain.ErrDocumentNotFound
}

type mockShared map[string]bool

func (m mockShared) IsShared(index string) bool { return m[index] }

// --- Fixtures ---

func testModel(t *testing.T, d dommodel.Definition) dommodel.Model {
	t.Helper()
	mp, err := mapping.Generate(d.Schema)
	if err != nil {
		t.Fatalf("generate mapping: %v", err)
	}
	m, err := dommodel.New(d, mp)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	return m
}

func tweetModel(t *testing.T, hydrate bool) dommodel.Model {
	t.Helper()
	return testModel(t, dommodel.Definition{
		Name:    "Tweet",
		Hydrate: hydrate,
		Schema: schema.New("",
			schema.Field{Name: "user", Type: schema.String, Indexed: schema.Bool(true)},
			schema.Field{Name: "message", Type: schema.String, Indexed: schema.Bool(true)},
			schema.Field{Name: "post_date", Type: schema.Date},
		),
	})
}

func jamesCarrDocument(t *testing.T) domdoc.Document {
	t.Helper()
	doc, err := domdoc.New("1", map[string]any{
		"user":      "jamescarr",
		"message":   "I like Riak better",
		"post_date": "2012-12-05T10:00:00Z",
	}, "_id")
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return doc
}

func jamesCarrHit() index.Hit {
	return index.Hit{
		ID: "1", Index: "tweets", Type: "tweet", Score: 0.9,
		Source: map[string]any{"user": "jamescarr", "message": "I like Riak better"},
	}
}

func mustRequest(t *testing.T, query string, hydrate *bool) request.Request {
	t.Helper()
	req, err := request.New(query, hydrate, 0, 0, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return req
}

func boolPtr(v bool) *bool { return &v }
