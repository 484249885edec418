package searchindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kailas-cloud/searchsync/internal/db"
	"github.com/kailas-cloud/searchsync/internal/domain"
	"github.com/kailas-cloud/searchsync/internal/domain/index"
	"github.com/kailas-cloud/searchsync/internal/domain/mapping"
)

var ptr = func(f float64) *float64 { return &f }

func tweetMapping() mapping.Mapping {
	return mapping.Reconstruct(
		mapping.Property{Name: "user", Type: mapping.String},
		mapping.Property{Name: "message", Type: mapping.String, Boost: ptr(2)},
		mapping.Property{Name: "post_date", Type: "date"},
		mapping.Property{Name: "retweets", Type: mapping.Integer},
		mapping.Property{Name: "meta", Type: mapping.Object},
	)
}

// --- CreateMapping ---

func TestCreateMapping_CreatesJSONIndex(t *testing.T) {
	repo, ms := newTestRepo(t)

	var got *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		got = def
		return nil
	}
	ms.alterIndexFn = func(context.Context, string, []db.IndexField) error {
		t.Fatal("alter must not be called for a fresh index")
		return nil
	}

	if err := repo.CreateMapping(context.Background(), "tweets", "tweet", tweetMapping()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "searchsync:idx:tweets" {
		t.Errorf("unexpected index name: %s", got.Name)
	}
	if len(got.Prefixes) != 1 || got.Prefixes[0] != "searchsync:idx:tweets:" {
		t.Errorf("unexpected prefixes: %v", got.Prefixes)
	}

	want := map[string]db.IndexFieldType{
		"__type":    db.IndexFieldTag,
		"user":      db.IndexFieldText,
		"message":   db.IndexFieldText,
		"post_date": db.IndexFieldTag,
		"retweets":  db.IndexFieldNumeric,
	}
	if len(got.Fields) != len(want) {
		t.Fatalf("expected %d fields, got %d: %+v", len(want), len(got.Fields), got.Fields)
	}
	for _, f := range got.Fields {
		typ, ok := want[f.Key()]
		if !ok {
			t.Errorf("unexpected field %s", f.Key())
			continue
		}
		if f.Type != typ {
			t.Errorf("field %s: expected type %v, got %v", f.Key(), typ, f.Type)
		}
		if f.Name != "$."+f.Key() {
			t.Errorf("field %s: expected JSON path, got %s", f.Key(), f.Name)
		}
		if f.Key() == "message" && f.Weight != 2 {
			t.Errorf("expected boost carried as weight 2, got %v", f.Weight)
		}
	}
}

func TestCreateMapping_SharedIndexAlters(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error { return db.ErrIndexExists }
	var alteredName string
	var alteredFields []db.IndexField
	ms.alterIndexFn = func(_ context.Context, name string, fields []db.IndexField) error {
		alteredName = name
		alteredFields = fields
		return nil
	}

	talk := mapping.Reconstruct(mapping.Property{Name: "title", Type: mapping.String})
	if err := repo.CreateMapping(context.Background(), "tweets", "talk", talk); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alteredName != "searchsync:idx:tweets" {
		t.Errorf("unexpected altered index: %s", alteredName)
	}
	if len(alteredFields) != 2 || alteredFields[1].Key() != "title" {
		t.Errorf("unexpected altered fields: %+v", alteredFields)
	}
}

func TestCreateMapping_InvalidPropertyName(t *testing.T) {
	repo, _ := newTestRepo(t)
	m := mapping.Reconstruct(mapping.Property{Name: "has space", Type: mapping.String})
	if err := repo.CreateMapping(context.Background(), "tweets", "tweet", m); err == nil {
		t.Fatal("expected error for invalid attribute name")
	}
}

func TestCreateMapping_RejectsTypeField(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error {
		t.Error("no index may be created for a mapping that shadows the type tag")
		return nil
	}
	m := mapping.Reconstruct(mapping.Property{Name: index.TypeField, Type: mapping.String})
	err := repo.CreateMapping(context.Background(), "tweets", "tweet", m)
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestCreateMapping_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error { return errors.New("connection reset") }
	if err := repo.CreateMapping(context.Background(), "tweets", "tweet", tweetMapping()); err == nil {
		t.Fatal("expected error")
	}
}

// --- IndexDocument ---

func TestIndexDocument_Created(t *testing.T) {
	repo, ms := newTestRepo(t)

	var body map[string]any
	ms.jsonSetNXFn = func(_ context.Context, key, path string, data []byte) (bool, error) {
		if key != "searchsync:idx:tweets:tweet:1" || path != "$" {
			t.Errorf("unexpected key/path: %s %s", key, path)
		}
		return true, json.Unmarshal(data, &body)
	}
	ms.jsonSetFn = func(context.Context, string, string, []byte) error {
		t.Error("overwrite must not run when the create succeeded")
		return nil
	}

	ref := index.Ref{Index: "tweets", Type: "tweet", ID: "1"}
	res, err := repo.IndexDocument(context.Background(), ref, map[string]any{"message": "I like Riak better"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Created || res.Result != "created" {
		t.Errorf("expected created result, got %+v", res)
	}
	if res.Index != "tweets" || res.Type != "tweet" || res.ID != "1" {
		t.Errorf("unexpected ref in result: %+v", res)
	}
	if body["__type"] != "tweet" || body["message"] != "I like Riak better" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestIndexDocument_RejectsTypeField(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonSetNXFn = func(context.Context, string, string, []byte) (bool, error) {
		t.Error("nothing may be written")
		return true, nil
	}
	ref := index.Ref{Index: "tweets", Type: "tweet", ID: "1"}
	if _, err := repo.IndexDocument(context.Background(), ref, map[string]any{index.TypeField: "talk"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestIndexDocument_Updated(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonSetNXFn = func(context.Context, string, string, []byte) (bool, error) { return false, nil }
	var overwritten []byte
	ms.jsonSetFn = func(_ context.Context, _, _ string, data []byte) error {
		overwritten = data
		return nil
	}

	res, err := repo.IndexDocument(context.Background(), index.Ref{Index: "tweets", Type: "tweet", ID: "1"}, map[string]any{"message": "v2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Created || res.Result != "updated" {
		t.Errorf("expected updated result, got %+v", res)
	}
	if !strings.Contains(string(overwritten), `"v2"`) {
		t.Errorf("existing document must be overwritten, got %s", overwritten)
	}
}

// Of several writers racing on one id only the one whose create lands reports created.
func TestIndexDocument_ConcurrentCreateReportedOnce(t *testing.T) {
	repo, ms := newTestRepo(t)
	var mu sync.Mutex
	present := map[string]bool{}
	ms.jsonSetNXFn = func(_ context.Context, key, _ string, _ []byte) (bool, error) {
		mu.Lock()
		defer mu.Unlock()
		if present[key] {
			return false, nil
		}
		present[key] = true
		return true, nil
	}

	const writers = 8
	var created atomic.Int32
	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := repo.IndexDocument(context.Background(), index.Ref{Index: "tweets", Type: "tweet", ID: "1"}, map[string]any{})
			if err != nil {
				t.Errorf("index: %v", err)
				return
			}
			if res.Created {
				created.Add(1)
			}
		}()
	}
	wg.Wait()
	if created.Load() != 1 {
		t.Errorf("created reported %d times, want 1", created.Load())
	}
}

func TestIndexDocument_DoesNotMutateProjection(t *testing.T) {
	repo, _ := newTestRepo(t)
	projection := map[string]any{"message": "x"}
	if _, err := repo.IndexDocument(context.Background(), index.Ref{Index: "tweets", Type: "tweet", ID: "1"}, projection); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := projection["__type"]; ok {
		t.Error("projection must not be mutated")
	}
}

func TestIndexDocument_WriteError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonSetNXFn = func(context.Context, string, string, []byte) (bool, error) { return false, errors.New("OOM") }

	_, err := repo.IndexDocument(context.Background(), index.Ref{Index: "tweets", Type: "tweet", ID: "1"}, map[string]any{})
	if err == nil {
		t.Fatal("expected error")
	}
}

// --- DeleteDocument ---

func TestDeleteDocument_Success(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.delCountFn = func(_ context.Context, key string) (int64, error) {
		if key != "searchsync:idx:tweets:tweet:1" {
			t.Errorf("unexpected key: %s", key)
		}
		return 1, nil
	}
	if err := repo.DeleteDocument(context.Background(), index.Ref{Index: "tweets", Type: "tweet", ID: "1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteDocument_NotFound(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.delCountFn = func(context.Context, string) (int64, error) { return 0, nil }

	err := repo.DeleteDocument(context.Background(), index.Ref{Index: "tweets", Type: "tweet", ID: "1"})
	if !errors.Is(err, domain.ErrIndexDocumentNotFound) {
		t.Fatalf("expected ErrIndexDocumentNotFound, got %v", err)
	}
}

func TestDeleteDocument_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.delCountFn = func(context.Context, string) (int64, error) { return 0, errors.New("timeout") }

	err := repo.DeleteDocument(context.Background(), index.Ref{Index: "tweets", Type: "tweet", ID: "1"})
	if err == nil || errors.Is(err, domain.ErrIndexDocumentNotFound) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

// --- Query ---

func TestQuery_ScopedToType(t *testing.T) {
	repo, ms := newTestRepo(t)

	var got *db.TextQuery
	ms.searchFn = func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
		got = q
		return &db.SearchResult{
			Total: 1,
			Entries: []db.SearchEntry{{
				Key:    "searchsync:idx:tweets:tweet:1",
				Score:  1.5,
				Fields: map[string]string{"$": `{"__type":"tweet","message":"James"}`},
			}},
		}, nil
	}

	resp, err := repo.Query(context.Background(), index.Query{
		Index: "tweets", Type: "tweet", Body: "James", From: 5, Size: 7,
		Sort: []index.SortOrder{{Field: "post_date", Descending: true}, {Field: "ignored"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.IndexName != "searchsync:idx:tweets" || got.Query != "@__type:{tweet} (James)" {
		t.Errorf("unexpected query: %+v", got)
	}
	if got.Offset != 5 || got.Limit != 7 {
		t.Errorf("unexpected paging: offset=%d limit=%d", got.Offset, got.Limit)
	}
	if got.SortBy == nil || got.SortBy.Field != "post_date" || !got.SortBy.Descending {
		t.Errorf("unexpected sort: %+v", got.SortBy)
	}

	if resp.Total != 1 || len(resp.Hits) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	h := resp.Hits[0]
	if h.ID != "1" || h.Type != "tweet" || h.Index != "tweets" || h.Score != 1.5 {
		t.Errorf("unexpected hit: %+v", h)
	}
	if _, ok := h.Source["__type"]; ok {
		t.Error("__type must not leak into the source")
	}
	if h.Source["message"] != "James" {
		t.Errorf("unexpected source: %v", h.Source)
	}
}

func TestQuery_Defaults(t *testing.T) {
	repo, ms := newTestRepo(t)

	var got *db.TextQuery
	ms.searchFn = func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
		got = q
		return &db.SearchResult{}, nil
	}

	if _, err := repo.Query(context.Background(), index.Query{Index: "tweets"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Query != "" || got.Limit != defaultPageSize || got.SortBy != nil {
		t.Errorf("unexpected query: %+v", got)
	}
}

func TestQuery_MalformedCarriesDiagnostic(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchFn = func(context.Context, *db.TextQuery) (*db.SearchResult, error) {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("%w: Syntax error at offset 3", db.ErrQueryRejected)}
	}

	_, err := repo.Query(context.Background(), index.Query{Index: "tweets", Body: "((("})
	if !errors.Is(err, domain.ErrMalformedQuery) {
		t.Fatalf("expected ErrMalformedQuery, got %v", err)
	}
	if want := "Syntax error at offset 3"; !strings.Contains(err.Error(), want) {
		t.Errorf("expected %q in %q", want, err.Error())
	}
}

func TestQuery_UnknownIndex(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchFn = func(context.Context, *db.TextQuery) (*db.SearchResult, error) { return nil, db.ErrIndexNotFound }

	_, err := repo.Query(context.Background(), index.Query{Index: "tweets"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestQuery_SkipsForeignKeys(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchFn = func(context.Context, *db.TextQuery) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 2, Entries: []db.SearchEntry{
			{Key: "other:key", Fields: map[string]string{}},
			{Key: "searchsync:idx:tweets:talk:a:b", Fields: map[string]string{"$": `[{"title":"x"}]`}},
		}}, nil
	}

	resp, err := repo.Query(context.Background(), index.Query{Index: "tweets"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(resp.Hits))
	}
	if h := resp.Hits[0]; h.Type != "talk" || h.ID != "a:b" || h.Source["title"] != "x" {
		t.Errorf("unexpected hit: %+v", h)
	}
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		typeName, body, want string
	}{
		{"", "", ""},
		{"", "James", "James"},
		{"tweet", "", "@__type:{tweet}"},
		{"tweet", "*", "@__type:{tweet}"},
		{"tweet", " @user:Carr ", "@__type:{tweet} (@user:Carr)"},
	}
	for _, tc := range tests {
		if got := buildQuery(tc.typeName, tc.body); got != tc.want {
			t.Errorf("buildQuery(%q, %q) = %q, want %q", tc.typeName, tc.body, got, tc.want)
		}
	}
}
