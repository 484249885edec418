package searchindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/kailas-cloud/searchsync/internal/db"
	"github.com/kailas-cloud/searchsync/internal/domain"
	"github.com/kailas-cloud/searchsync/internal/domain/index"
	"github.com/kailas-cloud/searchsync/internal/domain/mapping"
)

// DefaultKeyPrefix namespaces every key the adapter writes.
const DefaultKeyPrefix = "searchsync:"

const defaultPageSize = 10

// store is the consumer interface for the RediSearch index (ISP).
type store interface {
	Ping(ctx context.Context) error
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetNX(ctx context.Context, key, path string, data []byte) (bool, error)
	DelCount(ctx context.Context, key string) (int64, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	AlterIndex(ctx context.Context, name string, fields []db.IndexField) error
	Search(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// Repo is the index client adapter backed by RediSearch over JSON documents.
// Several types may share one FT index; each document carries its type in __type.
type Repo struct {
	store  store
	prefix string
}

// New creates a RediSearch index adapter. An empty prefix falls back to DefaultKeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

// Ping checks index backend connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

// CreateMapping installs the mapping of typeName into indexName.
// When the FT index already exists (another type got there first) the missing fields are added with FT.ALTER.
func (r *Repo) CreateMapping(ctx context.Context, indexName, typeName string, m mapping.Mapping) error {
	if slices.Contains(m.Names(), index.TypeField) {
		return fmt.Errorf("%s/%s: field %q is reserved: %w", indexName, typeName, index.TypeField, domain.ErrInvalidSchema)
	}
	def, err := buildIndex(r.indexKey(indexName), r.indexPrefix(indexName), m)
	if err != nil {
		return fmt.Errorf("build index %s/%s: %w", indexName, typeName, err)
	}

	err = r.store.CreateIndex(ctx, def)
	if err == nil {
		return nil
	}
	if !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", indexName, err)
	}
	if err := r.store.AlterIndex(ctx, def.Name, def.Fields); err != nil {
		return fmt.Errorf("alter index %s: %w", indexName, err)
	}
	return nil
}

// IndexDocument writes projection under ref, replacing any previous version.
func (r *Repo) IndexDocument(ctx context.Context, ref index.Ref, projection map[string]any) (index.WriteResult, error) {
	if _, ok := projection[index.TypeField]; ok {
		return index.WriteResult{}, fmt.Errorf("field %q is reserved", index.TypeField)
	}
	key := r.docKey(ref)

	body := make(map[string]any, len(projection)+1)
	maps.Copy(body, projection)
	body[index.TypeField] = ref.Type

	data, err := json.Marshal(body)
	if err != nil {
		return index.WriteResult{}, fmt.Errorf("marshal projection: %w", err)
	}

	created, err := db.UpsertJSON(ctx, r.store, key, data)
	if err != nil {
		return index.WriteResult{}, err
	}

	res := index.WriteResult{Index: ref.Index, Type: ref.Type, ID: ref.ID, Created: created, Result: "updated"}
	if res.Created {
		res.Result = "created"
	}
	return res, nil
}

// DeleteDocument removes the document under ref.
// A missing document is reported as domain.ErrIndexDocumentNotFound.
func (r *Repo) DeleteDocument(ctx context.Context, ref index.Ref) error {
	key := r.docKey(ref)
	n, err := r.store.DelCount(ctx, key)
	if err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("%s/%s/%s: %w", ref.Index, ref.Type, ref.ID, domain.ErrIndexDocumentNotFound)
	}
	return nil
}

// Query runs q.Body as a RediSearch query. When q.Type is set only documents of that type match.
func (r *Repo) Query(ctx context.Context, q index.Query) (index.Response, error) {
	size := q.Size
	if size <= 0 {
		size = defaultPageSize
	}

	tq := &db.TextQuery{
		IndexName:    r.indexKey(q.Index),
		Query:        buildQuery(q.Type, q.Body),
		Offset:       q.From,
		Limit:        size,
		ReturnFields: []string{"$"},
	}
	// FT.SEARCH accepts a single SORTBY; later directives are dropped.
	if len(q.Sort) > 0 {
		tq.SortBy = &db.SortBy{Field: q.Sort[0].Field, Descending: q.Sort[0].Descending}
	}

	sr, err := r.store.Search(ctx, tq)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrQueryRejected):
			return index.Response{}, fmt.Errorf("%w: %w", domain.ErrMalformedQuery, err)
		case errors.Is(err, db.ErrIndexNotFound):
			return index.Response{}, fmt.Errorf("index %s: %w", q.Index, domain.ErrNotFound)
		default:
			return index.Response{}, fmt.Errorf("search %s: %w", q.Index, err)
		}
	}

	return r.toResponse(q.Index, sr), nil
}

func (r *Repo) toResponse(indexName string, sr *db.SearchResult) index.Response {
	if sr == nil {
		return index.Response{}
	}
	prefix := r.indexPrefix(indexName)
	hits := make([]index.Hit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		typeName, id, ok := splitDocKey(e.Key, prefix)
		if !ok {
			continue
		}
		source := parseSource(e.Fields["$"])
		if t, ok := source[index.TypeField].(string); ok && t != "" {
			typeName = t
		}
		delete(source, index.TypeField)
		hits = append(hits, index.Hit{
			ID:     id,
			Index:  indexName,
			Type:   typeName,
			Score:  e.Score,
			Source: source,
		})
	}
	return index.Response{Total: sr.Total, Hits: hits}
}

// buildQuery scopes body to typeName. Body syntax is passed through untouched.
func buildQuery(typeName, body string) string {
	body = strings.TrimSpace(body)
	if body == "*" {
		body = ""
	}
	if typeName == "" {
		return body
	}
	filter := db.TagFilter(index.TypeField, typeName)
	if body == "" {
		return filter
	}
	return filter + " (" + body + ")"
}

// parseSource decodes a JSON.GET-style payload. RediSearch returns "$" either as the bare
// object or wrapped in a single-element array depending on dialect.
func parseSource(raw string) map[string]any {
	if raw == "" {
		return map[string]any{}
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		return obj
	}
	var arr []map[string]any
	if err := json.Unmarshal([]byte(raw), &arr); err == nil && len(arr) > 0 && arr[0] != nil {
		return arr[0]
	}
	return map[string]any{}
}
