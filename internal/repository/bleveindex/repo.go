package bleveindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	blevemapping "github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/kailas-cloud/searchsync/internal/domain"
	"github.com/kailas-cloud/searchsync/internal/domain/index"
	"github.com/kailas-cloud/searchsync/internal/domain/mapping"
)

// SourceField holds the JSON projection so hits carry their source back.
const SourceField = "__source"

const defaultPageSize = 10

var errClosed = errors.New("bleve index is closed")

type entry struct {
	mapping *blevemapping.IndexMappingImpl
	types   map[string]struct{}
	idx     bleve.Index
	// write serializes the lookup-then-write pairs so Created is exact per id.
	write sync.Mutex
}

// Repo is the index client adapter backed by embedded bleve indexes, one per index name.
// Mappings must be installed before an index is first used; bleve cannot change them afterwards.
type Repo struct {
	mu      sync.Mutex
	dir     string
	entries map[string]*entry
	closed  bool
}

// New creates a bleve adapter. An empty dir keeps every index in memory,
// otherwise each index lives at <dir>/<index>.bleve.
func New(dir string) *Repo {
	return &Repo{dir: dir, entries: make(map[string]*entry)}
}

// Ping reports whether the adapter is still open.
func (r *Repo) Ping(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return errClosed
	}
	return nil
}

// Close closes every opened index.
func (r *Repo) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error
	for name, e := range r.entries {
		if e.idx == nil {
			continue
		}
		if err := e.idx.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// CreateMapping registers the document mapping of typeName within indexName.
func (r *Repo) CreateMapping(_ context.Context, indexName, typeName string, m mapping.Mapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return errClosed
	}
	for _, name := range m.Names() {
		if name == index.TypeField || name == SourceField {
			return fmt.Errorf("%s/%s: field %q is reserved: %w", indexName, typeName, name, domain.ErrInvalidSchema)
		}
	}

	e, ok := r.entries[indexName]
	if !ok {
		e = &entry{mapping: newIndexMapping(), types: make(map[string]struct{})}
		r.entries[indexName] = e
	}
	if e.idx != nil {
		return fmt.Errorf("%s/%s: %w", indexName, typeName, domain.ErrMappingSealed)
	}

	e.mapping.AddDocumentMapping(typeName, buildDocumentMapping(m))
	e.types[typeName] = struct{}{}
	return nil
}

// IndexDocument writes projection under ref, replacing any previous version.
func (r *Repo) IndexDocument(_ context.Context, ref index.Ref, projection map[string]any) (index.WriteResult, error) {
	e, err := r.openEntry(ref.Index, ref.Type)
	if err != nil {
		return index.WriteResult{}, err
	}
	for _, name := range []string{index.TypeField, SourceField} {
		if _, ok := projection[name]; ok {
			return index.WriteResult{}, fmt.Errorf("field %q is reserved", name)
		}
	}

	source, err := json.Marshal(projection)
	if err != nil {
		return index.WriteResult{}, fmt.Errorf("marshal projection: %w", err)
	}
	body := make(map[string]any, len(projection)+2)
	maps.Copy(body, projection)
	body[index.TypeField] = ref.Type
	body[SourceField] = string(source)

	id := docID(ref.Type, ref.ID)
	e.write.Lock()
	defer e.write.Unlock()
	existing, err := e.idx.Document(id)
	if err != nil {
		return index.WriteResult{}, fmt.Errorf("lookup %s: %w", id, err)
	}
	if err := e.idx.Index(id, body); err != nil {
		return index.WriteResult{}, fmt.Errorf("index %s: %w", id, err)
	}

	res := index.WriteResult{Index: ref.Index, Type: ref.Type, ID: ref.ID, Created: existing == nil, Result: "updated"}
	if res.Created {
		res.Result = "created"
	}
	return res, nil
}

// DeleteDocument removes the document under ref.
// A missing document is reported as domain.ErrIndexDocumentNotFound.
func (r *Repo) DeleteDocument(_ context.Context, ref index.Ref) error {
	e, err := r.openEntry(ref.Index, "")
	if err != nil {
		return err
	}

	id := docID(ref.Type, ref.ID)
	e.write.Lock()
	defer e.write.Unlock()
	existing, err := e.idx.Document(id)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", id, err)
	}
	if existing == nil {
		return fmt.Errorf("%s/%s/%s: %w", ref.Index, ref.Type, ref.ID, domain.ErrIndexDocumentNotFound)
	}
	if err := e.idx.Delete(id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

// Query runs q.Body as a bleve query-string query. When q.Type is set only documents of that type match.
func (r *Repo) Query(ctx context.Context, q index.Query) (index.Response, error) {
	idx, err := r.open(q.Index, "")
	if err != nil {
		return index.Response{}, err
	}

	bq, err := buildQuery(q.Type, q.Body)
	if err != nil {
		return index.Response{}, err
	}

	size := q.Size
	if size <= 0 {
		size = defaultPageSize
	}
	req := bleve.NewSearchRequestOptions(bq, size, q.From, false)
	req.Fields = []string{SourceField, index.TypeField}
	if len(q.Sort) > 0 {
		order := make([]string, 0, len(q.Sort))
		for _, s := range q.Sort {
			if s.Descending {
				order = append(order, "-"+s.Field)
			} else {
				order = append(order, s.Field)
			}
		}
		req.SortBy(order)
	}

	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return index.Response{}, fmt.Errorf("search %s: %w", q.Index, err)
	}

	hits := make([]index.Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		typeName, id, ok := splitDocID(h.ID)
		if !ok {
			continue
		}
		if t, ok := h.Fields[index.TypeField].(string); ok && t != "" {
			typeName = t
		}
		hits = append(hits, index.Hit{
			ID:     id,
			Index:  q.Index,
			Type:   typeName,
			Score:  h.Score,
			Source: decodeSource(h.Fields[SourceField]),
		})
	}
	return index.Response{Total: int(res.Total), Hits: hits}, nil
}

// open returns the bleve index for name, creating or opening it on first use.
// A non-empty typeName must have a registered mapping.
func (r *Repo) open(name, typeName string) (bleve.Index, error) {
	e, err := r.openEntry(name, typeName)
	if err != nil {
		return nil, err
	}
	return e.idx, nil
}

func (r *Repo) openEntry(name, typeName string) (*entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, errClosed
	}

	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("index %s: %w", name, domain.ErrNotFound)
	}
	if typeName != "" {
		if _, ok := e.types[typeName]; !ok {
			return nil, fmt.Errorf("type %s in index %s: %w", typeName, name, domain.ErrNotFound)
		}
	}
	if e.idx != nil {
		return e, nil
	}

	idx, err := r.openIndex(name, e.mapping)
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", name, err)
	}
	e.idx = idx
	return e, nil
}

func (r *Repo) openIndex(name string, im *blevemapping.IndexMappingImpl) (bleve.Index, error) {
	if r.dir == "" {
		return bleve.NewMemOnly(im)
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", r.dir, err)
	}
	path := filepath.Join(r.dir, name+".bleve")
	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		return bleve.New(path, im)
	}
	return idx, err
}

func buildQuery(typeName, body string) (query.Query, error) {
	body = strings.TrimSpace(body)

	var q query.Query
	if body == "" || body == "*" {
		q = bleve.NewMatchAllQuery()
	} else {
		parsed, err := bleve.NewQueryStringQuery(body).Parse()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedQuery, err)
		}
		q = parsed
	}

	if typeName == "" {
		return q, nil
	}
	tq := bleve.NewTermQuery(typeName)
	tq.SetField(index.TypeField)
	return bleve.NewConjunctionQuery(q, tq), nil
}

func decodeSource(v any) map[string]any {
	s, ok := v.(string)
	if !ok || s == "" {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil || m == nil {
		return map[string]any{}
	}
	return m
}

// Ids are unique per type, the bleve document id is unique per index.
func docID(typeName, id string) string { return typeName + ":" + id }

func splitDocID(v string) (typeName, id string, ok bool) {
	typeName, id, ok = strings.Cut(v, ":")
	return typeName, id, ok && typeName != "" && id != ""
}
