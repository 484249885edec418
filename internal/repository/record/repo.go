package record

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/searchsync/internal/db"
	"github.com/kailas-cloud/searchsync/internal/domain"
	domdoc "github.com/kailas-cloud/searchsync/internal/domain/document"
)

// DefaultKeyPrefix namespaces every record key.
const DefaultKeyPrefix = "searchsync:"

// store is the consumer interface for records (ISP).
type store interface {
	Ping(ctx context.Context) error
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetNX(ctx context.Context, key, path string, data []byte) (bool, error)
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	DelCount(ctx context.Context, key string) (int64, error)
}

// Repo is the primary record store on Redis JSON.
type Repo struct {
	store  store
	prefix string
}

// New creates a Redis JSON record repository. An empty prefix falls back to DefaultKeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

// Ping checks store connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

// Put creates or replaces a record. Returns true if created.
func (r *Repo) Put(ctx context.Context, collection string, doc *domdoc.Document) (bool, error) {
	key := r.key(collection, doc.ID())
	data, err := json.Marshal(doc.Fields())
	if err != nil {
		return false, fmt.Errorf("marshal record: %w", err)
	}

	return db.UpsertJSON(ctx, r.store, key, data)
}

// Get returns a record by ID.
func (r *Repo) Get(ctx context.Context, collection, id string) (domdoc.Document, error) {
	key := r.key(collection, id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domdoc.Document{}, domain.ErrDocumentNotFound
		}
		return domdoc.Document{}, fmt.Errorf("json.get %s: %w", key, err)
	}

	// JSON.GET with a JSONPath returns an array of matches.
	var docs []map[string]any
	if err := decode(raw, &docs); err != nil {
		return domdoc.Document{}, fmt.Errorf("unmarshal record %s: %w", key, err)
	}
	if len(docs) == 0 {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	fields := docs[0]
	if fields == nil {
		fields = map[string]any{}
	}
	return domdoc.Reconstruct(id, fields), nil
}

// Delete removes a record.
func (r *Repo) Delete(ctx context.Context, collection, id string) error {
	key := r.key(collection, id)
	n, err := r.store.DelCount(ctx, key)
	if err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	if n == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *Repo) key(collection, id string) string {
	return fmt.Sprintf("%sdoc:%s:%s", r.prefix, collection, id)
}

// decode keeps integers exact by decoding numbers as json.Number.
func decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
