package result

// Hit is a single search hit: the index projection or, when hydrated, the full record.
type Hit struct {
	id       string
	index    string
	typeName string
	score    float64
	source   map[string]any
	hydrated bool
	err      error
}

// New creates an index-native hit.
func New(id, index, typeName string, score float64, source map[string]any) Hit {
	return Hit{id: id, index: index, typeName: typeName, score: score, source: source}
}

// WithRecord returns a copy whose source is the record merged over the projection.
func (h Hit) WithRecord(record map[string]any) Hit {
	merged := make(map[string]any, len(h.source)+len(record))
	for k, v := range h.source {
		merged[k] = v
	}
	for k, v := range record {
		merged[k] = v
	}
	h.source = merged
	h.hydrated = true
	h.err = nil
	return h
}

// WithError returns a copy carrying a per-hit error; the projection is kept.
func (h Hit) WithError(err error) Hit {
	h.err = err
	return h
}

// ID returns the document identifier.
func (h *Hit) ID() string { return h.id }

// Index returns the index the hit came from.
func (h *Hit) Index() string { return h.index }

// Type returns the owning type name.
func (h *Hit) Type() string { return h.typeName }

// Score returns the relevance score.
func (h *Hit) Score() float64 { return h.score }

// Source returns the hit fields.
func (h *Hit) Source() map[string]any { return h.source }

// Hydrated reports whether Source is the primary-store record.
func (h *Hit) Hydrated() bool { return h.hydrated }

// Err returns the per-hit error, e.g. a hydration miss.
func (h *Hit) Err() error { return h.err }

// Set is an ordered result set.
type Set struct {
	Total int
	Hits  []Hit
}

// Errors returns the per-hit errors in hit order.
func (s *Set) Errors() []error {
	var out []error
	for i := range s.Hits {
		if err := s.Hits[i].Err(); err != nil {
			out = append(out, err)
		}
	}
	return out
}
