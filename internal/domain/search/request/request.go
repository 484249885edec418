package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/searchsync/internal/domain/index"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed query body length.
	MaxQueryLength = 4096
	DefaultSize    = 20
	MaxSize        = 100
	MaxFrom        = 10000
)

// Request is a validated search query plus materialization options.
type Request struct {
	query   string
	hydrate *bool
	from    int
	size    int
	sort    []index.SortOrder
}

// New validates and normalizes search parameters.
// An empty query matches every document. hydrate nil defers to the model default.
func New(query string, hydrate *bool, from, size int, sort []index.SortOrder) (Request, error) {
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if from < 0 {
		return Request{}, fmt.Errorf("from must not be negative")
	}
	if from > MaxFrom {
		return Request{}, fmt.Errorf("from too large (max %d)", MaxFrom)
	}
	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	for _, s := range sort {
		if s.Field == "" {
			return Request{}, fmt.Errorf("sort field is required")
		}
	}

	var h *bool
	if hydrate != nil {
		v := *hydrate
		h = &v
	}
	sortCopy := make([]index.SortOrder, len(sort))
	copy(sortCopy, sort)

	return Request{query: strings.TrimSpace(query), hydrate: h, from: from, size: size, sort: sortCopy}, nil
}

// ParseSort reads "field", "-field" or "field:desc" directives.
func ParseSort(specs []string) ([]index.SortOrder, error) {
	out := make([]index.SortOrder, 0, len(specs))
	for _, s := range specs {
		s = strings.TrimSpace(s)
		order := index.SortOrder{Field: s}
		if rest, ok := strings.CutPrefix(s, "-"); ok {
			order = index.SortOrder{Field: rest, Descending: true}
		} else if name, dir, ok := strings.Cut(s, ":"); ok {
			switch strings.ToLower(dir) {
			case "asc":
				order = index.SortOrder{Field: name}
			case "desc":
				order = index.SortOrder{Field: name, Descending: true}
			default:
				return nil, fmt.Errorf("invalid sort direction %q", dir)
			}
		}
		if order.Field == "" {
			return nil, fmt.Errorf("sort field is required")
		}
		out = append(out, order)
	}
	return out, nil
}

// Query returns the backend-native query body.
func (r *Request) Query() string { return r.query }

// Hydrate returns the explicit hydration override and whether one was given.
func (r *Request) Hydrate() (value, set bool) {
	if r.hydrate == nil {
		return false, false
	}
	return *r.hydrate, true
}

// From returns the pagination offset.
func (r *Request) From() int { return r.from }

// Size returns the page size.
func (r *Request) Size() int { return r.size }

// Sort returns the pass-through sort directives.
func (r *Request) Sort() []index.SortOrder {
	out := make([]index.SortOrder, len(r.sort))
	copy(out, r.sort)
	return out
}
