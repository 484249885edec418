package document

import (
	"encoding/json"
	"fmt"
	"maps"
	"regexp"
	"time"

	"github.com/kailas-cloud/searchsync/internal/domain/mapping"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// MaxIDLength is the maximum document identifier length.
const MaxIDLength = 256

// Document is a primary-store record keyed by its identifier.
// The primary-key field is carried as the ID, never inside Fields.
type Document struct {
	id     string
	fields map[string]any
}

// New validates and creates a Document. A field named primaryKey is dropped from fields.
func New(id string, fields map[string]any, primaryKey string) (Document, error) {
	if err := ValidateID(id); err != nil {
		return Document{}, err
	}
	cp := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == "" {
			return Document{}, fmt.Errorf("field name is required")
		}
		if k == primaryKey {
			continue
		}
		cp[k] = v
	}
	return Document{id: id, fields: cp}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id string, fields map[string]any) Document {
	return Document{id: id, fields: fields}
}

// ValidateID checks a document identifier: ^[a-zA-Z0-9_.-]+$, 1-256 chars.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("document ID is required")
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("document ID too long (max %d)", MaxIDLength)
	}
	if !idRegex.MatchString(id) {
		return fmt.Errorf("document ID must be alphanumeric with underscores, dots and hyphens")
	}
	return nil
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Fields returns a shallow copy of the record fields.
func (d *Document) Fields() map[string]any { return maps.Clone(d.fields) }

// Field returns a single field value.
func (d *Document) Field(name string) (any, bool) {
	v, ok := d.fields[name]
	return v, ok
}

// Record returns every field plus the primary key set to the ID.
func (d *Document) Record(primaryKey string) map[string]any {
	out := make(map[string]any, len(d.fields)+1)
	maps.Copy(out, d.fields)
	out[primaryKey] = d.id
	return out
}

// Project returns the searchable projection: fields present in m or listed in always,
// each normalized to an index-native JSON value.
func (d *Document) Project(m mapping.Mapping, always []string) (map[string]any, error) {
	out := make(map[string]any, m.Len()+len(always))
	for _, name := range m.Names() {
		if err := d.projectField(out, name); err != nil {
			return nil, err
		}
	}
	for _, name := range always {
		if _, done := out[name]; done {
			continue
		}
		if err := d.projectField(out, name); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (d *Document) projectField(out map[string]any, name string) error {
	v, ok := d.fields[name]
	if !ok {
		return nil
	}
	nv, err := Normalize(v)
	if err != nil {
		return fmt.Errorf("project field %s: %w", name, err)
	}
	out[name] = nv
	return nil
}

// Normalize converts v to a value made only of JSON-native types.
func Normalize(v any) (any, error) {
	switch t := v.(type) {
	case nil, string, bool, float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return t, nil
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano), nil
	case []byte:
		return string(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return f, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			ne, err := Normalize(e)
			if err != nil {
				return nil, err
			}
			out[k] = ne
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			ne, err := Normalize(e)
			if err != nil {
				return nil, err
			}
			out[i] = ne
		}
		return out, nil
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("marshal %T: %w", t, err)
		}
		var out any
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("unmarshal %T: %w", t, err)
		}
		return out, nil
	}
}
