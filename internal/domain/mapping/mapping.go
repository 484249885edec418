package mapping

import (
	"math"

	"github.com/kailas-cloud/searchsync/internal/domain"
	"github.com/kailas-cloud/searchsync/internal/domain/schema"
)

// Type is an index-native field type.
type Type string

// Index-native types produced from declared schema types.
// Overrides may introduce any other name.
const (
	String  Type = "string"
	Number  Type = "number"
	Float   Type = "float"
	Integer Type = "integer"
	Boolean Type = "boolean"
	Object  Type = "object"
)

// Property is one field of an index mapping.
type Property struct {
	Name  string
	Type  Type
	Boost *float64
}

// Mapping is an ordered, immutable index mapping. The primary key is never present.
type Mapping struct {
	props []Property
	pos   map[string]int
}

// Reconstruct creates a Mapping from already validated properties.
func Reconstruct(props ...Property) Mapping {
	m := Mapping{props: make([]Property, len(props)), pos: make(map[string]int, len(props))}
	copy(m.props, props)
	for i, p := range m.props {
		m.pos[p.Name] = i
	}
	return m
}

// Properties returns the properties in schema order.
func (m Mapping) Properties() []Property {
	out := make([]Property, len(m.props))
	copy(out, m.props)
	return out
}

// Names returns the mapped field names in schema order.
func (m Mapping) Names() []string {
	out := make([]string, len(m.props))
	for i, p := range m.props {
		out[i] = p.Name
	}
	return out
}

// Lookup returns the property for name.
func (m Mapping) Lookup(name string) (Property, bool) {
	i, ok := m.pos[name]
	if !ok {
		return Property{}, false
	}
	return m.props[i], true
}

// Has reports whether name is mapped.
func (m Mapping) Has(name string) bool {
	_, ok := m.pos[name]
	return ok
}

// Len returns the number of mapped fields.
func (m Mapping) Len() int { return len(m.props) }

// Generate derives the index mapping of s. It performs no I/O.
//
// When no field declares Indexed every field is mapped, otherwise only fields
// with Indexed set to true. The primary key is always skipped.
func Generate(s schema.Schema) (Mapping, error) {
	if s.PrimaryKey() == "" {
		return Mapping{}, &domain.MappingGenerationError{Reason: "primary key is required"}
	}

	fields := s.Fields()
	selective := false
	seen := make(map[string]struct{}, len(fields))
	for i := range fields {
		f := &fields[i]
		if f.Name == "" {
			return Mapping{}, &domain.MappingGenerationError{Reason: "field name is required"}
		}
		if _, dup := seen[f.Name]; dup {
			return Mapping{}, &domain.MappingGenerationError{Field: f.Name, Reason: "duplicate field"}
		}
		seen[f.Name] = struct{}{}
		if f.Indexed != nil {
			selective = true
		}
		if err := checkAttributes(f); err != nil {
			return Mapping{}, err
		}
	}

	props := make([]Property, 0, len(fields))
	for i := range fields {
		f := &fields[i]
		if f.Name == s.PrimaryKey() {
			continue
		}
		if selective && (f.Indexed == nil || !*f.Indexed) {
			continue
		}

		p := Property{Name: f.Name, Type: resolveType(f)}
		if f.Boost != nil {
			b := *f.Boost
			p.Boost = &b
		}
		props = append(props, p)
	}

	return Reconstruct(props...), nil
}

func checkAttributes(f *schema.Field) error {
	if f.Boost != nil {
		b := *f.Boost
		if math.IsNaN(b) || math.IsInf(b, 0) || b <= 0 {
			return &domain.MappingGenerationError{Field: f.Name, Reason: "boost must be a positive finite number"}
		}
	}
	if f.Type == schema.Number && !f.NumberKind.IsValid() {
		return &domain.MappingGenerationError{Field: f.Name, Reason: "unknown number kind " + string(f.NumberKind)}
	}
	return nil
}

func resolveType(f *schema.Field) Type {
	if f.TypeOverride != "" {
		return Type(f.TypeOverride)
	}
	switch f.Type {
	case schema.String, schema.Identifier:
		return String
	case schema.Number:
		switch f.NumberKind {
		case schema.NumberFloat:
			return Float
		case schema.NumberInteger:
			return Integer
		default:
			return Number
		}
	case schema.Boolean:
		return Boolean
	default:
		// date, object and anything unrecognized
		return Object
	}
}
