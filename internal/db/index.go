package db

import (
	"errors"
	"fmt"
)

// IndexFieldType enumerates the FT attribute kinds the index adapter emits.
type IndexFieldType int

const (
	IndexFieldNumeric IndexFieldType = iota
	IndexFieldTag
	IndexFieldText
)

func (t IndexFieldType) String() string {
	switch t {
	case IndexFieldNumeric:
		return "NUMERIC"
	case IndexFieldTag:
		return "TAG"
	case IndexFieldText:
		return "TEXT"
	default:
		return fmt.Sprintf("IndexFieldType(%d)", int(t))
	}
}

// IndexField is one attribute of an FT schema. Name is a JSONPath, Alias the
// attribute name queries use.
type IndexField struct {
	Name   string
	Alias  string
	Type   IndexFieldType
	Weight float64 // TEXT only; 0 leaves the server default
}

// Key returns the attribute name queries refer to.
func (f *IndexField) Key() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// IndexDefinition is the input of FT.CREATE. Indexes are always ON JSON.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// Validate checks that the definition can be sent to the server.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool, len(idx.Fields))
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("field %d: name is required", i)
		}
		key := f.Key()
		if seen[key] {
			return fmt.Errorf("duplicate field name: %s", key)
		}
		seen[key] = true
		if f.Weight < 0 {
			return fmt.Errorf("text weight must not be negative: %s", key)
		}
	}
	return nil
}

// IsValidIdentifier reports whether s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !isAlpha && !isDigit && r != '_' && r != ':' && r != '-' {
			return false
		}
	}
	return true
}

// IndexBuilder assembles an IndexDefinition field by field.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts a JSON index definition.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name}}
}

// Prefix adds key prefixes the index covers.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Numeric adds a NUMERIC attribute.
func (b *IndexBuilder) Numeric(path string) *IndexBuilder {
	return b.field(IndexField{Name: path, Type: IndexFieldNumeric})
}

// Tag adds a TAG attribute.
func (b *IndexBuilder) Tag(path string) *IndexBuilder {
	return b.field(IndexField{Name: path, Type: IndexFieldTag})
}

// TextWeighted adds a TEXT attribute. A zero weight keeps the server default.
func (b *IndexBuilder) TextWeighted(path string, weight float64) *IndexBuilder {
	return b.field(IndexField{Name: path, Type: IndexFieldText, Weight: weight})
}

// As names the most recently added attribute.
func (b *IndexBuilder) As(alias string) *IndexBuilder {
	if n := len(b.def.Fields); n > 0 {
		b.def.Fields[n-1].Alias = alias
	}
	return b
}

// Build validates and returns the definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	def := b.def
	return &def, nil
}

func (b *IndexBuilder) field(f IndexField) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, f)
	return b
}
