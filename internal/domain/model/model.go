package model

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kailas-cloud/searchsync/internal/domain/mapping"
	"github.com/kailas-cloud/searchsync/internal/domain/schema"
)

var nameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// Definition is the registration-time configuration of one model.
type Definition struct {
	Name          string
	Index         string // defaults to the pluralized lower-cased name
	Type          string // defaults to the lower-cased name
	Hydrate       bool
	AlwaysIndexed []string
	Schema        schema.Schema
}

// Model binds a document type to its target index, type and installed mapping.
type Model struct {
	name          string
	collection    string
	index         string
	typeName      string
	hydrate       bool
	alwaysIndexed []string
	schema        schema.Schema
	mapping       mapping.Mapping
}

// New validates d, applies binding defaults and attaches the generated mapping m.
func New(d Definition, m mapping.Mapping) (Model, error) {
	if d.Name == "" {
		return Model{}, fmt.Errorf("model name is required")
	}
	if !nameRegex.MatchString(d.Name) {
		return Model{}, fmt.Errorf("model name %q must start with a letter and contain only letters, digits, _ or -", d.Name)
	}
	lower := strings.ToLower(d.Name)

	index := d.Index
	if index == "" {
		index = Pluralize(lower)
	}
	if !nameRegex.MatchString(index) {
		return Model{}, fmt.Errorf("index name %q is invalid", index)
	}
	typeName := d.Type
	if typeName == "" {
		typeName = lower
	}
	if !nameRegex.MatchString(typeName) {
		return Model{}, fmt.Errorf("type name %q is invalid", typeName)
	}

	always := make([]string, 0, len(d.AlwaysIndexed))
	for _, f := range d.AlwaysIndexed {
		if f == "" {
			return Model{}, fmt.Errorf("always-indexed field name is required")
		}
		always = append(always, f)
	}

	return Model{
		name:          d.Name,
		collection:    Pluralize(lower),
		index:         index,
		typeName:      typeName,
		hydrate:       d.Hydrate,
		alwaysIndexed: always,
		schema:        d.Schema,
		mapping:       m,
	}, nil
}

// Name returns the registered model name.
func (m Model) Name() string { return m.name }

// Collection returns the primary-store collection name.
func (m Model) Collection() string { return m.collection }

// Index returns the target index name.
func (m Model) Index() string { return m.index }

// Type returns the target type name within the index.
func (m Model) Type() string { return m.typeName }

// Hydrate returns the default hydration flag for searches.
func (m Model) Hydrate() bool { return m.hydrate }

// AlwaysIndexed returns fields projected regardless of mapping membership.
func (m Model) AlwaysIndexed() []string {
	out := make([]string, len(m.alwaysIndexed))
	copy(out, m.alwaysIndexed)
	return out
}

// Schema returns the schema the mapping was generated from.
func (m Model) Schema() schema.Schema { return m.schema }

// PrimaryKey returns the schema's primary-key field name.
func (m Model) PrimaryKey() string { return m.schema.PrimaryKey() }

// Mapping returns the installed index mapping.
func (m Model) Mapping() mapping.Mapping { return m.mapping }
