package config

import (
	dommodel "github.com/kailas-cloud/searchsync/internal/domain/model"
	"github.com/kailas-cloud/searchsync/internal/domain/schema"
)

// ModelConfig declares one document type and its index binding.
type ModelConfig struct {
	Name        string        `yaml:"name"`
	Index       string        `yaml:"index"`
	Type        string        `yaml:"type"`
	Hydrate     bool          `yaml:"hydrate"`
	PrimaryKey  string        `yaml:"primary_key"`
	AlwaysIndex []string      `yaml:"always_index"`
	Fields      []FieldConfig `yaml:"fields"`
}

// FieldConfig declares one schema field. Indexed and Boost stay nil when omitted.
type FieldConfig struct {
	Name    string   `yaml:"name"`
	Type    string   `yaml:"type"`
	Number  string   `yaml:"number"` // float, integer
	Indexed *bool    `yaml:"indexed"`
	ESType  string   `yaml:"es_type"`
	Boost   *float64 `yaml:"boost"`
}

// Definition converts the declaration into a model definition.
func (m ModelConfig) Definition() dommodel.Definition {
	fields := make([]schema.Field, 0, len(m.Fields))
	for _, f := range m.Fields {
		fields = append(fields, schema.Field{
			Name:         f.Name,
			Type:         schema.Type(f.Type),
			NumberKind:   schema.NumberKind(f.Number),
			Indexed:      f.Indexed,
			TypeOverride: f.ESType,
			Boost:        f.Boost,
		})
	}
	return dommodel.Definition{
		Name:          m.Name,
		Index:         m.Index,
		Type:          m.Type,
		Hydrate:       m.Hydrate,
		AlwaysIndexed: m.AlwaysIndex,
		Schema:        schema.New(m.PrimaryKey, fields...),
	}
}
