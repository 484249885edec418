package searchindex

import (
	"fmt"

	"github.com/kailas-cloud/searchsync/internal/db"
	"github.com/kailas-cloud/searchsync/internal/domain/index"
	"github.com/kailas-cloud/searchsync/internal/domain/mapping"
)

// buildIndex creates a JSON IndexDefinition from an index mapping.
// Object properties and unknown override types are stored with the document but not indexed.
func buildIndex(name, prefix string, m mapping.Mapping) (*db.IndexDefinition, error) {
	b := db.NewIndex(name).Prefix(prefix).
		Tag("$." + index.TypeField).As(index.TypeField)

	for _, p := range m.Properties() {
		if !db.IsValidIdentifier(p.Name) {
			return nil, fmt.Errorf("property %q is not a valid attribute name", p.Name)
		}
		path := "$." + p.Name
		switch p.Type {
		case mapping.String:
			weight := 0.0
			if p.Boost != nil {
				weight = *p.Boost
			}
			b.TextWeighted(path, weight).As(p.Name)
		case mapping.Number, mapping.Float, mapping.Integer, "long", "double":
			b.Numeric(path).As(p.Name)
		case mapping.Boolean, "date", "keyword":
			b.Tag(path).As(p.Name)
		}
	}

	return b.Build()
}
