package bleveindex

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	blevemapping "github.com/blevesearch/bleve/v2/mapping"

	"github.com/kailas-cloud/searchsync/internal/domain/index"
	"github.com/kailas-cloud/searchsync/internal/domain/mapping"
)

func newIndexMapping() *blevemapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()
	im.TypeField = index.TypeField
	im.DefaultMapping = bleve.NewDocumentStaticMapping()
	return im
}

// buildDocumentMapping translates an index mapping into a static bleve document mapping.
// Object properties and unknown override types travel in the source only.
func buildDocumentMapping(m mapping.Mapping) *blevemapping.DocumentMapping {
	dm := bleve.NewDocumentStaticMapping()

	typeField := bleve.NewKeywordFieldMapping()
	typeField.IncludeInAll = false
	dm.AddFieldMappingsAt(index.TypeField, typeField)

	source := bleve.NewTextFieldMapping()
	source.Index = false
	source.Store = true
	source.IncludeInAll = false
	source.IncludeTermVectors = false
	dm.AddFieldMappingsAt(SourceField, source)

	for _, p := range m.Properties() {
		if fm := fieldMapping(p.Type); fm != nil {
			dm.AddFieldMappingsAt(p.Name, fm)
		}
	}
	return dm
}

func fieldMapping(t mapping.Type) *blevemapping.FieldMapping {
	switch t {
	case mapping.String:
		return bleve.NewTextFieldMapping()
	case mapping.Number, mapping.Float, mapping.Integer, "long", "double":
		return bleve.NewNumericFieldMapping()
	case mapping.Boolean:
		return bleve.NewBooleanFieldMapping()
	case "date":
		return bleve.NewDateTimeFieldMapping()
	case "keyword":
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		return fm
	default:
		return nil
	}
}
