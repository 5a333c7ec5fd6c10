package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// mappingVersion is bumped whenever buildIndexMapping changes. A mismatch
// with the version file next to the index triggers a rebuild on open.
const mappingVersion = "1"

// buildIndexMapping creates the mapping for book documents.
//
// Text fields use the standard analyzer (Unicode word segmentation and
// lower-casing, no stemming) since libraries mix English and Cyrillic
// titles. user_id, status and genres are exact keywords.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = standard.Name

	docMapping := bleve.NewDocumentMapping()

	text := func(store, vectors bool) *mapping.FieldMapping {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = standard.Name
		fm.Store = store
		fm.IncludeTermVectors = vectors
		return fm
	}
	kw := func() *mapping.FieldMapping {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		fm.IncludeInAll = false
		return fm
	}

	// Highlighting needs the stored value and term vectors.
	docMapping.AddFieldMappingsAt("title", text(true, true))
	docMapping.AddFieldMappingsAt("author", text(true, true))
	docMapping.AddFieldMappingsAt("notes", text(true, true))
	docMapping.AddFieldMappingsAt("description", text(false, false))

	docMapping.AddFieldMappingsAt("user_id", kw())
	docMapping.AddFieldMappingsAt("status", kw())
	docMapping.AddFieldMappingsAt("genres", kw())

	year := bleve.NewNumericFieldMapping()
	year.Store = true
	docMapping.AddFieldMappingsAt("year", year)

	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}
