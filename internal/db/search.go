package db

// SortBy is an FT.SEARCH SORTBY directive.
type SortBy struct {
	Field      string
	Descending bool
}

// TextQuery is the input for a scored full-text search.
// Query is sent verbatim; an empty Query matches everything.
type TextQuery struct {
	IndexName    string
	Query        string
	Offset       int
	Limit        int
	SortBy       *SortBy
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
