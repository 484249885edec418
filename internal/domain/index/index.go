package index

// TypeField is the reserved document field holding the owning type name.
const TypeField = "__type"

// Ref addresses one document inside an index.
type Ref struct {
	Index string
	Type  string
	ID    string
}

// WriteResult is the backend response to an index write.
type WriteResult struct {
	Index   string `json:"_index"`
	Type    string `json:"_type"`
	ID      string `json:"_id"`
	Created bool   `json:"created"`
	Result  string `json:"result"`
}

// SortOrder is a pass-through sort directive.
type SortOrder struct {
	Field      string
	Descending bool
}

// Query is a backend-native query scoped to one index.
// When Type is set the adapter filters server-side by type.
type Query struct {
	Index string
	Type  string
	Body  string
	From  int
	Size  int
	Sort  []SortOrder
}

// Hit is a single index-native match.
type Hit struct {
	ID     string
	Index  string
	Type   string
	Score  float64
	Source map[string]any
}

// Response is the adapter's answer to a query.
type Response struct {
	Total int
	Hits  []Hit
}
