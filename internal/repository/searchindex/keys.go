package searchindex

import (
	"strings"

	"github.com/kailas-cloud/searchsync/internal/domain/index"
)

func (r *Repo) indexKey(indexName string) string {
	return r.prefix + "idx:" + indexName
}

func (r *Repo) indexPrefix(indexName string) string {
	return r.indexKey(indexName) + ":"
}

func (r *Repo) docKey(ref index.Ref) string {
	return r.indexPrefix(ref.Index) + ref.Type + ":" + ref.ID
}

// splitDocKey recovers type and id from a document key. Ids may contain ':'; type names may not.
func splitDocKey(key, prefix string) (typeName, id string, ok bool) {
	rest, found := strings.CutPrefix(key, prefix)
	if !found {
		return "", "", false
	}
	typeName, id, found = strings.Cut(rest, ":")
	if !found || typeName == "" || id == "" {
		return "", "", false
	}
	return typeName, id, true
}
