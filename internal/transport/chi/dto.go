package chi

import (
	"github.com/kailas-cloud/searchsync/internal/domain/event"
	"github.com/kailas-cloud/searchsync/internal/domain/mapping"
	dommodel "github.com/kailas-cloud/searchsync/internal/domain/model"
	"github.com/kailas-cloud/searchsync/internal/domain/search/result"
)

// ModelResponse describes one registered model.
type ModelResponse struct {
	Name        string          `json:"name"`
	Collection  string          `json:"collection"`
	Index       string          `json:"index"`
	Type        string          `json:"type"`
	Hydrate     bool            `json:"hydrate"`
	PrimaryKey  string          `json:"primary_key"`
	AlwaysIndex []string        `json:"always_index,omitempty"`
	Shared      bool            `json:"shared"`
	Mapping     mapping.Mapping `json:"mapping"`
}

// ModelListResponse is the body of GET /models.
type ModelListResponse struct {
	Items []ModelResponse `json:"items"`
}

// SaveResponse is the body of PUT /models/{model}/documents/{id}.
type SaveResponse struct {
	ID      string           `json:"_id"`
	Created bool             `json:"created"`
	Indexed *IndexedResponse `json:"indexed,omitempty"`
}

// IndexedResponse reports the indexing signal of a save.
type IndexedResponse struct {
	State  event.State `json:"state"`
	Result string      `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// RemoveResponse is the body of DELETE /models/{model}/documents/{id}.
type RemoveResponse struct {
	ID       string      `json:"_id"`
	State    event.State `json:"state"`
	Attempts int         `json:"attempts,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// SearchRequest is the body of POST /models/{model}/search.
type SearchRequest struct {
	Query   string   `json:"query"`
	Hydrate *bool    `json:"hydrate,omitempty"`
	From    int      `json:"from,omitempty"`
	Size    int      `json:"size,omitempty"`
	Sort    []string `json:"sort,omitempty"`
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	Total int         `json:"total"`
	Hits  []HitResult `json:"hits"`
}

// HitResult is one search hit.
type HitResult struct {
	ID       string         `json:"_id"`
	Index    string         `json:"_index"`
	Type     string         `json:"_type"`
	Score    float64        `json:"_score"`
	Source   map[string]any `json:"_source"`
	Hydrated bool           `json:"hydrated"`
	Error    string         `json:"error,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func modelToResponse(m dommodel.Model, shared bool) ModelResponse {
	return ModelResponse{
		Name:        m.Name(),
		Collection:  m.Collection(),
		Index:       m.Index(),
		Type:        m.Type(),
		Hydrate:     m.Hydrate(),
		PrimaryKey:  m.PrimaryKey(),
		AlwaysIndex: m.AlwaysIndexed(),
		Shared:      shared,
		Mapping:     m.Mapping(),
	}
}

func indexedToResponse(ev event.IndexedEvent) *IndexedResponse {
	out := &IndexedResponse{State: ev.State, Result: ev.Response.Result}
	if ev.Err != nil {
		out.Error = ev.Err.Error()
	}
	return out
}

func removedToResponse(ev event.RemovedEvent) RemoveResponse {
	out := RemoveResponse{ID: ev.ID, State: ev.State, Attempts: ev.Attempts}
	if ev.Err != nil {
		out.Error = ev.Err.Error()
	}
	return out
}

func setToResponse(set *result.Set) SearchResponse {
	hits := make([]HitResult, len(set.Hits))
	for i := range set.Hits {
		h := &set.Hits[i]
		hits[i] = HitResult{
			ID:       h.ID(),
			Index:    h.Index(),
			Type:     h.Type(),
			Score:    h.Score(),
			Source:   h.Source(),
			Hydrated: h.Hydrated(),
		}
		if err := h.Err(); err != nil {
			hits[i].Error = err.Error()
		}
		if hits[i].Source == nil {
			hits[i].Source = map[string]any{}
		}
	}
	return SearchResponse{Total: set.Total, Hits: hits}
}
