package search

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/searchsync/internal/domain"
	"github.com/kailas-cloud/searchsync/internal/domain/index"
	dommodel "github.com/kailas-cloud/searchsync/internal/domain/model"
	"github.com/kailas-cloud/searchsync/internal/domain/search/request"
	"github.com/kailas-cloud/searchsync/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/searchsync/internal/logger"
	"github.com/kailas-cloud/searchsync/internal/metrics"
)

// DefaultHydrateConcurrency bounds concurrent record fetches per search.
const DefaultHydrateConcurrency = 8

// Service runs index queries on behalf of a model and materializes the hits.
type Service struct {
	querier     Querier
	records     RecordReader
	shared      SharedIndexes
	logger      *zap.Logger
	concurrency int
}

// New creates a search service. shared may be nil when no index is shared.
func New(q Querier, records RecordReader, shared SharedIndexes) *Service {
	return &Service{
		querier:     q,
		records:     records,
		shared:      shared,
		logger:      zap.NewNop(),
		concurrency: DefaultHydrateConcurrency,
	}
}

// WithHydrateConcurrency configures how many records are fetched in parallel.
func (s *Service) WithHydrateConcurrency(n int) *Service {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

// WithLogger sets the service logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// Search queries the model's index and returns only hits of the model's type,
// hydrated from the primary store when requested or by model default.
func (s *Service) Search(ctx context.Context, m dommodel.Model, req request.Request) (result.Set, error) {
	q := index.Query{
		Index: m.Index(),
		Body:  req.Query(),
		From:  req.From(),
		Size:  req.Size(),
		Sort:  req.Sort(),
	}
	if s.shared != nil && s.shared.IsShared(m.Index()) {
		q.Type = m.Type()
	}

	resp, err := s.querier.Query(ctx, q)
	if err != nil {
		status := "error"
		if errors.Is(err, domain.ErrMalformedQuery) {
			status = "malformed"
		}
		metrics.SearchRequestsTotal.WithLabelValues(m.Name(), status).Inc()
		return result.Set{}, &domain.QueryError{Model: m.Name(), Query: req.Query(), Err: err}
	}

	set := s.filterByType(m, resp)

	hydrate := m.Hydrate()
	if v, ok := req.Hydrate(); ok {
		hydrate = v
	}
	if hydrate && len(set.Hits) > 0 {
		if err := s.hydrate(ctx, m, set.Hits); err != nil {
			metrics.SearchRequestsTotal.WithLabelValues(m.Name(), "error").Inc()
			return result.Set{}, &domain.QueryError{Model: m.Name(), Query: req.Query(), Err: err}
		}
	}

	metrics.SearchRequestsTotal.WithLabelValues(m.Name(), "ok").Inc()
	return set, nil
}

// filterByType drops hits of other types. Total is reduced by the number dropped.
func (s *Service) filterByType(m dommodel.Model, resp index.Response) result.Set {
	hits := make([]result.Hit, 0, len(resp.Hits))
	dropped := 0
	for _, h := range resp.Hits {
		if h.Type != m.Type() {
			dropped++
			continue
		}
		hits = append(hits, result.New(h.ID, h.Index, h.Type, h.Score, h.Source))
	}
	if dropped > 0 {
		s.logger.Debug("Dropped hits of other types",
			logpkg.Model(m.Name()),
			logpkg.Index(m.Index()),
			zap.Int("dropped", dropped),
		)
	}

	total := resp.Total - dropped
	if total < len(hits) {
		total = len(hits)
	}
	return result.Set{Total: total, Hits: hits}
}

// hydrate replaces each projection with the primary-store record, in place.
// A missing record marks the hit with a HydrationMissError and keeps the projection.
func (s *Service) hydrate(ctx context.Context, m dommodel.Model, hits []result.Hit) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range hits {
		g.Go(func() error {
			doc, err := s.records.Get(gctx, m.Collection(), hits[i].ID())
			if errors.Is(err, domain.ErrDocumentNotFound) {
				hits[i] = hits[i].WithError(&domain.HydrationMissError{ID: hits[i].ID()})
				metrics.HydrationMissesTotal.WithLabelValues(m.Name()).Inc()
				s.logger.Warn("Hydration miss",
					logpkg.Model(m.Name()),
					logpkg.DocID(hits[i].ID()),
				)
				return nil
			}
			if err != nil {
				return fmt.Errorf("hydrate %s: %w", hits[i].ID(), err)
			}
			hits[i] = hits[i].WithRecord(doc.Record(m.PrimaryKey()))
			return nil
		})
	}
	return g.Wait()
}
