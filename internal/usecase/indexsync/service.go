package indexsync

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchsync/internal/domain"
	domdoc "github.com/kailas-cloud/searchsync/internal/domain/document"
	"github.com/kailas-cloud/searchsync/internal/domain/event"
	"github.com/kailas-cloud/searchsync/internal/domain/index"
	dommodel "github.com/kailas-cloud/searchsync/internal/domain/model"
	logpkg "github.com/kailas-cloud/searchsync/internal/logger"
	"github.com/kailas-cloud/searchsync/internal/metrics"
)

// MaxRemoveAttempts bounds index removal: one initial attempt plus two retries.
const MaxRemoveAttempts = 3

// DefaultRetryDelay is the fixed pause between removal attempts.
const DefaultRetryDelay = 500 * time.Millisecond

// Engine mirrors primary-store lifecycle events into the search index.
// Each hook runs on its own goroutine and completes through a channel that
// receives exactly one event and is then closed.
type Engine struct {
	indexer    Indexer
	logger     *zap.Logger
	retryDelay time.Duration
	wg         sync.WaitGroup
}

// New creates an Engine. logger may be nil.
func New(indexer Indexer, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{indexer: indexer, logger: logger, retryDelay: DefaultRetryDelay}
}

// WithRetryDelay configures the pause between removal attempts.
func (e *Engine) WithRetryDelay(d time.Duration) *Engine {
	if d >= 0 {
		e.retryDelay = d
	}
	return e
}

// OnSave indexes the projection of doc under the model's index and type.
// Failures are reported on the channel as *domain.IndexWriteError and are not retried.
func (e *Engine) OnSave(ctx context.Context, m dommodel.Model, doc domdoc.Document) <-chan event.IndexedEvent {
	out := make(chan event.IndexedEvent, 1)
	ctx = context.WithoutCancel(ctx)
	ref := index.Ref{Index: m.Index(), Type: m.Type(), ID: doc.ID()}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer close(out)
		out <- e.index(ctx, m, ref, &doc)
	}()
	return out
}

// OnRemove deletes the document id from the model's index and type, retrying
// every failure after a fixed delay until MaxRemoveAttempts is reached.
func (e *Engine) OnRemove(ctx context.Context, m dommodel.Model, id string) <-chan event.RemovedEvent {
	out := make(chan event.RemovedEvent, 1)
	ctx = context.WithoutCancel(ctx)
	ref := index.Ref{Index: m.Index(), Type: m.Type(), ID: id}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer close(out)
		out <- e.remove(ctx, m, ref)
	}()
	return out
}

// Wait blocks until every in-flight hook has sent its event, or ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) index(ctx context.Context, m dommodel.Model, ref index.Ref, doc *domdoc.Document) event.IndexedEvent {
	start := time.Now()
	log := logpkg.Scoped(ctx, e.logger).With(logpkg.Model(m.Name()), logpkg.Index(ref.Index), logpkg.DocID(ref.ID))
	ev := event.IndexedEvent{Model: m.Name(), ID: ref.ID, State: event.Indexing}

	res, err := e.write(ctx, m, ref, doc)
	metrics.SyncDuration.WithLabelValues(m.Name(), "index").Observe(time.Since(start).Seconds())
	if err != nil {
		ev.State = event.Unindexed
		ev.Err = &domain.IndexWriteError{Index: ref.Index, Type: ref.Type, ID: ref.ID, Err: err}
		metrics.SyncOperationsTotal.WithLabelValues(m.Name(), "index", "error").Inc()
		log.Error("Index write failed", zap.Error(err))
		return ev
	}

	ev.State = event.Indexed
	ev.Response = res
	metrics.SyncOperationsTotal.WithLabelValues(m.Name(), "index", "ok").Inc()
	log.Debug("Document indexed", zap.String("result", res.Result))
	return ev
}

func (e *Engine) write(ctx context.Context, m dommodel.Model, ref index.Ref, doc *domdoc.Document) (index.WriteResult, error) {
	projection, err := doc.Project(m.Mapping(), m.AlwaysIndexed())
	if err != nil {
		return index.WriteResult{}, err
	}
	return e.indexer.IndexDocument(ctx, ref, projection)
}

// attempt is the removal bookkeeping owned by one goroutine.
type attempt struct {
	ref   index.Ref
	count int
	last  error
}

func (e *Engine) remove(ctx context.Context, m dommodel.Model, ref index.Ref) event.RemovedEvent {
	start := time.Now()
	log := logpkg.Scoped(ctx, e.logger).With(logpkg.Model(m.Name()), logpkg.Index(ref.Index), logpkg.DocID(ref.ID))
	a := attempt{ref: ref}

	for a.count < MaxRemoveAttempts {
		if a.count > 0 {
			e.sleep()
		}
		a.count++

		err := e.indexer.DeleteDocument(ctx, a.ref)
		if err == nil {
			metrics.SyncRemoveAttemptsTotal.WithLabelValues(m.Name(), "ok").Inc()
			metrics.SyncOperationsTotal.WithLabelValues(m.Name(), "remove", "ok").Inc()
			metrics.SyncDuration.WithLabelValues(m.Name(), "remove").Observe(time.Since(start).Seconds())
			log.Debug("Document removed from index", logpkg.Attempt(a.count))
			return event.RemovedEvent{Model: m.Name(), ID: ref.ID, State: event.Removed, Attempts: a.count}
		}

		notFound := errors.Is(err, domain.ErrIndexDocumentNotFound)
		a.last = &domain.IndexDeleteError{ID: ref.ID, Attempt: a.count, NotFound: notFound, Err: err}
		outcome := "error"
		if notFound {
			outcome = "not_found"
		}
		metrics.SyncRemoveAttemptsTotal.WithLabelValues(m.Name(), outcome).Inc()

		if a.count < MaxRemoveAttempts {
			log.Warn("Index removal failed, retry scheduled",
				logpkg.Attempt(a.count),
				zap.Duration("delay", e.retryDelay),
				zap.Bool("not_found", notFound),
				zap.Error(err),
			)
		}
	}

	metrics.SyncOperationsTotal.WithLabelValues(m.Name(), "remove", "given_up").Inc()
	metrics.SyncDuration.WithLabelValues(m.Name(), "remove").Observe(time.Since(start).Seconds())
	log.Error("Index removal given up", zap.Int("attempts", a.count), zap.Error(a.last))
	return event.RemovedEvent{
		Model:    m.Name(),
		ID:       ref.ID,
		State:    event.RemovalGivenUp,
		Attempts: a.count,
		Err:      &domain.RemovalGivenUpError{ID: ref.ID, Attempts: a.count, Last: a.last},
	}
}

func (e *Engine) sleep() {
	if e.retryDelay <= 0 {
		return
	}
	t := time.NewTimer(e.retryDelay)
	defer t.Stop()
	<-t.C
}
