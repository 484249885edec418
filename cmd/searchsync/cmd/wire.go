package cmd

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchsync/internal/config"
	dbRedis "github.com/kailas-cloud/searchsync/internal/db/redis"
	logpkg "github.com/kailas-cloud/searchsync/internal/logger"
	"github.com/kailas-cloud/searchsync/internal/metrics"
	"github.com/kailas-cloud/searchsync/internal/repository/bleveindex"
	"github.com/kailas-cloud/searchsync/internal/repository/record"
	"github.com/kailas-cloud/searchsync/internal/repository/searchindex"
	"github.com/kailas-cloud/searchsync/internal/repository/sqlrecord"
	chiTransport "github.com/kailas-cloud/searchsync/internal/transport/chi"
	documentuc "github.com/kailas-cloud/searchsync/internal/usecase/document"
	healthuc "github.com/kailas-cloud/searchsync/internal/usecase/health"
	"github.com/kailas-cloud/searchsync/internal/usecase/indexsync"
	modeluc "github.com/kailas-cloud/searchsync/internal/usecase/model"
	searchuc "github.com/kailas-cloud/searchsync/internal/usecase/search"
)

// recordStore is what the use cases need from a primary store.
type recordStore interface {
	documentuc.RecordStore
	searchuc.RecordReader
	healthuc.Pinger
}

// indexAdapter is what the use cases need from an index client.
type indexAdapter interface {
	modeluc.MappingInstaller
	indexsync.Indexer
	searchuc.Querier
	healthuc.Pinger
}

// app is the assembled service graph.
type app struct {
	handler http.Handler
	engine  *indexsync.Engine
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildApp is the composition root: it opens backends, registers models and wires the HTTP API.
func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{}
	redisStores := map[string]*dbRedis.Store{}

	redisFor := func(addrs []string, password string) (*dbRedis.Store, error) {
		key := fmt.Sprint(addrs, password)
		if s, ok := redisStores[key]; ok {
			return s, nil
		}
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      slices.Clone(addrs),
			Password:   password,
			ClientName: "searchsync",
		})
		if err != nil {
			return nil, fmt.Errorf("create redis store: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		if err := s.WaitForReady(ctx, time.Duration(cfg.Store.ReadinessTimeout)*time.Second); err != nil {
			return nil, fmt.Errorf("redis not ready: %w", err)
		}
		redisStores[key] = s
		return s, nil
	}

	records, err := openRecordStore(ctx, cfg, redisFor, a)
	if err != nil {
		a.close()
		return nil, err
	}
	logger.Info("Connected to record store", zap.String("driver", cfg.Store.Driver))

	idx, err := openIndex(cfg, redisFor, a)
	if err != nil {
		a.close()
		return nil, err
	}
	logger.Info("Index adapter ready", zap.String("driver", cfg.Index.Driver))

	metrics.RegisterSyncMetrics()

	registry := modeluc.New(idx)
	for _, mc := range cfg.Models {
		m, err := registry.Register(ctx, mc.Definition())
		if err != nil {
			a.close()
			return nil, fmt.Errorf("register %s: %w", mc.Name, err)
		}
		logger.Info("Model registered",
			logpkg.Model(m.Name()),
			logpkg.Index(m.Index()),
			logpkg.Type(m.Type()),
			zap.Bool("hydrate", m.Hydrate()),
		)
	}

	a.engine = indexsync.New(idx, logger.Named("sync")).
		WithRetryDelay(time.Duration(cfg.Sync.RemoveRetryDelayMs) * time.Millisecond)
	searchSvc := searchuc.New(idx, records, registry).
		WithHydrateConcurrency(cfg.Search.HydrateConcurrency).
		WithLogger(logger.Named("search"))
	docSvc := documentuc.New(records, registry, a.engine)
	healthSvc := healthuc.New(records, idx)

	server := chiTransport.NewServer(registry, docSvc, searchSvc, healthSvc, logger).
		WithPagination(cfg.Index.DefaultPageSize, cfg.Index.MaxPageSize)
	a.handler = server.Router(cfg.Auth.APIKeys)
	return a, nil
}

type redisOpener func(addrs []string, password string) (*dbRedis.Store, error)

func openRecordStore(ctx context.Context, cfg *config.Config, redisFor redisOpener, a *app) (recordStore, error) {
	switch cfg.Store.Driver {
	case config.StoreRedis:
		s, err := redisFor(cfg.Store.Addrs, cfg.Store.Password)
		if err != nil {
			return nil, err
		}
		return record.New(s, cfg.Store.KeyPrefix), nil
	case config.StoreSQLite, config.StorePostgres:
		r, err := sqlrecord.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
		if err != nil {
			return nil, fmt.Errorf("open record store: %w", err)
		}
		a.closers = append(a.closers, func() { _ = r.Close() })
		return r, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func openIndex(cfg *config.Config, redisFor redisOpener, a *app) (indexAdapter, error) {
	switch cfg.Index.Driver {
	case config.IndexRediSearch:
		s, err := redisFor(cfg.Index.Addrs, cfg.Index.Password)
		if err != nil {
			return nil, err
		}
		return searchindex.New(s, cfg.Store.KeyPrefix), nil
	case config.IndexBleve:
		r := bleveindex.New(cfg.Index.BlevePath)
		a.closers = append(a.closers, func() { _ = r.Close() })
		return r, nil
	default:
		return nil, fmt.Errorf("unknown index driver %q", cfg.Index.Driver)
	}
}
