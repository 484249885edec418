package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchsync/internal/config"
	logpkg "github.com/kailas-cloud/searchsync/internal/logger"
	"github.com/kailas-cloud/searchsync/internal/version"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Open the configured record store and search index, register every
configured model (installing its mapping), and serve the HTTP API until
SIGINT or SIGTERM. In-flight index synchronization is drained on shutdown.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			logger, err := logpkg.New(logpkg.Options{
				Env:    flags.env,
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
			})
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.HTTP.Port))
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			return serve(ctx, ln, &cfg, logger)
		},
	}
}

// serve runs the API on ln until ctx is done, then shuts down gracefully.
func serve(ctx context.Context, ln net.Listener, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting searchsync",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("addr", ln.Addr().String()),
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("index_driver", cfg.Index.Driver),
	)

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer a.close()

	srv := &http.Server{
		Handler:      a.handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	if err := a.engine.Wait(shutdownCtx); err != nil {
		logger.Warn("Index sync still in flight at shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
