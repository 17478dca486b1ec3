package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/chrissnell/powerspeed/internal/controllers/restserver"
	"github.com/chrissnell/powerspeed/internal/log"
	"github.com/chrissnell/powerspeed/internal/source"
	"github.com/chrissnell/powerspeed/pkg/config"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return err
	}

	loader, err := source.NewLoaderFromConfig(cfg.Source)
	if err != nil {
		return err
	}
	defer loader.Close()

	// Load the source once so misconfiguration shows up at startup. The
	// server still starts; each request reloads and reports its own errors.
	opts := source.Options{ApplyValidity: cfg.Analysis.ApplyValidityFilter, CorrectFOC: cfg.Analysis.CorrectFOC}
	if ds, err := loader.Load(ctx, opts); err != nil {
		a.logger.Warnw("initial data load failed", "source", cfg.Source.Type, "error", err)
	} else {
		a.logger.Infow("data source ready", "source", cfg.Source.Type, "rows", ds.Len(), "vessels", len(ds.VesselIDs()))
	}

	rs, err := restserver.NewController(ctx, &wg, a.configProvider, loader, a.logger.Named("restserver"))
	if err != nil {
		return err
	}
	if err := rs.StartController(); err != nil {
		return err
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
