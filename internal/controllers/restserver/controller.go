package restserver

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chrissnell/powerspeed/internal/log"
	"github.com/chrissnell/powerspeed/internal/source"
	"github.com/chrissnell/powerspeed/internal/types"
	"github.com/chrissnell/powerspeed/pkg/config"
)

// DatasetLoader reads a fresh dataset for every request
type DatasetLoader interface {
	Load(ctx context.Context, opts source.Options) (*types.Dataset, error)
}

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	serverConf config.ServerData
	analysis   config.AnalysisData
	loader     DatasetLoader
	names      types.VesselDirectory
	Server     http.Server
	FS         fs.FS
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, loader DatasetLoader, logger *zap.SugaredLogger) (*Controller, error) {
	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %v", err)
	}

	if _, err := types.ParseSpeedMetric(cfgData.Analysis.DefaultSpeedMetric); err != nil {
		return nil, fmt.Errorf("analysis.default_speed_metric: %v", err)
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		serverConf: cfgData.Server,
		analysis:   cfgData.Analysis,
		loader:     loader,
		names:      types.NewVesselDirectory(cfgData.VesselNames()),
		FS:         GetAssets(),
		logger:     logger,
	}
	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", cfgData.Server.ListenAddr, cfgData.Server.Port)
	ctrl.Server.Handler = ctrl.setupRouter()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Infof("Starting REST server on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.serverConf.TLSCert != "" && c.serverConf.TLSKey != "" {
			if err := c.Server.ListenAndServeTLS(c.serverConf.TLSCert, c.serverConf.TLSKey); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(log.HTTPMiddleware)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/vessels", c.handlers.GetVessels).Methods(http.MethodGet)
	api.HandleFunc("/bounds", c.handlers.GetBounds).Methods(http.MethodGet)
	api.HandleFunc("/analysis", c.handlers.GetAnalysis).Methods(http.MethodGet)
	api.HandleFunc("/chart.png", c.handlers.GetChart).Methods(http.MethodGet)

	router.HandleFunc("/healthz", c.handlers.Healthz).Methods(http.MethodGet)
	if c.serverConf.EnableMetrics {
		router.Handle("/metrics", promhttp.Handler())
	}

	router.PathPrefix("/").Handler(http.FileServer(http.FS(c.FS)))

	return router
}
