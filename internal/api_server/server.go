package apiserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kubev2v/coach-importer/internal/config"
	handlers "github.com/kubev2v/coach-importer/internal/handlers/v1alpha1"
	"github.com/kubev2v/coach-importer/internal/importer/jobs"
	"github.com/kubev2v/coach-importer/internal/service"
	"github.com/kubev2v/coach-importer/internal/store"
	"github.com/kubev2v/coach-importer/pkg/download"
	"github.com/kubev2v/coach-importer/pkg/metrics"
	"github.com/kubev2v/coach-importer/pkg/middleware"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
	riverStopTimeout        = 30 * time.Second
)

type Server struct {
	cfg      *config.Config
	store    store.Store
	listener net.Listener
}

// New returns a new instance of the coach importer server.
func New(
	cfg *config.Config,
	store store.Store,
	listener net.Listener,
) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		listener: listener,
	}
}

// NewRouter mounts the import endpoints and the health check behind the
// common middlewares.
func NewRouter(importService *service.ImportService, maxErrors int, reg prometheus.Registerer) chi.Router {
	router := chi.NewRouter()

	metricMiddleware := metrics.NewMiddleware("api_server")
	metricMiddleware.MustRegister(reg)

	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"*"},
			MaxAge:         300,
		}),
		middleware.RequestID,
		middleware.Logger(),
		chiMiddleware.Recoverer,
	)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	h := handlers.NewImportHandler(importService, maxErrors)
	router.Route("/api/v1", h.Routes)

	return router
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	dbPool, err := store.NewPgxPool(ctx, s.cfg)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	downloader, err := download.NewFromConfig(s.cfg)
	if err != nil {
		return fmt.Errorf("failed to create downloader: %w", err)
	}

	queue, err := jobs.NewClient(dbPool, s.store, downloader, s.cfg)
	if err != nil {
		return fmt.Errorf("failed to create river client: %w", err)
	}

	if err := queue.Start(ctx); err != nil {
		return fmt.Errorf("failed to start river: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), riverStopTimeout)
		defer cancel()
		if err := queue.Stop(stopCtx); err != nil {
			zap.S().Named("api_server").Warnw("failed to stop river client", "error", err)
		}
	}()

	zap.S().Named("api_server").Info("River job queue initialized")

	router := NewRouter(service.NewImportService(s.store, queue), s.cfg.Import.SummaryErrors, prometheus.DefaultRegisterer)
	srv := http.Server{Addr: s.cfg.Service.Address, Handler: router}

	go func() {
		<-ctx.Done()
		zap.S().Named("api_server").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("api_server").Info("api server terminated")
	}()

	zap.S().Named("api_server").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
