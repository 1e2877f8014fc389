// Package app wires the data source, result cache, dashboard service and HTTP
// surfaces into one runnable application.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"crash-dash/internal/api"
	"crash-dash/internal/cache"
	"crash-dash/internal/config"
	"crash-dash/internal/credentials"
	"crash-dash/internal/domain"
	"crash-dash/internal/metrics"
	"crash-dash/internal/middleware"
	"crash-dash/internal/scheduler"
	"crash-dash/internal/service/dashboard"
	"crash-dash/internal/source"
	"crash-dash/internal/ui"
)

const shutdownTimeout = 10 * time.Second

// Deps holds what the entry points must provide.
type Deps struct {
	Cfg         *config.Config
	Credentials credentials.ServiceAccount
	Logger      *slog.Logger

	// Source replaces the configured data source when set.
	Source domain.DataSource
}

// App is the fully wired dashboard.
type App struct {
	Cache     *cache.ResultCache
	Dashboard *dashboard.Service
	Scheduler *scheduler.Scheduler // nil without CACHE_REFRESH_SCHEDULE

	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
}

// New initializes the data source and builds the cache, the dashboard
// service, and the optional refresh scheduler.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg
	logger := deps.Logger

	src := deps.Source
	var closer io.Closer
	if src == nil {
		s, err := source.Initialize(ctx, cfg.Source(), deps.Credentials, logger.With("component", "source"))
		if err != nil {
			return nil, fmt.Errorf("initialize data source: %w", err)
		}
		src, closer = s, s
	}

	rc := cache.New(src, logger.With("component", "cache"), cache.WithFetchTimeout(cfg.FetchTimeout))
	svc := dashboard.NewService(rc, logger.With("component", "dashboard"))

	a := &App{
		Cache:     rc,
		Dashboard: svc,
		cfg:       cfg,
		logger:    logger,
		closer:    closer,
	}

	if cfg.RefreshSchedule != "" {
		sched, err := scheduler.New(cfg.RefreshSchedule, svc, cfg.FetchTimeout, logger.With("component", "scheduler"))
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.Scheduler = sched
	}
	return a, nil
}

// Router builds the HTTP handler. Background middleware goroutines stop when
// ctx ends.
func (a *App) Router(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(a.logger.With("component", "http")))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", a.health)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimiter(ctx, middleware.RateLimitConfig{
			RequestsPerSecond: a.cfg.RateLimitRPS,
			Burst:             a.cfg.RateLimitBurst,
		}))

		ui.MountRoutes(r, ui.NewHandler(a.Dashboard, a.logger.With("component", "ui")))
		r.Route("/api/v1", func(r chi.Router) {
			api.MountRoutes(r, api.NewHandler(a.Dashboard, a.logger.With("component", "api")))
		})
	})
	return r
}

type healthResponse struct {
	Status    string     `json:"status"`
	Query     string     `json:"query"`
	FetchedAt *time.Time `json:"fetched_at,omitempty"`
}

// health never triggers a fetch.
func (a *App) health(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok", Query: a.Cache.Key()}
	if t := a.Cache.FetchedAt(); !t.IsZero() {
		resp.FetchedAt = &t
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// Serve listens on the configured address until ctx ends, then shuts the
// server and the scheduler down.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           a.Router(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      a.cfg.FetchTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if a.Scheduler != nil {
		a.Scheduler.Start(ctx)
		defer a.Scheduler.Stop()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("dashboard listening", "addr", a.cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close releases the data source client.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
