package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/incident-explorer/internal/core/config"
	"github.com/mohammed-shakir/incident-explorer/internal/core/health"
	middleware "github.com/mohammed-shakir/incident-explorer/internal/core/middleware"
	"github.com/mohammed-shakir/incident-explorer/internal/core/router"
)

// Deps are the handlers and probes mounted on the router.
type Deps struct {
	Query   router.QueryHandler
	Options router.OptionSource
	// Metrics is mounted on cfg.Metrics.Path when non-nil and no separate
	// metrics listener is configured.
	Metrics http.Handler
	Ready   []health.Check
}

func NewRouter(cfg config.Config, logger *slog.Logger, d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS())

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(d.Ready...))
	if d.Metrics != nil && !cfg.Metrics.Enabled {
		r.Get(cfg.Metrics.Path, d.Metrics.ServeHTTP)
	}
	r.Get("/filters", router.HandleFilters(d.Options))
	r.Get("/query", router.HandleQuery(logger, d.Options, d.Query))
	return r
}

// sets up http and starts serving until ctx is done
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, d Deps) error {
	servers := []*http.Server{newServer(cfg.Addr, NewRouter(cfg, logger, d))}
	if cfg.Metrics.Enabled && d.Metrics != nil {
		mux := chi.NewRouter()
		mux.Get(cfg.Metrics.Path, d.Metrics.ServeHTTP)
		servers = append(servers, newServer(cfg.Metrics.Addr, mux))
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func() {
			logger.Info("http listen", "addr", srv.Addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for _, srv := range servers {
		_ = srv.Shutdown(shutdownCtx)
	}
	return runErr
}

func newServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
