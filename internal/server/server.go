// Package server exposes the cron trigger endpoints, health and metrics over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/masahif/seodash/internal/collector"
	"github.com/masahif/seodash/internal/config"
	"github.com/masahif/seodash/internal/logging"
	"github.com/masahif/seodash/internal/trigger"
)

const shutdownTimeout = 10 * time.Second

// Pinger checks storage connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// Jobs resolves job names
type Jobs interface {
	Get(name string) (collector.Job, bool)
	Names() []string
}

// Server is the trigger HTTP server
type Server struct {
	cfg     config.ServerConfig
	handler http.Handler
}

// New creates a server for the given jobs
func New(cfg config.ServerConfig, gate *trigger.Gate, jobs Jobs, store Pinger) *Server {
	return &Server{cfg: cfg, handler: NewRouter(gate, jobs, store, cfg.RateLimit)}
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

// NewRouter builds the route tree. rateLimit is requests per minute per IP
// on the cron routes; zero disables limiting.
func NewRouter(gate *trigger.Gate, jobs Jobs, store Pinger, rateLimit int) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", healthHandler(store))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/cron", func(r chi.Router) {
		if rateLimit > 0 {
			r.Use(httprate.LimitByIP(rateLimit, time.Minute))
		}
		r.Get("/{job}", cronHandler(gate, jobs))
	})

	return r
}

func cronHandler(gate *trigger.Gate, jobs Jobs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "job")
		job, ok := jobs.Get(name)
		if !ok {
			// Do not reveal job names to unauthenticated callers
			if !gate.Authorized(r) {
				trigger.WriteJSON(w, trigger.Result{Status: http.StatusUnauthorized, Body: trigger.ErrorBody{Error: "Unauthorized"}})
				return
			}
			trigger.WriteJSON(w, trigger.Result{Status: http.StatusNotFound, Body: trigger.ErrorBody{Error: "Unknown job"}})
			return
		}

		trigger.WriteJSON(w, gate.RunJob(r, name, trigger.Job(job)))
	}
}

func healthHandler(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			logging.FromContext(r.Context()).Error("Health check failed", "error", err)
			trigger.WriteJSON(w, trigger.Result{Status: http.StatusServiceUnavailable, Body: map[string]string{"status": "unavailable"}})
			return
		}
		trigger.WriteJSON(w, trigger.Result{Status: http.StatusOK, Body: map[string]string{"status": "ok"}})
	}
}

// requestLogger tags each request with an id and stores a logger carrying it
// in the request context.
func requestLogger(next http.Handler) http.Handler {
	withChiID := chimiddleware.RequestID(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(chimiddleware.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(chimiddleware.RequestIDHeader, id)
		}
		w.Header().Set(chimiddleware.RequestIDHeader, id)

		logger := logging.FromContext(r.Context()).With("request_id", id)
		ctx := logging.WithContext(r.Context(), logger)

		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		withChiID.ServeHTTP(ww, r.WithContext(ctx))

		logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds())
	})
}
