// Package server exposes the watchdog's diagnostics and configuration over
// a small REST API.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/me/sourcewatch/internal/scheduler"
	"github.com/me/sourcewatch/internal/store"
	"github.com/me/sourcewatch/pkg/model"
)

// Server is the sourcewatch REST API server.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	engine    *scheduler.Controller
	store     store.Store
	startTime time.Time
	version   string
}

// Option configures optional Server behavior.
type Option func(*Server)

// WithVersion overrides the version string reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// New creates a new Server with all routes registered.
func New(engine *scheduler.Controller, st store.Store, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		engine:    engine,
		store:     st,
		startTime: time.Now(),
		version:   "0.1.0",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.tagRequest)
	s.router.Use(s.logRequests)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
		r.Get("/attempts", s.handleListAttempts)
		r.Get("/config", s.handleGetConfig)
		r.Put("/config", s.handlePutConfig)
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.fail(w, RequestIDFromContext(r.Context()), http.StatusNotFound,
			model.NewNotFoundError("route", r.URL.Path))
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}
