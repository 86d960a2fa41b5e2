// Package web serves the JSON API used by remote clients.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/conorfennell/studydeck/internal/generate"
	"github.com/conorfennell/studydeck/internal/library"
	"github.com/conorfennell/studydeck/internal/review"
)

// Store is everything the API reads and writes.
type Store interface {
	library.ProjectStore
	library.CardStore
	review.SessionStore
	Ping(ctx context.Context) error
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	store     Store
	generator generate.Generator
	router    *http.ServeMux
	metrics   *metrics
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithGenerator sets the generator behind /api/generate. Markdown
// extraction is used otherwise.
func WithGenerator(g generate.Generator) Option {
	return func(s *Server) { s.generator = g }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRegistry registers the server's metrics with reg instead of a private
// registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.metrics = newMetrics(reg) }
}

// NewServer creates and configures a new server.
func NewServer(store Store, opts ...Option) *Server {
	s := &Server{
		store:     store,
		generator: generate.Markdown{},
		router:    http.NewServeMux(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = newMetrics(prometheus.NewRegistry())
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	s.handle("GET /healthz", s.handleHealth())

	s.handle("GET /api/projects", s.handleListProjects())
	s.handle("POST /api/projects", s.handleCreateProject())
	s.handle("PATCH /api/projects/{id}", s.handleUpdateProject())
	s.handle("DELETE /api/projects/{id}", s.handleDeleteProject())

	s.handle("GET /api/projects/{id}/cards", s.handleListCards())
	s.handle("POST /api/projects/{id}/cards", s.handleCreateCard())
	s.handle("PATCH /api/cards/{id}", s.handleUpdateCard())
	s.handle("DELETE /api/cards/{id}", s.handleDeleteCard())

	s.handle("POST /api/projects/{id}/sessions", s.handleCreateSession())
	s.handle("POST /api/sessions/{id}/end", s.handleEndSession())

	s.handle("POST /api/generate", s.handleGenerate())

	s.router.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
}

func (s *Server) handle(pattern string, h http.HandlerFunc) {
	s.router.Handle(pattern, s.instrument(pattern, h))
}

// handleHealth reports whether the store is reachable.
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.store.Ping(r.Context()); err != nil {
			s.logger.Error("Health check failed", "error", err)
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}
}
