// Package api provides the HTTP API server and handlers for the books catalog.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dvtbooks/books-api/internal/ratelimit"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the HTTP surface.
type Options struct {
	// AllowedOrigins for CORS; empty allows any origin.
	AllowedOrigins []string
	// WriteRate is the number of writes a client may make per minute.
	WriteRate int
	// WriteBurst is the number of writes a client may make at once.
	WriteBurst int
	// MaxBodySize bounds JSON request bodies.
	MaxBodySize int64
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		WriteRate:   120,
		WriteBurst:  30,
		MaxBodySize: 1 << 20,
	}
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store        Pinger
	services     *Services
	router       *chi.Mux
	api          huma.API
	opts         Options
	writeLimiter *RateLimiter
	logger       *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store Pinger, services *Services, opts Options, logger *slog.Logger) *Server {
	defaults := DefaultOptions()
	if opts.WriteRate <= 0 {
		opts.WriteRate = defaults.WriteRate
	}
	if opts.WriteBurst <= 0 {
		opts.WriteBurst = defaults.WriteBurst
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = defaults.MaxBodySize
	}

	router := chi.NewRouter()
	s := &Server{
		store:        store,
		services:     services,
		router:       router,
		opts:         opts,
		writeLimiter: NewRateLimiter(opts.WriteRate, time.Minute, opts.WriteBurst),
		logger:       logger,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Books API", "1.0.0")
	humaConfig.Info.Description = "Catalog of books, authors and tags."
	// Representations are round-tripped by clients; keep $schema out of them.
	humaConfig.CreateHooks = nil
	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerAuthorRoutes()
	s.registerBookRoutes()
	s.registerTagRoutes()
	s.registerPictureRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, for OpenAPI export and tests.
func (s *Server) API() huma.API {
	return s.api
}

// Shutdown stops background work owned by the server.
func (s *Server) Shutdown() error {
	s.writeLimiter.Stop()
	return nil
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "If-None-Match"},
		ExposedHeaders: []string{"Location"},
		MaxAge:         300,
	}))
}

// writes returns a router for write endpoints, rate limited per client.
func (s *Server) writes() chi.Router {
	return s.router.With(RateLimitMiddleware(s.writeLimiter, s.logger))
}

// RateLimiter is the per-client limiter used for writes.
type RateLimiter = ratelimit.KeyedRateLimiter
