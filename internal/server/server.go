// Package server implements the growtree HTTP API.
//
// Routes:
//
//	POST /v1/layout      lay out an input document (JSON envelope or bare YAML)
//	GET  /v1/shapes      list registered shapes
//	GET  /v1/behaviors   list the behavior catalog
//	GET  /healthz        liveness check
//
// Every response carries an X-Request-ID header; a valid incoming ID is
// echoed, otherwise a fresh UUID is assigned.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/growtree/pkg/behavior"
	"github.com/matzehuels/growtree/pkg/config"
	"github.com/matzehuels/growtree/pkg/pipeline"
	"github.com/matzehuels/growtree/pkg/shape"
)

const (
	// DefaultMaxBodyBytes bounds request bodies.
	DefaultMaxBodyBytes = 4 << 20

	// DefaultRequestTimeout bounds a single layout request.
	DefaultRequestTimeout = 30 * time.Second

	shutdownTimeout = 5 * time.Second
)

// Options configures a [Server].
type Options struct {
	// Runner executes layouts; nil means an uncached runner.
	Runner *pipeline.Runner
	// Config is the base geometry requests are layered on.
	Config    config.Layout
	Parallel  int
	Shapes    *shape.Registry
	Behaviors *behavior.Catalog
	Logger    *log.Logger

	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

// Server serves the layout API.
type Server struct {
	opts       Options
	router     chi.Router
	httpServer *http.Server
	mu         sync.Mutex
	addr       string
}

// New creates a server. Zero options take their defaults.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	if opts.Shapes == nil {
		opts.Shapes = shape.Default
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	s := &Server{opts: opts}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed on "+r.URL.Path)
	})

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Get("/shapes", s.handleShapes)
		r.Get("/behaviors", s.handleBehaviors)
	})
	return r
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the address the server is listening on, or "" before
// ListenAndServe has bound its listener.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. A clean shutdown returns nil.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.addr = ln.Addr().String()
	s.mu.Unlock()

	s.opts.Logger.Info("listening", "addr", s.Addr())

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	err = srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
