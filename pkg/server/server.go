// Package server exposes the transform over HTTP.
//
// The HTTP surface is non-interactive: the rename answers travel with the
// request, so every response is a pure function of the request body and
// the server's rules and can be memoised in the runner's cache.
//
//	POST /v1/transform  {"svg": "...", "renames": {"opt2": "Storage"}}
//	POST /v1/inspect    {"svg": "..."}
//	GET  /healthz
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/floorplan/pkg/config"
	"github.com/matzehuels/floorplan/pkg/pipeline"
	"github.com/matzehuels/floorplan/pkg/rename"
)

// DefaultMaxBodyBytes bounds request bodies when Options.MaxBodyBytes is 0.
const DefaultMaxBodyBytes = 8 << 20

// Options configure a Server.
type Options struct {
	Runner       *pipeline.Runner
	Rules        config.Rules
	Policy       rename.Policy
	Logger       *log.Logger
	MaxBodyBytes int64
}

// Server serves the HTTP API.
type Server struct {
	runner  *pipeline.Runner
	rules   config.Rules
	policy  rename.Policy
	logger  *log.Logger
	maxBody int64
	router  chi.Router
}

// New builds a server and its routes.
func New(opts Options) *Server {
	s := &Server{
		runner:  opts.Runner,
		rules:   opts.Rules,
		policy:  opts.Policy,
		logger:  opts.Logger,
		maxBody: opts.MaxBodyBytes,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	if s.rules.Element == "" {
		s.rules = config.DefaultRules()
	}
	if s.policy == nil {
		s.policy = rename.Verbatim
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}

	r := chi.NewRouter()
	r.Use(requestID, s.logRequests, middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/transform", s.handleTransform)
		r.Post("/inspect", s.handleInspect)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully. ready, if non-nil, receives the bound address.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	if ready != nil {
		ready(ln.Addr())
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
