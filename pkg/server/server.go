// Package server serves live animator frames over HTTP.
//
// Every viewer gets a session: a private copy of the scene layout, its own
// animator and a frame loop ticking in the background. Viewers report
// pointer and viewport changes and fetch rendered frames:
//
//	POST   /sessions                     create a session
//	GET    /sessions/{id}                session info
//	PUT    /sessions/{id}/cursor         {"x": 120, "y": 90}
//	DELETE /sessions/{id}/cursor         pointer left the page
//	PUT    /sessions/{id}/viewport       {"width": 1200, "height": 900, "dpr": 2}
//	GET    /sessions/{id}/frame.svg      ?scroll_top=&view_height=&glow=0&trail=0
//	GET    /sessions/{id}/frame.png      ?glow=0&trail=0
//	GET    /sessions/{id}/frame.txt      ?cols=&rows=
//	DELETE /sessions/{id}                end the session
//	GET    /healthz
//	GET    /version
//
// Idle sessions expire; a janitor stops their loops.
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/perimeter/pkg/animator"
	"github.com/matzehuels/perimeter/pkg/layout"
	"github.com/matzehuels/perimeter/pkg/session"
)

// Defaults for Server options.
const (
	DefaultJanitorInterval = time.Minute
	DefaultShutdownTimeout = 5 * time.Second
)

// Server is the frame server. Create it with New.
type Server struct {
	scene   layout.Source
	cfg     animator.Config
	store   *session.Store
	logger  *log.Logger
	seed    uint64
	refresh time.Duration
	janitor time.Duration

	// sessions run on this context so they outlive the request that
	// created them; ListenAndServe replaces it with its own.
	baseCtx context.Context

	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithStore sets the session store. The default store has the default TTL
// and no session limit.
func WithStore(st *session.Store) Option { return func(s *Server) { s.store = st } }

// WithLogger sets the server logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSeed seeds every session's hinge drift. Zero seeds each session from
// its ID.
func WithSeed(seed uint64) Option { return func(s *Server) { s.seed = seed } }

// WithRefresh sets the host cadence of each session's frame loop.
func WithRefresh(d time.Duration) Option { return func(s *Server) { s.refresh = d } }

// WithJanitorInterval sets how often expired sessions are swept.
func WithJanitorInterval(d time.Duration) Option { return func(s *Server) { s.janitor = d } }

// New creates a server for one scene. cfg must be valid.
func New(scene layout.Source, cfg animator.Config, opts ...Option) *Server {
	s := &Server{
		scene:   scene,
		cfg:     cfg,
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
		janitor: DefaultJanitorInterval,
		baseCtx: context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = session.NewStore(session.DefaultTTL, session.WithStoreLogger(s.logger))
	}
	s.router = s.routes()
	return s
}

// Store returns the session store.
func (s *Server) Store() *session.Store { return s.store }

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleInfo)
			r.Delete("/", s.handleDelete)
			r.Put("/cursor", s.handleCursor)
			r.Delete("/cursor", s.handleLeave)
			r.Put("/viewport", s.handleViewport)
			r.Get("/frame.{format}", s.handleFrame)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, running the
// session janitor alongside. On shutdown it drains in-flight requests and
// stops every session. A cancelled ctx is a clean stop and returns nil.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	s.baseCtx = gctx

	g.Go(func() error {
		s.logger.Info("listening", "addr", addr, "fps", s.cfg.FPS, "session_ttl", s.store.TTL())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := s.store.RunJanitor(gctx, s.janitor)
		if gctx.Err() != nil {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.store.Close()
		s.logger.Info("server stopped")
		return err
	})

	return g.Wait()
}
