// Package server exposes conversion over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"htmldocx/config"
	"htmldocx/media"
	"htmldocx/state"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Server converts documents posted to it. It is safe for concurrent use,
// every request gets its own conversion state.
type Server struct {
	cfg     *config.Config
	rpt     *config.Report
	log     *zap.Logger
	fetcher media.Fetcher
	router  chi.Router
}

// Option configures Server.
type Option func(*Server)

// WithFetcher replaces network fetcher used for remote images.
func WithFetcher(f media.Fetcher) Option {
	return func(s *Server) {
		s.fetcher = f
	}
}

// WithReport makes server store request sources in debug report.
func WithReport(rpt *config.Report) Option {
	return func(s *Server) {
		s.rpt = rpt
	}
}

// New creates server for configuration, log may be nil.
func New(cfg *config.Config, log *zap.Logger, opts ...Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		cfg:     cfg,
		log:     log.Named("server"),
		fetcher: media.NewHTTPFetcher(&cfg.Document.Fetch),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(s.recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Post("/convert", s.handleConvert)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// Handler returns root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve accepts connections on listener until context is canceled, then
// shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          zap.NewStdLog(s.log),
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	s.log.Info("Listening", zap.Stringer("address", ln.Addr()))

	select {
	case err := <-errc:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("Shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(sctx)
	if serr := <-errc; !errors.Is(serr, http.ErrServerClosed) {
		err = multierr.Append(err, serr)
	}
	return err
}

// ListenAndServe listens on configured address.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("unable to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Run is "serve" command action.
func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)

	addr := env.Cfg.Server.Listen
	if l := cmd.String("listen"); len(l) > 0 {
		addr = l
	}
	if len(env.Cfg.Server.Token) == 0 {
		env.Log.Warn("Server token is not configured, requests are not authenticated")
	}
	return New(env.Cfg, env.Log, WithReport(env.Rpt)).ListenAndServe(ctx, addr)
}
