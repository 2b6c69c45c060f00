package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/deroute/internal/config"
	"github.com/MrSnakeDoc/deroute/internal/httpserver/deps"
	"github.com/MrSnakeDoc/deroute/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/deroute/internal/httpserver/mw"
	"github.com/MrSnakeDoc/deroute/internal/httpserver/routes"
	"github.com/MrSnakeDoc/deroute/internal/index"
	"github.com/MrSnakeDoc/deroute/internal/logger"
	"github.com/MrSnakeDoc/deroute/internal/metrics"
	"github.com/MrSnakeDoc/deroute/pkg/deroute"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	http    *http.Server
	router  chi.Router
	logger  logger.Logger
	started time.Time
}

// New builds the root router, installs global middlewares, then registers
// the system controller and every route manifest found under cfg.RoutesDirs.
func New(cfg *config.Config, loggerClient logger.Logger, d deps.Deps) (*Server, error) {
	if d.Logger == nil {
		d.Logger = loggerClient
	}
	if d.MemoryIndex == nil {
		d.MemoryIndex = index.NewMemoryIndex()
	}
	if d.Hits == nil {
		d.Hits = d.MemoryIndex
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}

	r := chi.NewRouter()

	// Middlewares must be in place before any route is mounted.
	r.Use(middleware.GetHead)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(mw.Log(loggerClient))
	r.Use(mw.Metrics(d.Metrics))
	r.Use(mw.Hits(d.Hits, loggerClient))

	// Set before mounting so every sub-router inherits them.
	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	err := deroute.Register(&deroute.Options{
		App:         r,
		RoutesDir:   cfg.RoutesDirs,
		Controllers: []*deroute.Controller{routes.System(d)},
		Loader:      deroute.NewManifestLoader(routes.Catalog(d), loggerClient.Zap()),
		Logger:      loggerClient.Zap(),
		OnMount: func(prefix string, mounted []deroute.Route) {
			d.MemoryIndex.RecordMount(prefix, routeInfos(prefix, mounted))
			d.Metrics.RecordMount(prefix, len(mounted))
		},
	})
	if err != nil {
		return nil, err
	}

	loggerClient.Info("routes registered",
		logger.Strings("prefixes", d.MemoryIndex.Prefixes()),
		logger.Int("routes", len(d.MemoryIndex.Routes())))

	s := &http.Server{
		Addr:              cfg.ListenPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return &Server{
		http:    s,
		router:  r,
		logger:  loggerClient,
		started: d.StartTime,
	}, nil
}

// Handler returns the root router (used by tests).
func (s *Server) Handler() http.Handler { return s.router }

// Start runs the HTTP server (blocks until error or shutdown).
func (s *Server) Start() error {
	s.logger.Infof("HTTP server listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	// http.ErrServerClosed is expected on graceful shutdown.
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down...")
	return s.http.Shutdown(ctx)
}

func routeInfos(prefix string, mounted []deroute.Route) []index.RouteInfo {
	out := make([]index.RouteInfo, 0, len(mounted))
	for _, rt := range mounted {
		out = append(out, index.RouteInfo{
			Method:  rt.Method,
			Path:    joinPath(prefix, rt.Pattern),
			Prefix:  prefix,
			Pattern: rt.Pattern,
		})
	}
	return out
}

// joinPath concatenates a mount prefix and a route pattern without doubling slashes.
func joinPath(prefix, pattern string) string {
	switch {
	case prefix == "" || prefix == "/":
		return pattern
	case pattern == "/":
		return prefix
	case prefix[len(prefix)-1] == '/' && pattern != "" && pattern[0] == '/':
		return prefix + pattern[1:]
	default:
		return prefix + pattern
	}
}
