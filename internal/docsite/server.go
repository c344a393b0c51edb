// Package docsite HTTP server.
//
// This file wires the gin router, the tracker and the Prometheus registry
// into one documentation host and manages its lifecycle.
//
// SERVER LIFECYCLE:
//   - NewServer: validate config, build metrics, tracker and page source
//   - Start / StartWithListener: serve in the background, start the event loop
//   - Shutdown: stop accepting requests, then drain queued page events
//
// The tracker loop stops after the HTTP server so that events accepted by an
// in-flight request are still processed before Shutdown returns.
package docsite

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/agntcy/docs-visits/internal/buffer"
	"github.com/agntcy/docs-visits/internal/docsite/handlers"
	"github.com/agntcy/docs-visits/internal/logging"
	"github.com/agntcy/docs-visits/internal/metrics"
	"github.com/agntcy/docs-visits/internal/tracker"
	"github.com/agntcy/docs-visits/internal/version"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

//go:embed site
var bundledSite embed.FS

// Server is the documentation host and its tracker. One Server stands for
// one page origin: every page it serves shares the tracker, its buffer and
// its submission state.
type Server struct {
	tracker    *tracker.Tracker
	registry   *prometheus.Registry
	pages      fs.FS
	httpServer *http.Server
	listener   net.Listener
	bindAddr   string
	bindPort   int
	startTime  time.Time
}

// NewServer builds the tracker and the host from config.
//
// Without config.Registry a private registry is created, so several servers
// (tests, the harness) can coexist in one process without duplicate metric
// registration. Without config.DocsDir the bundled fixture pages are served.
func NewServer(config *Config) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	gin.SetMode(gin.ReleaseMode)

	registry := config.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// The gauge reads its own view of the store so scrapes don't queue
	// behind the tracker lock.
	sizeView := buffer.New(config.Store)
	m := metrics.New(registry, func() (int, error) {
		visits, err := sizeView.Load()
		return len(visits), err
	})

	tr, err := tracker.New(config.Tracker, tracker.Options{
		Store:     config.Store,
		Submitter: config.Submitter,
		Metrics:   m,
	})
	if err != nil {
		return nil, err
	}

	pages, err := pagesFS(config.DocsDir)
	if err != nil {
		return nil, err
	}

	return &Server{
		tracker:   tr,
		registry:  registry,
		pages:     pages,
		bindAddr:  config.BindAddr,
		bindPort:  config.BindPort,
		startTime: time.Now(),
	}, nil
}

// pagesFS returns the page source: docsDir when set, the embedded site
// otherwise.
func pagesFS(docsDir string) (fs.FS, error) {
	if docsDir != "" {
		return os.DirFS(docsDir), nil
	}
	sub, err := fs.Sub(bundledSite, "site")
	if err != nil {
		return nil, fmt.Errorf("bundled pages: %w", err)
	}
	return sub, nil
}

// Tracker returns the tracker the host embeds.
func (s *Server) Tracker() *tracker.Tracker {
	return s.tracker
}

// Handler returns the host's router. gin output goes through internal/logging
// unless the CLI has already configured it.
//
// Middleware order: request logging, CORS, panic recovery. Tests drive the
// returned handler directly through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	router := gin.New()

	if !logging.IsConfiguredByCLI() {
		gin.DefaultWriter = logging.NewLevelWriter("INFO", "gin")
		gin.DefaultErrorWriter = logging.NewLevelWriter("ERROR", "gin")
	}

	router.Use(s.loggingMiddleware())
	router.Use(s.corsMiddleware())
	router.Use(gin.Recovery())

	s.setupRoutes(router)
	return router
}

// Start binds the configured address and serves in the background.
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.bindAddr, strconv.Itoa(s.bindPort))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to %s: %w", addr, err)
	}
	return s.StartWithListener(listener)
}

// StartWithListener serves on an existing listener and starts the tracker's
// event loop.
//
// Used by tests and the harness with a 127.0.0.1:0 listener so the port is
// known before the first request. Serve errors after startup are logged, not
// returned.
func (s *Server) StartWithListener(listener net.Listener) error {
	logging.Info("Starting documentation host on %s", listener.Addr())

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second, // covers a full issue request on /_tracker/submit
		IdleTimeout:  60 * time.Second,
	}

	s.tracker.Start()

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("HTTP server failed: %v", err)
		}
	}()

	logging.Success("Documentation host started at %s", s.URL())
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return net.JoinHostPort(s.bindAddr, strconv.Itoa(s.bindPort))
}

// URL returns the host's base URL.
func (s *Server) URL() string {
	return "http://" + s.Addr()
}

// Shutdown stops accepting requests, then drains the tracker's event loop.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down documentation host...")

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	s.tracker.Stop()
	return err
}

// Handler factories binding the server's state to the handlers package

func (s *Server) getHandlerHealth() gin.HandlerFunc {
	return handlers.HandleHealth(version.Version, s.startTime)
}

func (s *Server) getHandlerScript() gin.HandlerFunc {
	return handlers.HandleBridgeScript(s.tracker)
}

func (s *Server) getHandlerEvents() gin.HandlerFunc {
	return handlers.HandleEvent(s.tracker)
}

func (s *Server) getHandlerVisits() gin.HandlerFunc {
	return handlers.HandleVisits(s.tracker)
}

func (s *Server) getHandlerReplaceVisits() gin.HandlerFunc {
	return handlers.HandleReplaceVisits(s.tracker)
}

func (s *Server) getHandlerClearVisits() gin.HandlerFunc {
	return handlers.HandleClearVisits(s.tracker)
}

func (s *Server) getHandlerSubmit() gin.HandlerFunc {
	return handlers.HandleSubmit(s.tracker)
}

func (s *Server) getHandlerConfig() gin.HandlerFunc {
	return handlers.HandleConfig(s.tracker)
}

func (s *Server) getHandlerPages() gin.HandlerFunc {
	return handlers.HandlePages(s.pages)
}
