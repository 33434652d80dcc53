package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/s0l0c0ding/solocoding/config"
	"github.com/s0l0c0ding/solocoding/content"
	"github.com/s0l0c0ding/solocoding/site"
)

// Server serves the generated site and a small JSON API over the post catalog.
type Server struct {
	cfg          *config.Config
	svc          *site.Service
	logger       *slog.Logger
	echo         *echo.Echo
	serverHeader string

	mu      sync.RWMutex
	records []content.Record
}

// New constructs a server instance.
func New(cfg *config.Config, svc *site.Service, logger *slog.Logger, serverHeader string) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	srv := &Server{
		cfg:          cfg,
		svc:          svc,
		logger:       logger,
		echo:         echo.New(),
		serverHeader: strings.TrimSpace(serverHeader),
	}
	srv.setup()
	return srv
}

// Handler exposes the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start subscribes to the catalog, builds the site once and serves until ctx
// is cancelled. The catalog subscription is released on return.
func (s *Server) Start(ctx context.Context) error {
	release := s.attach()
	defer release()

	if err := s.svc.BuildStatic(ctx); err != nil {
		s.logger.Warn("static build", "error", err)
	}

	listener, err := s.listen(s.cfg.Listen)
	if err != nil {
		return err
	}

	s.echo.Listener = listener
	s.echo.Server.ReadTimeout = 15 * time.Second
	s.echo.Server.WriteTimeout = 30 * time.Second
	s.echo.Server.IdleTimeout = 120 * time.Second

	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.echo.Shutdown(ctxShutdown)
		close(shutdownDone)
	}()

	s.logger.Info("listening", "address", listener.Addr().String())
	serveErr := s.echo.Start("")
	if errors.Is(serveErr, http.ErrServerClosed) {
		<-shutdownDone
		return nil
	}
	return serveErr
}

func (s *Server) setup() {
	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info("http", "method", v.Method, "path", v.URI, "status", v.Status, "duration", v.Latency)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(s.withServerHeader)

	e.GET("/healthz", s.handleHealth)
	e.GET("/api/routes", s.handleRoutes)
	e.GET("/api/posts", s.handlePosts)
	e.GET("/search-index.json", s.handleSearchIndex)
	e.GET("/*", s.handlePage)
}

// attach subscribes to the catalog and mirrors every snapshot into the
// server. The returned function releases the subscription.
func (s *Server) attach() func() {
	sub := s.svc.Catalog().Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for records := range sub.C {
			s.mu.Lock()
			s.records = records
			s.mu.Unlock()
			s.logger.Debug("catalog updated", "posts", len(records))
		}
	}()
	return func() {
		sub.Close()
		<-done
	}
}

// snapshot returns the mirrored catalog, reading the catalog directly before
// the first snapshot arrives.
func (s *Server) snapshot() []content.Record {
	s.mu.RLock()
	records := s.records
	s.mu.RUnlock()
	if records == nil {
		return s.svc.Catalog().Snapshot()
	}
	return content.CloneAll(records)
}

func (s *Server) listen(address string) (net.Listener, error) {
	if listener, ok, err := s.systemdListener(); err != nil {
		return nil, err
	} else if ok {
		return listener, nil
	}
	if after, ok := strings.CutPrefix(address, "unix:"); ok {
		_ = os.Remove(after)
		return net.Listen("unix", after)
	}
	return net.Listen("tcp", address)
}

func (s *Server) systemdListener() (net.Listener, bool, error) {
	pidEnv := strings.TrimSpace(os.Getenv("LISTEN_PID"))
	if pidEnv == "" {
		return nil, false, nil
	}
	pid, err := strconv.Atoi(pidEnv)
	if err != nil || pid != os.Getpid() {
		return nil, false, nil
	}
	fdsEnv := strings.TrimSpace(os.Getenv("LISTEN_FDS"))
	if fdsEnv == "" {
		return nil, false, nil
	}
	fds, err := strconv.Atoi(fdsEnv)
	if err != nil {
		return nil, false, fmt.Errorf("systemd listener: invalid LISTEN_FDS: %w", err)
	}
	if fds <= 0 {
		return nil, false, nil
	}
	const sdListenFdsStart = 3
	file := os.NewFile(uintptr(sdListenFdsStart), fmt.Sprintf("systemd-fd-%d", sdListenFdsStart))
	if file == nil {
		return nil, false, fmt.Errorf("systemd listener: failed to access fd")
	}
	listener, err := net.FileListener(file)
	_ = file.Close()
	if err != nil {
		return nil, false, fmt.Errorf("systemd listener: %w", err)
	}
	_ = os.Unsetenv("LISTEN_PID")
	_ = os.Unsetenv("LISTEN_FDS")
	_ = os.Unsetenv("LISTEN_FDNAMES")
	return listener, true, nil
}

func (s *Server) withServerHeader(next echo.HandlerFunc) echo.HandlerFunc {
	if s.serverHeader == "" {
		return next
	}
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderServer, s.serverHeader)
		return next(c)
	}
}
