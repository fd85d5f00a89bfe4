package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/pkg/browser"
	"github.com/spf13/afero"
	"golang.org/x/net/netutil"

	"github.com/Kush-Singh-26/corsfs/internal/config"
	"github.com/Kush-Singh-26/corsfs/internal/metrics"
	"github.com/Kush-Singh-26/corsfs/internal/watch"
)

var (
	ErrAlreadyStarted = errors.New("server already started")
	ErrNotStarted     = errors.New("server not started")
)

// BindError reports that the listening socket could not be opened.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("cannot listen on %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// Server is a static file server with a Start/Stop lifecycle.
type Server struct {
	cfg     *config.Config
	root    string
	fs      afero.Fs
	logger  *slog.Logger
	openURL func(string) error
	metrics *metrics.ServeMetrics

	hub        *reloadHub
	watcher    *watch.Watcher
	httpServer *http.Server
	listener   net.Listener

	mu       sync.Mutex
	started  bool
	serveErr chan error
}

type Option func(*Server)

// WithFs serves from fsys instead of the configured root directory.
// Live reload is unavailable for filesystems without a directory on disk.
func WithFs(fsys afero.Fs) Option {
	return func(s *Server) { s.fs = fsys }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithBrowserOpener replaces the function used to open the start page.
func WithBrowserOpener(open func(url string) error) Option {
	return func(s *Server) { s.openURL = open }
}

// New validates cfg and prepares a Server. Nothing is bound until Start.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Server{
		cfg:     cfg,
		logger:  slog.Default(),
		openURL: browser.OpenURL,
		metrics: metrics.NewServeMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.fs == nil {
		root, err := filepath.Abs(cfg.RootDir)
		if err != nil {
			return nil, fmt.Errorf("invalid root directory: %w", err)
		}
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("invalid root directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("invalid root directory: %s is not a directory", root)
		}
		s.root = root
		s.fs = afero.NewBasePathFs(afero.NewOsFs(), root)
	}

	if cfg.LiveReload {
		s.hub = newReloadHub()
	}
	return s, nil
}

// Handler returns the full request pipeline: CORS injection around the
// optional live-reload stream and the (optionally gzipped) file responder.
func (s *Server) Handler() http.Handler {
	var files http.Handler = NewResponder(s.fs, s.cfg.ETag, s.logger)
	if s.cfg.Compress {
		files = gzhttp.GzipHandler(files)
	}

	mux := http.NewServeMux()
	if s.hub != nil {
		mux.Handle(LiveReloadPath, s.hub)
	}
	mux.Handle("/", files)

	return withCORS(mux, s.observe)
}

func (s *Server) observe(r *http.Request, status int, bytes int64, elapsed time.Duration) {
	s.metrics.Record(status, bytes)
	s.logger.Debug("request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"bytes", bytes,
		"duration", elapsed)
}

// Metrics returns the request counters of this server.
func (s *Server) Metrics() *metrics.ServeMetrics {
	return s.metrics
}

// Start binds the listener and serves in the background. A bind failure
// is returned as a *BindError.
func (s *Server) Start() error {
	if err := s.listen(); err != nil {
		return err
	}

	fmt.Printf("🌍 Serving %s on %s\n", s.describeRoot(), s.URL())
	if s.hub != nil {
		fmt.Printf("   (Auto-reload enabled via %s)\n", LiveReloadPath)
	}

	if s.cfg.OpenBrowser {
		go s.openStartPage()
	}
	return nil
}

func (s *Server) listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}

	addr := s.cfg.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return &BindError{Addr: addr, Err: err}
	}
	if s.cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConnections)
	}

	if s.hub != nil {
		if err := s.startWatcher(); err != nil {
			// Serving still works without reload notifications.
			s.logger.Warn("Live reload disabled", "error", err)
		}
	}

	s.listener = ln
	s.httpServer = &http.Server{
		Handler:  s.Handler(),
		ErrorLog: slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	if s.hub != nil {
		s.httpServer.RegisterOnShutdown(s.hub.close)
	}

	s.serveErr = make(chan error, 1)
	go func() {
		err := s.httpServer.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.serveErr <- err
	}()
	s.started = true
	return nil
}

func (s *Server) startWatcher() error {
	if s.root == "" {
		return errors.New("no directory on disk to watch")
	}
	w, err := watch.New([]string{s.root}, s.cfg.DebounceDuration, s.hub.broadcast)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := w.Add(); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to watch directory %s: %w", s.root, err)
	}
	s.watcher = w
	go w.Start()
	return nil
}

// openStartPage is best effort: a missing browser never stops the server.
func (s *Server) openStartPage() {
	url := s.StartURL()
	if err := s.openURL(url); err != nil {
		s.logger.Warn("Failed to open browser", "url", url, "error", err)
	}
}

// Stop gracefully shuts the server down, waiting for in-flight requests
// until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return ErrNotStarted
	}
	httpServer, w := s.httpServer, s.watcher
	s.mu.Unlock()

	if w != nil {
		if err := w.Close(); err != nil {
			s.logger.Warn("Failed to close file watcher", "error", err)
		}
	}
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Wait blocks until the server stops serving and returns the serve error,
// if any.
func (s *Server) Wait() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return ErrNotStarted
	}
	ch := s.serveErr
	s.mu.Unlock()

	err := <-ch
	ch <- err
	return err
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Port returns the bound port, which differs from the configured one when
// that was 0.
func (s *Server) Port() int {
	if tcp, ok := s.Addr().(*net.TCPAddr); ok {
		return tcp.Port
	}
	return s.cfg.Port
}

// URL is the base URL a local browser can use to reach the server.
func (s *Server) URL() string {
	host := s.cfg.Host
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(s.Port()))
}

// StartURL is the URL opened in the browser on Start.
func (s *Server) StartURL() string {
	return s.URL() + "/" + s.cfg.StartPage
}

func (s *Server) describeRoot() string {
	if s.root != "" {
		return s.root
	}
	return "in-memory files"
}
