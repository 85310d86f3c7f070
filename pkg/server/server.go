package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"mercator-hq/copycheck/pkg/telemetry/health"
)

// DefaultShutdownTimeout bounds graceful shutdown.
const DefaultShutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	// Addr is the listen address, e.g. ":9090".
	Addr string

	// Metrics is served at MetricsPath. Nil leaves the path unregistered.
	Metrics     http.Handler
	MetricsPath string

	// Health backs /health and /ready. Nil serves liveness only.
	Health *health.Checker

	// ReadyPerSecond rate limits /ready. Zero disables limiting.
	ReadyPerSecond float64

	Version string
	Commit  string

	// ShutdownTimeout defaults to DefaultShutdownTimeout.
	ShutdownTimeout time.Duration

	// Logger defaults to slog.Default()
	Logger *slog.Logger
}

// Server is the telemetry HTTP server.
type Server struct {
	opts       Options
	logger     *slog.Logger
	httpServer *http.Server

	mu           sync.RWMutex
	isRunning    bool
	addr         net.Addr
	shutdownOnce sync.Once
}

// New creates a Server. It does not listen until Start.
func New(opts Options) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	if opts.Health == nil {
		opts.Health = health.New(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		opts:   opts,
		logger: logger.With("component", "server"),
	}
}

// Start listens on the configured address and serves until ctx is done,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("listen on %s: %w", s.opts.Addr, err)
	}
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.addr = ln.Addr()
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting telemetry server", "address", ln.Addr().String(), "metrics_path", s.opts.MetricsPath)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		shutdownCtx, cancel := context.WithTimeout(ctx, s.opts.ShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("telemetry server stopped")
	})

	return shutdownErr
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.opts.Metrics != nil {
		mux.Handle(s.opts.MetricsPath, s.opts.Metrics)
	}
	health.Mount(mux, s.opts.Health, s.opts.Version, s.opts.Commit, s.opts.ReadyPerSecond)

	var handler http.Handler = mux
	handler = loggingMiddleware(s.logger, handler)
	handler = recoveryMiddleware(s.logger, handler)
	return handler
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the bound address, nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}
