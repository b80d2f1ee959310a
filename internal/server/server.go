package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/somanole/bmicalc/internal/bmi"
	"github.com/somanole/bmicalc/internal/config"
	"github.com/somanole/bmicalc/internal/telemetry"
	"github.com/somanole/bmicalc/internal/web"
)

// Server wraps the HTTP server components for bmicalc.
type Server struct {
	mux        *http.ServeMux
	handler    http.Handler
	cfg        *config.Config
	logger     *zap.Logger
	telemetry  *telemetry.Provider
	httpServer *http.Server
	inFlight   chan struct{}
	ready      atomic.Bool

	mu       sync.Mutex
	stopping bool

	// classify is swapped in tests to simulate slow or failing classification.
	classify func(bmi.Measurement) bmi.Result
}

// New creates a new server with all routes registered. A nil logger or
// telemetry provider falls back to no-op implementations.
func New(cfg *config.Config, logger *zap.Logger, tp *telemetry.Provider) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tp == nil {
		tp = telemetry.NewNoop()
	}

	maxInFlight := cfg.Server.MaxInFlightRequests
	if maxInFlight <= 0 {
		maxInFlight = 1
	}

	s := &Server{
		mux:       http.NewServeMux(),
		cfg:       cfg,
		logger:    logger,
		telemetry: tp,
		inFlight:  make(chan struct{}, maxInFlight),
		classify:  bmi.Classify,
	}

	// Routes
	s.mux.Handle("/", web.Index())
	s.mux.Handle("/static/", web.Static())
	s.mux.Handle("/calculate-bmi", s.limitInFlight(http.HandlerFunc(s.handleCalculate)))
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/readyz", s.handleReady)
	s.mux.HandleFunc("/robots.txt", handleRobots)

	s.handler = s.withRequestContext(s.recoverPanics(s.mux))

	s.httpServer = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ErrorLog:          zap.NewStdLog(logger.Named("http")),
	}

	return s
}

// Handler returns the fully wrapped root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve accepts connections on ln until Shutdown is called. It returns nil
// after a graceful shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("bmicalc server running", zap.String("addr", ln.Addr().String()))
	s.mu.Lock()
	if !s.stopping {
		s.ready.Store(true)
	}
	s.mu.Unlock()
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx
// expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.stopping = true
	s.ready.Store(false)
	s.mu.Unlock()
	s.logger.Info("bmicalc server shutting down")
	return s.httpServer.Shutdown(ctx)
}

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully within server.shutdown_timeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Server.Addr, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Serve(ln)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
