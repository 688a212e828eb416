package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"machinehub/statusboard/pkg/config"
	"machinehub/statusboard/pkg/limits/ratelimit"
	"machinehub/statusboard/pkg/registry"
	"machinehub/statusboard/pkg/responder"
	"machinehub/statusboard/pkg/security/auth"
	"machinehub/statusboard/pkg/telemetry/health"
	"machinehub/statusboard/pkg/telemetry/tracing"
)

// HeartbeatResponder records heartbeats and renders replies.
type HeartbeatResponder interface {
	Heartbeat(ctx context.Context, device, report string) (responder.Reply, error)
}

// DeviceLister is the registry view the read-only endpoints use.
type DeviceLister interface {
	Devices(ctx context.Context) ([]registry.Device, error)
	HeartbeatCounts(ctx context.Context, since time.Time) ([]registry.HeartbeatBucket, error)
}

// BuildInfo is reported by /version.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Dependencies are the components the server routes to.
type Dependencies struct {
	Responder   HeartbeatResponder
	Devices     DeviceLister
	Health      *health.Checker
	Metrics     http.Handler       // Optional
	Tracer      *tracing.Tracer    // Optional
	TLS         *tls.Config        // Optional; serves HTTPS when set
	APIKeys     *auth.Validator    // Optional; guards /api when set
	Limiter     *ratelimit.Limiter // Optional; throttles heartbeats per device
	MetricsPath string
	Build       BuildInfo
	Logger      *slog.Logger
	Now         func() time.Time
	AliveWindow time.Duration
}

// Server is the statusboard HTTP server.
type Server struct {
	config     config.ServerConfig
	deps       Dependencies
	logger     *slog.Logger
	httpServer *http.Server

	mu        sync.RWMutex
	isRunning bool
	addr      net.Addr
}

// NewServer creates a server.
func NewServer(cfg config.ServerConfig, deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Health == nil {
		deps.Health = health.New(0)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.AliveWindow <= 0 {
		deps.AliveWindow = config.DefaultAliveWindow
	}
	if deps.MetricsPath == "" {
		deps.MetricsPath = config.DefaultMetricsPath
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = config.DefaultShutdownTimeout
	}

	return &Server{
		config: cfg,
		deps:   deps,
		logger: deps.Logger.With("component", "server"),
	}
}

// Start listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}

	if s.deps.TLS != nil {
		ln = tls.NewListener(ln, s.deps.TLS)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.addr = ln.Addr()
	s.isRunning = true
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "address", ln.Addr().String(), "tls", s.deps.TLS != nil)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errCh:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown gracefully shuts down the server within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.isRunning = false
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the listening address once Start has bound it.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}
