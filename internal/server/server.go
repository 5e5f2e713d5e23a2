// Package server wires the HTTP surface: routing, middleware, lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/probekit/healthd/internal/apidoc"
	"github.com/probekit/healthd/internal/config"
	"github.com/probekit/healthd/internal/constants"
	"github.com/probekit/healthd/internal/health"
	"github.com/probekit/healthd/internal/observability"
	"github.com/probekit/healthd/internal/security"
)

type Server struct {
	config      *config.Config
	logger      *observability.Logger
	metrics     *observability.Metrics
	tracer      *observability.Tracer
	rateLimiter *security.RateLimiter
	apiDoc      *apidoc.Document

	handler       http.Handler
	httpServer    *http.Server
	metricsServer *http.Server

	startTime time.Time
	draining  atomic.Bool
}

func New(cfg *config.Config) (*Server, error) {
	logger, err := observability.NewLogger(cfg.Observability.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	tracer, err := observability.NewTracer(cfg.Observability.Tracing)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	doc, err := apidoc.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load API document: %w", err)
	}

	s := &Server{
		config:      cfg,
		logger:      logger,
		metrics:     observability.NewMetrics(),
		tracer:      tracer,
		rateLimiter: security.NewRateLimiter(&cfg.Security.RateLimit),
		apiDoc:      doc,
		startTime:   time.Now(),
	}
	s.handler = s.buildHandler()

	return s, nil
}

// Logger exposes the server's logger for components started alongside it.
func (s *Server) Logger() *zap.Logger {
	return s.logger.Logger
}

// Handler returns the fully assembled HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// buildHandler assembles the mux and middleware chain.
//
// The probe route is registered with a method pattern: the Go 1.22+ mux
// matches GET and HEAD only, answers 405 with an Allow header for other
// methods, and matches the exact path only, so /health/anything is a 404.
func (s *Server) buildHandler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET "+constants.PathHealth, health.NewHandler())
	mux.HandleFunc("GET "+constants.PathReady, s.readinessHandler)
	mux.HandleFunc("GET "+constants.PathStatus, s.statusHandler)
	mux.Handle("GET "+constants.PathOpenAPI, s.apiDoc.Handler())
	mux.HandleFunc("GET /{$}", s.indexHandler)

	if s.config.Observability.Metrics.Enabled {
		mux.Handle("GET "+s.config.Observability.Metrics.Path, s.metrics.Handler())
	}

	return s.applyMiddleware(mux)
}

// Start runs the main and metrics servers until SIGINT/SIGTERM, then shuts
// both down gracefully.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:           s.config.GetServerAddress(),
		Handler:        s.handler,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	s.logger.Info("Starting server",
		zap.String("host", s.config.Server.Host),
		zap.String("port", s.config.Server.Port),
		zap.Bool("tls", s.config.TLS.Enabled),
	)
	s.metrics.SetHealthStatus(true)

	if s.config.Observability.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle(s.config.Observability.Metrics.Path, s.metrics.Handler())
		s.metricsServer = &http.Server{
			Addr:              s.config.GetMetricsAddress(),
			Handler:           metricsMux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		s.logger.Info("Starting metrics server",
			zap.String("port", s.config.Server.MetricsPort),
		)
		go func() {
			if err := s.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("Metrics server failed", zap.Error(err))
			}
		}()
	}

	go func() {
		var err error
		if s.config.TLS.Enabled {
			err = s.httpServer.ListenAndServeTLS(s.config.TLS.CertFile, s.config.TLS.KeyFile)
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return s.shutdown()
}

// shutdown drains both servers in parallel under the shutdown timeout.
func (s *Server) shutdown() error {
	s.logger.Info("Shutting down server...")
	s.draining.Store(true)
	s.metrics.SetHealthStatus(false)

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	var wg sync.WaitGroup
	errChan := make(chan error, 2)

	if s.metricsServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.metricsServer.Shutdown(ctx); err != nil {
				s.logger.Error("Failed to shutdown metrics server", zap.Error(err))
				errChan <- fmt.Errorf("metrics server shutdown: %w", err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("Failed to shutdown main server", zap.Error(err))
			errChan <- fmt.Errorf("main server shutdown: %w", err)
		}
	}()

	wg.Wait()
	close(errChan)

	if err := s.tracer.Shutdown(ctx); err != nil {
		s.logger.Error("Failed to shutdown tracer", zap.Error(err))
	}
	_ = s.logger.Sync()

	for err := range errChan {
		if err != nil {
			return err
		}
	}
	return nil
}

// Reload re-reads the configuration file and applies the settings that can
// change at runtime. Currently that is the logging level; everything else
// requires a restart and is logged when it differs.
func (s *Server) Reload(ctx context.Context) error {
	if s.config.Source == "" {
		return nil
	}

	cfg, err := config.LoadConfig(s.config.Source, nil)
	if err != nil {
		return fmt.Errorf("reload config: %w", err)
	}

	if err := s.logger.SetLevel(cfg.Observability.Logging.Level); err != nil {
		return fmt.Errorf("apply log level: %w", err)
	}

	if cfg.Server != s.config.Server {
		s.logger.Warn("Server settings changed on disk; restart required to apply them")
	}

	s.logger.Info("Configuration reloaded",
		zap.String("file", s.config.Source),
		zap.String("log_level", cfg.Observability.Logging.Level),
	)
	return nil
}

// Name identifies the server to the hot reload manager.
func (s *Server) Name() string { return "server" }
