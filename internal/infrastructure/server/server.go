package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/AgentOS/navigator/internal/api/http"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/api/ws"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/navigation"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/urltools"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/service"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	registry *service.Registry
	browser  *browser.Provider
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics

	closeOnce sync.Once
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger := logging.FromLevel(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("Initializing navigator server",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.String("initial_url", cfg.Browser.InitialURL),
	)

	// Metrics first; every other component records into it
	metrics := monitoring.NewMetrics()

	var navOpts []navigation.Option
	var tracer *tracing.Tracer
	if cfg.Tracing.Enabled {
		tracer = tracing.New(cfg.Tracing.ServiceName, logger.Component("tracing"))
		navOpts = append(navOpts, navigation.WithTracer(tracer.Tracer()))
		logger.Info("Distributed tracing initialized", zap.String("service", cfg.Tracing.ServiceName))
	}

	browserProvider, err := browser.NewFromConfig(cfg, logger.Component("browser"), metrics, navOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize browser: %w", err)
	}

	registry := service.NewRegistry()
	logger.Info("Registering service providers...")
	registerProviders(registry, logger, browserProvider, urltools.New())

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.Recovery(logger.Logger))
	if tracer != nil {
		router.Use(tracing.HTTPMiddleware(tracer))
	}
	router.Use(monitoring.Middleware(metrics, "/metrics"))
	router.Use(middleware.Logger(logger.Component("http")))
	router.Use(middleware.CORS(middleware.CORSFromConfig(cfg.CORS)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitFromConfig(cfg.RateLimit)))
	}

	handlers := apihttp.NewHandlers(registry, browserProvider, apihttp.NewHandlerMetrics(metrics), logger.Component("api"))
	aggregator := apihttp.NewMetricsAggregator(metrics, browserProvider, registry)
	stream := ws.NewHandler(browserProvider.Windows(), registry, metrics, logger.Component("ws"), cfg.CORS.AllowedOrigins)

	apihttp.RegisterRoutes(router, handlers, aggregator, stream.Stream)
	// zap's level handler answers GET and PUT {"level": "..."}
	router.GET("/log/level", gin.WrapH(logger.LevelHandler()))
	router.PUT("/log/level", gin.WrapH(logger.LevelHandler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router:   router,
		registry: registry,
		browser:  browserProvider,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// Router exposes the configured engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
// The idle-window reaper runs for the lifetime of the server.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Server.Host, s.config.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.browser.Windows().Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server...")
	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// Close releases windows and script runtimes.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.logger.Info("Shutting down server...")
		if cerr := s.browser.Close(); cerr != nil {
			s.logger.Error("Failed to close browser", zap.Error(cerr))
			err = fmt.Errorf("failed to close browser: %w", cerr)
		}
		s.logger.Sync()
	})
	return err
}

func registerProviders(registry *service.Registry, logger *logging.Logger, providers ...service.Provider) {
	for _, p := range providers {
		def := p.Definition()
		if err := registry.Register(p); err != nil {
			logger.Warn("Failed to register provider", zap.String("service", def.ID), zap.Error(err))
			continue
		}
		logger.Info("Registered provider", zap.String("service", def.ID), zap.Int("tools", len(def.Tools)))
	}
}
