package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"shop-api/internal/config"
	"shop-api/internal/fault"
	"shop-api/internal/repository"
	"shop-api/internal/service"
	httpTransport "shop-api/internal/transport/http"
	"shop-api/internal/transport/mq"
	"shop-api/pkg/database"
	"shop-api/pkg/i18n"
	"shop-api/pkg/logger"
	"shop-api/pkg/protector"
	"shop-api/pkg/validator"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Close()

	// Set global logger
	logger.SetGlobal(appLogger)

	appLogger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	// Initialize dependencies
	deps, err := initializeDependencies(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize dependencies", zap.Error(err))
	}

	// Initialize Echo server
	e := setupEcho(cfg, appLogger, deps)

	// Register routes
	deps.Handler.RegisterRoutes(e)
	if cfg.Server.EnableMetrics {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	// Start server
	startServer(e, cfg, appLogger, deps)
}

// Dependencies holds all application dependencies
type Dependencies struct {
	Store     *repository.Store
	Database  *database.Connection
	Catalog   service.CatalogService
	FaultLogs service.FaultLogService
	Localizer *i18n.Localizer
	Protector protector.Protector
	Registry  *prometheus.Registry
	Metrics   *fault.Metrics
	Handler   *httpTransport.CatalogHandler
	Producer  mq.FaultProducer
}

// initializeDependencies initializes all application dependencies
func initializeDependencies(cfg *config.Config, logger *logger.Logger) (*Dependencies, error) {
	// Initialize validator
	validator := validator.New()

	localizer, err := i18n.NewLocalizer(&i18n.Config{
		DefaultLanguage: cfg.I18n.DefaultLanguage,
		TranslationDir:  cfg.I18n.TranslationDir,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}

	idProtector, err := newProtector(cfg, logger)
	if err != nil {
		return nil, err
	}

	store, conn, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := fault.NewMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	// Initialize services
	catalog := service.NewCatalogService(store.Categories, store.Products, logger.Logger)
	faultLogs := service.NewFaultLogService(store.FaultLogs, logger.Logger)

	// Initialize HTTP handler
	var health httpTransport.HealthChecker
	if conn != nil {
		health = conn
	}
	handler := httpTransport.NewCatalogHandler(catalog, faultLogs, idProtector, validator, health, cfg.App.Version)

	return &Dependencies{
		Store:     store,
		Database:  conn,
		Catalog:   catalog,
		FaultLogs: faultLogs,
		Localizer: localizer,
		Protector: idProtector,
		Registry:  registry,
		Metrics:   metrics,
		Handler:   handler,
		Producer:  newProducer(cfg, logger),
	}, nil
}

// openStore selects the repositories for cfg.Database.Type. The connection
// is nil for the in-memory store.
func openStore(cfg *config.Config, logger *logger.Logger) (*repository.Store, *database.Connection, error) {
	if cfg.Database.Type == "memory" {
		logger.Info("Using in-memory repositories")
		return repository.NewMemory(), nil, nil
	}

	conn, err := database.OpenWithRetry(&cfg.Database, logger, cfg.Database.ConnectRetries, cfg.Database.RetryDelay)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Database pool ready", zap.Any("stats", conn.Stats()))
	if cfg.Database.AutoMigrate {
		if err := conn.Migrate(repository.Models()...); err != nil {
			conn.Close()
			return nil, nil, err
		}
	}
	return repository.NewGorm(conn.DB), conn, nil
}

// newProtector builds the ID protector. Without a configured key a random
// one is generated, so tokens do not survive a restart.
func newProtector(cfg *config.Config, logger *logger.Logger) (protector.Protector, error) {
	if cfg.Protector.Key != "" {
		p, err := protector.NewFromHex(cfg.Protector.Key)
		if err != nil {
			return nil, fmt.Errorf("invalid protector key: %w", err)
		}
		return p, nil
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate protector key: %w", err)
	}
	logger.Warn("PROTECTOR_KEY not set, using an ephemeral key")
	return protector.New(key)
}

// newProducer returns the fault event producer, falling back to the mock
// when RabbitMQ is disabled or unreachable.
func newProducer(cfg *config.Config, logger *logger.Logger) mq.FaultProducer {
	if cfg.MessageQueue.EnableMock {
		logger.Info("Using mock message queue producer")
		return mq.NewMockProducer(logger.Logger)
	}
	if !cfg.MessageQueue.EnableProducer {
		logger.Info("Producer disabled, using mock")
		return mq.NewMockProducer(logger.Logger)
	}

	producer, err := mq.NewRabbitMQProducer(&mq.RabbitMQProducerConfig{
		URL:           cfg.MessageQueue.URL,
		ExchangeName:  cfg.MessageQueue.ExchangeName,
		RoutingPrefix: cfg.MessageQueue.RoutingPrefix,
		Source:        cfg.App.Name,
		Durable:       cfg.MessageQueue.Durable,
		AutoDelete:    cfg.MessageQueue.AutoDelete,
	}, logger.Logger)
	if err != nil {
		logger.Warn("Failed to initialize RabbitMQ producer, using mock", zap.Error(err))
		return mq.NewMockProducer(logger.Logger)
	}

	logger.Info("Using RabbitMQ producer")
	return producer
}

// setupEcho configures the Echo web framework
func setupEcho(cfg *config.Config, logger *logger.Logger, deps *Dependencies) *echo.Echo {
	e := echo.New()

	// Hide Echo banner
	e.HideBanner = true
	e.HidePort = true

	// Configure Echo
	e.Debug = cfg.App.Debug
	e.HTTPErrorHandler = httpTransport.ErrorHandlerMiddleware(httpTransport.ErrorHandlerConfig{
		Localizer: deps.Localizer,
		Logger:    logger,
		Metrics:   deps.Metrics,
		Producer:  deps.Producer,
	})

	// Middleware
	e.Use(httpTransport.RequestIDMiddleware())
	e.Use(httpTransport.FaultRecorderMiddleware())
	e.Use(createLoggingMiddleware(logger))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableErrorHandler: true,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("Recovered from panic", zap.Error(err), zap.ByteString("stack", stack))
			return err
		},
	}))
	e.Use(httpTransport.I18nMiddleware(deps.Localizer))
	e.Use(middleware.ContextTimeout(cfg.Server.ReadTimeout))

	if cfg.Server.EnableCORS {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{
				http.MethodGet,
				http.MethodPost,
				http.MethodPut,
				http.MethodDelete,
				http.MethodOptions,
			},
			AllowHeaders: []string{
				echo.HeaderOrigin,
				echo.HeaderContentType,
				echo.HeaderAccept,
				echo.HeaderAuthorization,
				echo.HeaderXRequestID,
				"X-Language",
			},
			ExposeHeaders: []string{"Content-Language", echo.HeaderXRequestID},
		}))
	}

	// Security headers
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
	}))

	if cfg.Server.RateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.Server.RateLimit))))
	}

	e.Use(middleware.BodyLimit("1M"))

	// Compression
	e.Use(middleware.Gzip())

	return e
}

// createLoggingMiddleware creates a custom logging middleware
func createLoggingMiddleware(logger *logger.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRequestID: true,
		LogUserAgent: true,
		LogRemoteIP:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
				zap.String("user_agent", v.UserAgent),
				zap.String("request_id", v.RequestID),
			}

			// Failures are logged with their classification by the error handler
			if v.Error != nil {
				logger.Warn("Request failed", fields...)
			} else {
				logger.Info("Request completed", fields...)
			}

			return nil
		},
	})
}

// startServer starts the HTTP server with graceful shutdown
func startServer(e *echo.Echo, cfg *config.Config, logger *logger.Logger, deps *Dependencies) {
	// Server configuration
	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout * 2,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting HTTP server",
			zap.String("address", server.Addr),
			zap.Duration("read_timeout", server.ReadTimeout),
			zap.Duration("write_timeout", server.WriteTimeout),
		)

		if err := e.StartServer(server); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Shutdown server
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	} else {
		logger.Info("Server exited gracefully")
	}

	// Close message queue producer
	if err := deps.Producer.Close(); err != nil {
		logger.Error("Failed to close message queue producer", zap.Error(err))
	} else {
		logger.Info("Message queue producer closed")
	}

	if deps.Database != nil {
		if err := deps.Database.Close(); err != nil {
			logger.Error("Failed to close database", zap.Error(err))
		}
	}
}

// Health check for the application
func init() {
	// Ensure the application can start properly
	if os.Getenv("HEALTH_CHECK") == "true" {
		fmt.Println("OK")
		os.Exit(0)
	}
}
