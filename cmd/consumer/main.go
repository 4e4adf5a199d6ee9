package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"shop-api/internal/config"
	"shop-api/internal/repository"
	"shop-api/internal/service"
	"shop-api/internal/transport/mq"
	"shop-api/pkg/database"
	"shop-api/pkg/logger"

	"go.uber.org/zap"
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

	appLogger.Info("Starting fault log consumer",
		zap.String("name", cfg.App.Name+"-consumer"),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	deps, err := initializeConsumerDependencies(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize consumer dependencies", zap.Error(err))
	}

	// Start consumer
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := deps.Consumer.Start(ctx); err != nil {
		appLogger.Fatal("Failed to start message queue consumer", zap.Error(err))
	}

	appLogger.Info("Fault log consumer started successfully")

	// Wait for interrupt signal to gracefully shutdown the consumer
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down consumer...")

	// Cancel context to stop consumer
	cancel()

	if err := deps.Close(); err != nil {
		appLogger.Error("Failed to stop consumer gracefully", zap.Error(err))
	} else {
		appLogger.Info("Consumer stopped gracefully")
	}

	appLogger.Info("Consumer shutdown complete")
}

// ConsumerDependencies holds all dependencies needed for the consumer
type ConsumerDependencies struct {
	FaultLogs repository.FaultLogRepository
	Service   service.FaultLogService
	Handler   mq.FaultEventHandler
	Consumer  mq.FaultConsumer
	Database  *database.Connection
}

// Close stops the consumer and releases the database connection
func (d *ConsumerDependencies) Close() error {
	err := d.Consumer.Stop()
	if d.Database != nil {
		if dbErr := d.Database.Close(); dbErr != nil && err == nil {
			err = dbErr
		}
	}
	return err
}

// initializeConsumerDependencies initializes all dependencies needed for the consumer
func initializeConsumerDependencies(cfg *config.Config, logger *logger.Logger) (*ConsumerDependencies, error) {
	if !cfg.MessageQueue.EnableMock && !cfg.MessageQueue.EnableConsumer {
		return nil, fmt.Errorf("consumer is disabled in configuration")
	}

	var (
		faultLogs repository.FaultLogRepository
		conn      *database.Connection
	)
	switch cfg.Database.Type {
	case "memory":
		faultLogs = repository.NewMemory().FaultLogs
		logger.Warn("Using in-memory fault log; entries are lost on exit")
	default:
		var err error
		conn, err = database.OpenWithRetry(&cfg.Database, logger, cfg.Database.ConnectRetries, cfg.Database.RetryDelay)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := conn.Migrate(repository.Models()...); err != nil {
				conn.Close()
				return nil, err
			}
		}
		faultLogs = repository.NewGorm(conn.DB).FaultLogs
	}

	svc := service.NewFaultLogService(faultLogs, logger.Logger)
	handler := mq.NewFaultLogEventHandler(svc, logger.Logger)

	var consumer mq.FaultConsumer
	if cfg.MessageQueue.EnableMock {
		consumer = mq.NewMockConsumer(handler, logger.Logger)
		logger.Info("Using mock message queue consumer")
	} else {
		consumerConfig := &mq.RabbitMQConsumerConfig{
			URL:           cfg.MessageQueue.URL,
			ExchangeName:  cfg.MessageQueue.ExchangeName,
			QueueName:     cfg.MessageQueue.QueueName,
			RoutingKeys:   cfg.MessageQueue.RoutingKeys,
			Durable:       cfg.MessageQueue.Durable,
			AutoDelete:    cfg.MessageQueue.AutoDelete,
			Exclusive:     cfg.MessageQueue.Exclusive,
			NoWait:        cfg.MessageQueue.NoWait,
			PrefetchCount: cfg.MessageQueue.PrefetchCount,
		}

		var err error
		consumer, err = mq.NewRabbitMQConsumer(consumerConfig, handler, logger.Logger)
		if err != nil {
			if conn != nil {
				conn.Close()
			}
			return nil, fmt.Errorf("failed to initialize RabbitMQ consumer: %w", err)
		}
		logger.Info("Using RabbitMQ consumer")
	}

	return &ConsumerDependencies{
		FaultLogs: faultLogs,
		Service:   svc,
		Handler:   handler,
		Consumer:  consumer,
		Database:  conn,
	}, nil
}

// Health check for the consumer application
func init() {
	// Ensure the consumer application can start properly
	if os.Getenv("HEALTH_CHECK") == "true" {
		fmt.Println("OK")
		os.Exit(0)
	}
}
