package database

import (
	"fmt"
	"time"

	"shop-api/internal/config"
	"shop-api/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Connection holds the database connection and configuration
type Connection struct {
	DB     *gorm.DB
	Config *config.DatabaseConfig
	Logger *logger.Logger
}

// Open connects to the database selected by cfg.Type (postgres or sqlite)
func Open(cfg *config.DatabaseConfig, log *logger.Logger) (*Connection, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration is required")
	}

	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	dialector, err := newDialector(cfg)
	if err != nil {
		return nil, err
	}

	gormConfig := &gorm.Config{
		Logger: NewGormLogger(log, cfg.SlowThreshold).LogMode(parseGormLevel(cfg.LogLevel)),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		// writes are single statements; let the driver error surface directly
		SkipDefaultTransaction: true,
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Type, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.Info("Successfully connected to database",
		zap.String("type", cfg.Type),
		zap.String("host", cfg.Host),
		zap.String("database", databaseName(cfg)),
		zap.Int("max_connections", cfg.MaxConnections),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
		zap.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
	)

	return &Connection{
		DB:     db,
		Config: cfg,
		Logger: log,
	}, nil
}

func newDialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Type {
	case "postgres":
		return postgresDialector(cfg), nil
	case "sqlite":
		return sqliteDialector(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

func databaseName(cfg *config.DatabaseConfig) string {
	if cfg.Type == "sqlite" {
		return cfg.Path
	}
	return cfg.Name
}

// Close closes the database connection
func (c *Connection) Close() error {
	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}

		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}

		c.Logger.Info("Database connection closed")
	}
	return nil
}

// Ping tests the database connection
func (c *Connection) Ping() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Stats returns database connection statistics
func (c *Connection) Stats() map[string]interface{} {
	sqlDB, err := c.DB.DB()
	if err != nil {
		c.Logger.Error("Failed to get underlying sql.DB for stats", zap.Error(err))
		return map[string]interface{}{
			"error": err.Error(),
		}
	}

	stats := sqlDB.Stats()
	return map[string]interface{}{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration":        stats.WaitDuration.String(),
		"max_idle_closed":      stats.MaxIdleClosed,
		"max_lifetime_closed":  stats.MaxLifetimeClosed,
	}
}

// HealthCheck pings the database and runs a trivial query
func (c *Connection) HealthCheck() error {
	if err := c.Ping(); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	var one int
	if err := c.DB.Raw("SELECT 1").Scan(&one).Error; err != nil {
		return fmt.Errorf("probe query failed: %w", err)
	}

	c.Logger.Debug("Database health check passed", zap.String("type", c.Config.Type))
	return nil
}

// Migrate runs database migrations
func (c *Connection) Migrate(models ...interface{}) error {
	if len(models) == 0 {
		return fmt.Errorf("no models provided for migration")
	}

	c.Logger.Info("Starting database migration", zap.Int("models_count", len(models)))

	if err := c.DB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	c.Logger.Info("Database migration completed successfully")
	return nil
}

// OpenWithRetry opens the database and retries until a health check passes.
// At least one attempt is made.
func OpenWithRetry(cfg *config.DatabaseConfig, log *logger.Logger, maxRetries int, retryDelay time.Duration) (*Connection, error) {
	var conn *Connection
	var err error

	if maxRetries < 1 {
		maxRetries = 1
	}

	for i := 0; i < maxRetries; i++ {
		conn, err = Open(cfg, log)
		if err == nil {
			if err = conn.HealthCheck(); err == nil {
				return conn, nil
			}
			conn.Close()
		}

		if i < maxRetries-1 {
			log.Warn("Database connection attempt failed, retrying",
				zap.Int("attempt", i+1),
				zap.Int("max_retries", maxRetries),
				zap.Duration("retry_delay", retryDelay),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}
