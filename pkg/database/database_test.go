package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"shop-api/internal/config"
	"shop-api/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type widget struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:50;not null;uniqueIndex"`
}

func memoryConfig() *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Type:           "sqlite",
		Path:           ":memory:",
		MaxConnections: 1,
		MaxIdleConns:   1,
		LogLevel:       "silent",
	}
}

func TestBuildPostgresDSN(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		Name:     "test_db",
		Username: "test_user",
		Password: "test_password",
		SSLMode:  "disable",
	}

	expected := "host=localhost port=5432 user=test_user password=test_password dbname=test_db sslmode=disable TimeZone=UTC"
	assert.Equal(t, expected, buildPostgresDSN(cfg))
}

func TestBuildSQLiteDSN(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"shop.db", "shop.db?_foreign_keys=on&_busy_timeout=5000"},
		{":memory:", ":memory:?_foreign_keys=on&_busy_timeout=5000"},
		{"file:shop.db?cache=shared", "file:shop.db?cache=shared&_foreign_keys=on&_busy_timeout=5000"},
		{"shop.db?_foreign_keys=off", "shop.db?_foreign_keys=off"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, buildSQLiteDSN(tt.path))
		})
	}
}

func TestOpen_InvalidArguments(t *testing.T) {
	log := logger.NewNop()

	_, err := Open(nil, log)
	assert.ErrorContains(t, err, "database configuration is required")

	_, err = Open(memoryConfig(), nil)
	assert.ErrorContains(t, err, "logger is required")

	_, err = Open(&config.DatabaseConfig{Type: "mysql"}, log)
	assert.ErrorContains(t, err, "unsupported database type")
}

func TestOpen_SQLite(t *testing.T) {
	conn, err := Open(memoryConfig(), logger.NewNop())
	require.NoError(t, err)
	defer conn.Close()

	assert.NoError(t, conn.Ping())
	assert.NoError(t, conn.HealthCheck())
	assert.Contains(t, conn.Stats(), "open_connections")

	assert.ErrorContains(t, conn.Migrate(), "no models provided")
	require.NoError(t, conn.Migrate(&widget{}))

	require.NoError(t, conn.DB.Create(&widget{Name: "gear"}).Error)
	err = conn.DB.Create(&widget{Name: "gear"}).Error
	assert.Error(t, err, "unique index must be enforced")
}

func TestOpenWithRetry_GivesUp(t *testing.T) {
	start := time.Now()
	conn, err := OpenWithRetry(&config.DatabaseConfig{Type: "mysql"}, logger.NewNop(), 2, 50*time.Millisecond)

	assert.Nil(t, conn)
	assert.ErrorContains(t, err, "failed to connect to database after 2 attempts")
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestOpenWithRetry_AtLeastOneAttempt(t *testing.T) {
	conn, err := OpenWithRetry(&config.DatabaseConfig{Type: "mysql"}, logger.NewNop(), 0, time.Second)

	assert.Nil(t, conn)
	assert.ErrorContains(t, err, "after 1 attempts")
	assert.ErrorContains(t, err, "mysql")
}

func TestOpenWithRetry_SQLite(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Type:     "sqlite",
		Path:     filepath.Join(t.TempDir(), "shop.db"),
		LogLevel: "silent",
	}

	conn, err := OpenWithRetry(cfg, logger.NewNop(), 3, 10*time.Millisecond)
	require.NoError(t, err)
	defer conn.Close()

	stats := conn.Stats()
	assert.Contains(t, stats, "open_connections")
	assert.NotContains(t, stats, "error")
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	gl := NewGormLogger(&logger.Logger{Logger: zap.New(core)}, 100*time.Millisecond)
	query := func() (string, int64) { return "SELECT * FROM widgets", 0 }
	ctx := context.Background()

	gl.Trace(ctx, time.Now(), query, gorm.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len(), "missing rows are not errors")

	gl.Trace(ctx, time.Now(), query, errors.New("no such table: widgets"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Database query failed", logs.All()[0].Message)

	gl.Trace(ctx, time.Now().Add(-time.Second), query, nil)
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "Slow database query", logs.All()[1].Message)

	gl.LogMode(gormlogger.Silent).Trace(ctx, time.Now(), query, errors.New("ignored"))
	assert.Equal(t, 2, logs.Len())
}

func TestParseGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, parseGormLevel("silent"))
	assert.Equal(t, gormlogger.Error, parseGormLevel("error"))
	assert.Equal(t, gormlogger.Info, parseGormLevel("info"))
	assert.Equal(t, gormlogger.Warn, parseGormLevel("anything"))
}

// Integration tests that require a real PostgreSQL database
func TestPostgreSQLIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	if os.Getenv("TEST_DATABASE_URL") == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL integration tests")
	}

	cfg := &config.DatabaseConfig{
		Type:            "postgres",
		Host:            getEnvOrDefault("DB_HOST", "localhost"),
		Port:            5432,
		Name:            getEnvOrDefault("DB_NAME", "postgres"),
		Username:        getEnvOrDefault("DB_USER", "postgres"),
		Password:        getEnvOrDefault("DB_PASSWORD", ""),
		SSLMode:         "disable",
		MaxConnections:  10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
		LogLevel:        "warn",
	}

	conn, err := Open(cfg, logger.NewNop())
	if err != nil {
		t.Skipf("Could not connect to PostgreSQL: %v", err)
	}
	defer conn.Close()

	assert.NoError(t, conn.HealthCheck())
	assert.NoError(t, conn.Migrate(&widget{}))
	conn.DB.Exec("DROP TABLE IF EXISTS widgets")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
