package database

import (
	"fmt"

	"shop-api/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func postgresDialector(cfg *config.DatabaseConfig) gorm.Dialector {
	return postgres.New(postgres.Config{
		DSN:                  buildPostgresDSN(cfg),
		PreferSimpleProtocol: false,
	})
}

// buildPostgresDSN builds a PostgreSQL Data Source Name from configuration
func buildPostgresDSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
}
