package database

import (
	"strings"

	"shop-api/internal/config"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func sqliteDialector(cfg *config.DatabaseConfig) gorm.Dialector {
	return sqlite.Open(buildSQLiteDSN(cfg.Path))
}

// buildSQLiteDSN enables foreign keys, which SQLite leaves off by default
func buildSQLiteDSN(path string) string {
	if strings.Contains(path, "_foreign_keys=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}
