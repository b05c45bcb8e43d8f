// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver) and schema migrations.
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-study-backend/internal/domain"
)

// connPragmas are applied per connection through the DSN so that every
// pooled connection sees them, not only the one that ran an Exec.
var connPragmas = []string{
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

// OpenSQLite opens (or creates) the SQLite database at path with WAL
// journaling, enforced foreign keys and a bounded connection pool.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Stat the parent up front; the driver reports a missing directory as an
	// opaque "out of memory (14)" on some platforms.
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	dsn := path
	for _, p := range connPragmas {
		sep := "&"
		if dsn == path {
			sep = "?"
		}
		dsn += fmt.Sprintf("%s_pragma=%s", sep, p)
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// AutoMigrate creates or updates the schema for all persisted models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Assignment{},
		&domain.UserProfile{},
		&domain.UserSettings{},
		&domain.StateBlob{},
		&domain.ChatReceipt{},
	)
}
