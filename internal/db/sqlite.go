package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vibing2/vibing-desktop/internal/db/migrations"
	"github.com/vibing2/vibing-desktop/internal/logging"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// maxConns caps the shared pool. Reads and writes are infrequent and
// short-lived, so a handful of connections is plenty.
const maxConns = 5

// Open opens (creating if needed) the SQLite database at path, applies all
// pending migrations, and returns the shared connection pool. A migration
// failure is fatal to startup: the process must not run against a
// partially-migrated schema.
func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logging.Infof("SQLite database initialized at %s", path)
	return db, nil
}
