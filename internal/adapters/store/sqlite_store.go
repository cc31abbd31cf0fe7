package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of the ResultRepository interface
type SQLiteStore struct {
	sqlStore
}

// NewSQLiteStore opens (or creates) the result database at dbPath
func NewSQLiteStore(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	err = execAll(db, `
		CREATE TABLE IF NOT EXISTS processed_results (
			message_id TEXT PRIMARY KEY,
			classification TEXT NOT NULL,
			payload BLOB NOT NULL,
			stored_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		)
	`, `CREATE INDEX IF NOT EXISTS idx_processed_results_expires_at ON processed_results(expires_at)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	s := &SQLiteStore{sqlStore{
		db:     db,
		logger: logger,
		now:    time.Now,
		upsert: `
			INSERT OR REPLACE INTO processed_results (message_id, classification, payload, stored_at, expires_at)
			VALUES (?, ?, ?, ?, ?)
		`,
	}}
	s.janitor = startJanitor(s, cleanupFreq, logger)

	return s, nil
}
