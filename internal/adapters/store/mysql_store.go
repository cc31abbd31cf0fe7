package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// MySQLStore is a MySQL implementation of the ResultRepository interface
type MySQLStore struct {
	sqlStore
}

// NewMySQLStore connects to the result database described by dsn
func NewMySQLStore(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	err = execAll(db, `
		CREATE TABLE IF NOT EXISTS processed_results (
			message_id VARCHAR(512) PRIMARY KEY,
			classification VARCHAR(255) NOT NULL,
			payload MEDIUMBLOB NOT NULL,
			stored_at BIGINT NOT NULL,
			expires_at BIGINT NOT NULL,
			INDEX idx_processed_results_expires_at (expires_at)
		) CHARACTER SET utf8mb4
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	s := &MySQLStore{sqlStore{
		db:     db,
		logger: logger,
		now:    time.Now,
		upsert: `
			INSERT INTO processed_results (message_id, classification, payload, stored_at, expires_at)
			VALUES (?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE
				classification = VALUES(classification),
				payload = VALUES(payload),
				stored_at = VALUES(stored_at),
				expires_at = VALUES(expires_at)
		`,
	}}
	s.janitor = startJanitor(s, cleanupFreq, logger)

	return s, nil
}
