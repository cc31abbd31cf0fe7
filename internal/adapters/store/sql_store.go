package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/staffing-mail-agent/internal/core"
)

// sqlStore holds the queries shared by the SQL backed repositories.
// Timestamps are stored as unix seconds so both dialects compare them the same way.
type sqlStore struct {
	db      *sql.DB
	logger  *zap.Logger
	upsert  string
	now     func() time.Time
	janitor *janitor
}

func (s *sqlStore) Get(ctx context.Context, messageID string) (*core.StoredResult, error) {
	var payload []byte
	var storedAt, expiresAt int64

	err := s.db.QueryRowContext(ctx, `
		SELECT payload, stored_at, expires_at
		FROM processed_results
		WHERE message_id = ? AND expires_at > ?
	`, messageID, s.now().Unix()).Scan(&payload, &storedAt, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query stored result: %w", err)
	}

	var result core.ProcessedResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("failed to decode stored result: %w", err)
	}

	return &core.StoredResult{
		Result:    &result,
		StoredAt:  time.Unix(storedAt, 0),
		ExpiresAt: time.Unix(expiresAt, 0),
	}, nil
}

func (s *sqlStore) Set(ctx context.Context, entry *core.StoredResult) error {
	payload, err := json.Marshal(entry.Result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, s.upsert,
		entry.Result.ID,
		entry.Result.Classification,
		payload,
		entry.StoredAt.Unix(),
		entry.ExpiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	return nil
}

func (s *sqlStore) Delete(ctx context.Context, messageID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM processed_results WHERE message_id = ?`, messageID); err != nil {
		return fmt.Errorf("failed to delete stored result: %w", err)
	}
	return nil
}

func (s *sqlStore) Cleanup(ctx context.Context) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM processed_results WHERE expires_at <= ?`, s.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to clean up expired results: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		s.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		s.logger.Debug("Cleaned up expired results", zap.Int64("expired_count", rowsAffected))
	}
	return nil
}

// Stop stops the background cleanup task and closes the database connection
func (s *sqlStore) Stop() {
	s.janitor.stop()
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close result database", zap.Error(err))
	}
}

func execAll(db *sql.DB, statements ...string) error {
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
