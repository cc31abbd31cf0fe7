package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/staffing-mail-agent/internal/core"
)

// MemoryStore is an in-memory implementation of the ResultRepository interface
type MemoryStore struct {
	entries map[string]*core.StoredResult
	mu      sync.RWMutex
	logger  *zap.Logger
	now     func() time.Time
	janitor *janitor
}

// NewMemoryStore creates a new in-memory result store
func NewMemoryStore(logger *zap.Logger, cleanupFreq time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*core.StoredResult),
		logger:  logger,
		now:     time.Now,
	}
	s.janitor = startJanitor(s, cleanupFreq, logger)
	return s
}

// Get retrieves the stored result for a message
func (s *MemoryStore) Get(_ context.Context, messageID string) (*core.StoredResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[messageID]
	if !ok || !s.now().Before(entry.ExpiresAt) {
		return nil, ErrNotFound
	}
	return entry, nil
}

// Set stores a result, replacing any previous one for the same message
func (s *MemoryStore) Set(_ context.Context, entry *core.StoredResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.Result.ID] = entry
	return nil
}

// Delete removes a stored result
func (s *MemoryStore) Delete(_ context.Context, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, messageID)
	return nil
}

// Cleanup removes expired results
func (s *MemoryStore) Cleanup(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	expired := 0
	for id, entry := range s.entries {
		if !now.Before(entry.ExpiresAt) {
			delete(s.entries, id)
			expired++
		}
	}

	s.logger.Debug("Cleaned up expired results", zap.Int("expired_count", expired))
	return nil
}

// Stop stops the background cleanup task
func (s *MemoryStore) Stop() {
	s.janitor.stop()
}
