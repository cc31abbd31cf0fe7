package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mikey/staffing-mail-agent/internal/adapters/store"
	"github.com/mikey/staffing-mail-agent/internal/config"
	"github.com/mikey/staffing-mail-agent/internal/core"
)

// StoreFactory creates result repositories based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateResultRepository creates a result repository based on the configuration,
// and returns nil when storage is disabled.
func (f *StoreFactory) CreateResultRepository() (core.ResultRepository, error) {
	if !f.IsStoreEnabled() {
		return nil, nil
	}

	storeType := f.cfg.GetString("store.type")
	cleanupFreq, err := f.cfg.GetDuration("store.cleanup_frequency")
	if err != nil {
		return nil, fmt.Errorf("invalid store cleanup frequency: %w", err)
	}
	logger := f.logger.Named("store")

	switch storeType {
	case "memory":
		return store.NewMemoryStore(logger, cleanupFreq), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("store.sqlite_path")
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		repo, err := store.NewSQLiteStore(sqlitePath, logger, cleanupFreq)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case "mysql":
		repo, err := store.NewMySQLStore(f.cfg.GetString("store.mysql_dsn"), logger, cleanupFreq)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeType)
	}
}

// GetServiceOptions returns the result storage options of the staffing service
func (f *StoreFactory) GetServiceOptions() (core.ServiceOptions, error) {
	ttl, err := f.cfg.GetDuration("store.ttl")
	if err != nil {
		return core.ServiceOptions{}, fmt.Errorf("invalid store ttl: %w", err)
	}
	return core.ServiceOptions{
		StoreEnabled: f.IsStoreEnabled(),
		ResultTTL:    ttl,
	}, nil
}

// IsStoreEnabled returns whether results are stored
func (f *StoreFactory) IsStoreEnabled() bool {
	return f.cfg.GetBool("store.enabled")
}
