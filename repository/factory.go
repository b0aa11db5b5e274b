package repository

import (
	"context"
	"fmt"

	"github.com/ammiranda/forest_service/config"
	"github.com/ammiranda/forest_service/migrations"
)

// Migrator is implemented by repositories with a versioned schema
type Migrator interface {
	// SchemaVersion reports the applied migration version
	SchemaVersion() (version uint, dirty bool, err error)
	// RollbackSchema reverts the last applied migration
	RollbackSchema() error
}

// New returns an uninitialized repository for the configured store driver
func New(cfg *config.AppConfig) (Repository, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite, "":
		return NewSQLiteRepository(cfg.SQLitePath), nil
	case config.DriverPostgres:
		if cfg.Database == nil {
			return nil, fmt.Errorf("postgres store selected without database config")
		}
		return NewPostgresRepository(cfg.Database), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

// Open builds the configured repository and initializes it
func Open(ctx context.Context, cfg *config.AppConfig) (Repository, error) {
	repo, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if err := repo.Initialize(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

// SchemaVersion reports the applied migration version
func (s *sqlStore) SchemaVersion() (uint, bool, error) {
	return migrations.Version(s.db, migrations.Dialect(s.d.name))
}

// RollbackSchema reverts the last applied migration
func (s *sqlStore) RollbackSchema() error {
	return migrations.Down(s.db, migrations.Dialect(s.d.name))
}
