package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ammiranda/forest_service/config"
	"github.com/ammiranda/forest_service/migrations"

	_ "github.com/lib/pq"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	*sqlStore
	config *config.DatabaseConfig
}

// NewPostgresRepository returns an uninitialized repository for cfg
func NewPostgresRepository(cfg *config.DatabaseConfig) *PostgresRepository {
	return &PostgresRepository{config: cfg}
}

// Initialize sets up the PostgreSQL database
func (r *PostgresRepository) Initialize(ctx context.Context) error {
	// Open database connection
	db, err := sql.Open("postgres", r.config.ConnectionString())
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("error pinging database: %w", err)
	}

	// Run migrations
	if err := migrations.Up(db, migrations.Postgres); err != nil {
		db.Close()
		return fmt.Errorf("error running migrations: %w", err)
	}

	r.sqlStore = newSQLStore(db, postgresDialect)
	return nil
}

// Cleanup closes the database connection
func (r *PostgresRepository) Cleanup(ctx context.Context) error {
	if r.sqlStore != nil && r.db != nil {
		return r.db.Close()
	}
	return nil
}
