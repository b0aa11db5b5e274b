package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ammiranda/forest_service/migrations"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryDSN opens a private in-memory SQLite database
const MemoryDSN = ":memory:"

// SQLiteRepository implements Repository using SQLite
type SQLiteRepository struct {
	*sqlStore
	dbPath string
}

// DefaultSQLitePath returns the database location used when none is configured
func DefaultSQLitePath() string {
	// Default to data directory in user's home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	// Create data directory if it doesn't exist
	dataDir := filepath.Join(homeDir, ".forest")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		// Fallback to current directory if home directory is not accessible
		dataDir = "."
	}
	return filepath.Join(dataDir, "forest.db")
}

// NewSQLiteRepository creates a new SQLite repository instance.
// An empty path selects DefaultSQLitePath.
func NewSQLiteRepository(path string) *SQLiteRepository {
	if path == "" {
		path = DefaultSQLitePath()
	}
	return &SQLiteRepository{dbPath: path}
}

// Initialize opens the SQLite database and applies migrations
func (r *SQLiteRepository) Initialize(ctx context.Context) error {
	dsn := "file:" + r.dbPath + "?_foreign_keys=1&_busy_timeout=5000"
	if r.dbPath == MemoryDSN {
		dsn = "file::memory:?_foreign_keys=1"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return fmt.Errorf("error opening sqlite database: %w", err)
	}

	// A single connection keeps :memory: databases alive and serializes writers
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("error pinging database: %w", err)
	}

	if err := migrations.Up(db, migrations.SQLite); err != nil {
		db.Close()
		return fmt.Errorf("error running migrations: %w", err)
	}

	r.sqlStore = newSQLStore(db, sqliteDialect)
	return nil
}

// Cleanup closes the database connection
func (r *SQLiteRepository) Cleanup(ctx context.Context) error {
	if r.sqlStore != nil && r.db != nil {
		return r.db.Close()
	}
	return nil
}
