package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// querier is the subset of *sql.DB and *sql.Tx used by sqlStore
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// dialect captures the differences between the supported SQL engines
type dialect struct {
	name      string
	numbered  bool // $1, $2 placeholders instead of ?
	isolation sql.IsolationLevel
}

var (
	sqliteDialect   = dialect{name: "sqlite3", isolation: sql.LevelDefault}
	postgresDialect = dialect{name: "postgres", numbered: true, isolation: sql.LevelReadCommitted}
)

// rebind rewrites ? placeholders for dialects that use numbered parameters
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const nodeColumns = "id, label, parent_id, created_at"

// sqlStore implements Store on top of database/sql. It is shared by the
// SQLite and PostgreSQL repositories.
type sqlStore struct {
	db *sql.DB
	q  querier
	d  dialect
	tx bool
}

func newSQLStore(db *sql.DB, d dialect) *sqlStore {
	return &sqlStore{db: db, q: db, d: d}
}

// CreateNode creates a new node in the database
func (s *sqlStore) CreateNode(ctx context.Context, label string, parentID *int64) (int64, error) {
	if label == "" {
		return 0, ErrInvalidInput
	}

	// Check if parent exists
	if parentID != nil {
		exists, err := s.NodeExists(ctx, *parentID)
		if err != nil {
			return 0, err
		}
		if !exists {
			return 0, ErrParentNotFound
		}
	}

	var id int64
	err := s.q.QueryRowContext(ctx,
		s.d.rebind("INSERT INTO nodes (label, parent_id) VALUES (?, ?) RETURNING id"),
		label, parentID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error creating node: %w", err)
	}
	return id, nil
}

// GetNode retrieves a node by ID
func (s *sqlStore) GetNode(ctx context.Context, id int64) (*Node, error) {
	row := s.q.QueryRowContext(ctx,
		s.d.rebind("SELECT "+nodeColumns+" FROM nodes WHERE id = ?"),
		id,
	)
	node, err := scanNode(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNodeNotFound
		}
		return nil, fmt.Errorf("error getting node: %w", err)
	}
	return node, nil
}

// GetAllNodes retrieves all nodes from the database
func (s *sqlStore) GetAllNodes(ctx context.Context) ([]*Node, error) {
	return s.queryNodes(ctx, "SELECT "+nodeColumns+" FROM nodes ORDER BY parent_id NULLS FIRST, id")
}

// GetChildren retrieves the direct children of a node, or the roots for a nil parent
func (s *sqlStore) GetChildren(ctx context.Context, parentID *int64) ([]*Node, error) {
	if parentID == nil {
		return s.queryNodes(ctx, "SELECT "+nodeColumns+" FROM nodes WHERE parent_id IS NULL ORDER BY id")
	}
	return s.queryNodes(ctx, "SELECT "+nodeColumns+" FROM nodes WHERE parent_id = ? ORDER BY id", *parentID)
}

// NodeExists checks if a node exists
func (s *sqlStore) NodeExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx,
		s.d.rebind("SELECT EXISTS(SELECT 1 FROM nodes WHERE id = ?)"),
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking node existence: %w", err)
	}
	return exists, nil
}

// UpdateLabel updates a node's label
func (s *sqlStore) UpdateLabel(ctx context.Context, id int64, label string) error {
	if label == "" {
		return ErrInvalidInput
	}
	return s.execUpdate(ctx, "UPDATE nodes SET label = ? WHERE id = ?", label, id)
}

// UpdateParent updates a node's parent pointer
func (s *sqlStore) UpdateParent(ctx context.Context, id int64, parentID *int64) error {
	return s.execUpdate(ctx, "UPDATE nodes SET parent_id = ? WHERE id = ?", parentID, id)
}

// DeleteNodes deletes the given set of nodes. Rows removed by ON DELETE
// CASCADE are counted when they appear in ids.
func (s *sqlStore) DeleteNodes(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	// SQLite does not report cascaded rows as changes, so count up front
	var count int64
	err := s.q.QueryRowContext(ctx,
		s.d.rebind("SELECT COUNT(*) FROM nodes WHERE id IN ("+placeholders+")"),
		args...,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting nodes: %w", err)
	}

	if _, err := s.q.ExecContext(ctx,
		s.d.rebind("DELETE FROM nodes WHERE id IN ("+placeholders+")"),
		args...,
	); err != nil {
		return 0, fmt.Errorf("error deleting nodes: %w", err)
	}
	return count, nil
}

// RunInTx executes fn inside a database transaction
func (s *sqlStore) RunInTx(ctx context.Context, fn func(Store) error) error {
	if s.tx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: s.d.isolation})
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&sqlStore{db: s.db, q: tx, d: s.d, tx: true}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

func (s *sqlStore) execUpdate(ctx context.Context, query string, args ...any) error {
	result, err := s.q.ExecContext(ctx, s.d.rebind(query), args...)
	if err != nil {
		return fmt.Errorf("error updating node: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNodeNotFound
	}
	return nil
}

func (s *sqlStore) queryNodes(ctx context.Context, query string, args ...any) ([]*Node, error) {
	rows, err := s.q.QueryContext(ctx, s.d.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("error querying nodes: %w", err)
	}
	defer rows.Close()

	nodes := make([]*Node, 0)
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning node: %w", err)
		}
		nodes = append(nodes, node)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nodes: %w", err)
	}
	return nodes, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNode(row scanner) (*Node, error) {
	var node Node
	var parentID sql.NullInt64
	if err := row.Scan(&node.ID, &node.Label, &parentID, &node.CreatedAt); err != nil {
		return nil, err
	}
	if parentID.Valid {
		node.ParentID = &parentID.Int64
	}
	return &node, nil
}
