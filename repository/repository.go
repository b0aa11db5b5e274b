package repository

import (
	"context"
	"errors"
	"time"
)

// Node represents a row of the nodes table
type Node struct {
	ID        int64     // Unique identifier assigned by the store
	Label     string    // Display name of the node
	ParentID  *int64    // Optional reference to the parent node's ID; nil for roots
	CreatedAt time.Time // Creation timestamp, informational only
}

// Store defines the data access operations on tree nodes.
// A Store obtained inside RunInTx routes every call through the
// surrounding transaction.
type Store interface {
	// CreateNode inserts a new node and returns its generated ID.
	// Returns ErrParentNotFound if parentID is non-nil and does not exist.
	CreateNode(ctx context.Context, label string, parentID *int64) (int64, error)

	// GetNode retrieves a node by its ID.
	// Returns ErrNodeNotFound if no node exists with the given ID.
	GetNode(ctx context.Context, id int64) (*Node, error)

	// GetAllNodes retrieves every node ordered by parent_id (roots first), then id.
	GetAllNodes(ctx context.Context) ([]*Node, error)

	// GetChildren retrieves the direct children of parentID ordered by id.
	// A nil parentID returns the root nodes.
	GetChildren(ctx context.Context, parentID *int64) ([]*Node, error)

	// NodeExists reports whether a node with the given ID exists.
	NodeExists(ctx context.Context, id int64) (bool, error)

	// UpdateLabel changes the label of a node.
	// Returns ErrNodeNotFound if no node exists with the given ID.
	UpdateLabel(ctx context.Context, id int64, label string) error

	// UpdateParent changes the parent pointer of a node.
	// Returns ErrNodeNotFound if no node exists with the given ID.
	UpdateParent(ctx context.Context, id int64, parentID *int64) error

	// DeleteNodes deletes every node in ids and returns how many rows were removed.
	DeleteNodes(ctx context.Context, ids []int64) (int64, error)

	// RunInTx executes fn inside a transaction. The transaction commits when fn
	// returns nil and rolls back otherwise. Calling RunInTx on a Store that is
	// already transaction-scoped joins the outer transaction.
	RunInTx(ctx context.Context, fn func(Store) error) error
}

// Repository is a Store with a managed lifecycle.
type Repository interface {
	Store

	// Initialize establishes connections and applies schema migrations.
	Initialize(ctx context.Context) error

	// Cleanup releases any resources held by the repository.
	Cleanup(ctx context.Context) error
}

// Common errors
var (
	// ErrNodeNotFound is returned when a requested node does not exist
	ErrNodeNotFound = errors.New("node not found")
	// ErrParentNotFound is returned when an insert references a missing parent
	ErrParentNotFound = errors.New("parent node not found")
	// ErrInvalidInput is returned when the input parameters are invalid
	ErrInvalidInput = errors.New("invalid input")
)
