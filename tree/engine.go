// Package tree implements the adjacency-list forest engine: building nested
// trees from parent-pointer rows, ancestor and descendant traversal,
// structural validation and subtree relocation.
//
// The engine keeps no state between calls. Every operation re-reads what it
// needs from the Store, and multi-step writes run inside Store.RunInTx.
package tree

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ammiranda/forest_service/logger"
	"github.com/ammiranda/forest_service/models"
	"github.com/ammiranda/forest_service/repository"

	"go.uber.org/zap"
)

// MaxDepth bounds every ancestor and descendant walk
const MaxDepth = 1000

// MaxLabelLength is the longest label accepted, in characters
const MaxLabelLength = 255

// Engine errors
var (
	// Input errors, reported before any store access
	ErrInvalidLabel  = errors.New("label must be between 1 and 255 characters")
	ErrInvalidParent = errors.New("parent id must be a positive integer")
	ErrInvalidDepth  = errors.New("depth must not be negative")

	// Referential errors
	ErrNodeNotFound   = repository.ErrNodeNotFound
	ErrParentNotFound = repository.ErrParentNotFound

	// Relocation precondition violations
	ErrSourceNotFound = errors.New("source node not found")
	ErrSelfMove       = errors.New("cannot move a node to be its own child")
	ErrDescendantMove = errors.New("cannot move a node to be its own descendant")
	ErrNoOpMove       = errors.New("node is already a child of the specified parent")
)

// NodeInput describes a node to create
type NodeInput struct {
	Label    string
	ParentID *int64
}

// Engine answers tree questions over a node Store
type Engine struct {
	store repository.Store
	log   *zap.Logger
}

// NewEngine creates an engine backed by store. A nil logger disables logging.
func NewEngine(store repository.Store, log *zap.Logger) *Engine {
	return &Engine{
		store: store,
		log:   logger.OrNop(log),
	}
}

// CreateNode validates the input and inserts a new node
func (e *Engine) CreateNode(ctx context.Context, label string, parentID *int64) (*repository.Node, error) {
	if err := validateInput(label, parentID); err != nil {
		return nil, err
	}

	var created *repository.Node
	err := e.store.RunInTx(ctx, func(s repository.Store) error {
		var err error
		created, err = insertNode(ctx, s, label, parentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.log.Debug("node created", zap.Int64("id", created.ID), zap.Int64p("parentId", created.ParentID))
	return created, nil
}

// CreateNodes inserts a batch of nodes atomically. Every input is validated
// before the transaction starts; a failing insert rolls back the whole batch.
func (e *Engine) CreateNodes(ctx context.Context, inputs []NodeInput) ([]*repository.Node, error) {
	for i, in := range inputs {
		if err := validateInput(in.Label, in.ParentID); err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
	}

	created := make([]*repository.Node, 0, len(inputs))
	err := e.store.RunInTx(ctx, func(s repository.Store) error {
		for i, in := range inputs {
			node, err := insertNode(ctx, s, in.Label, in.ParentID)
			if err != nil {
				return fmt.Errorf("node %d: %w", i, err)
			}
			created = append(created, node)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Debug("node batch created", zap.Int("count", len(created)))
	return created, nil
}

// RelabelNode changes a node's label
func (e *Engine) RelabelNode(ctx context.Context, id int64, label string) (*repository.Node, error) {
	if err := validateLabel(label); err != nil {
		return nil, err
	}

	var updated *repository.Node
	err := e.store.RunInTx(ctx, func(s repository.Store) error {
		if err := s.UpdateLabel(ctx, id, label); err != nil {
			return err
		}
		var err error
		updated, err = s.GetNode(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteSubtree removes a node together with all of its descendants and
// returns the number of rows deleted.
func (e *Engine) DeleteSubtree(ctx context.Context, id int64) (int64, error) {
	var deleted int64
	err := e.store.RunInTx(ctx, func(s repository.Store) error {
		exists, err := s.NodeExists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNodeNotFound
		}

		descendants, err := collectDescendants(ctx, s, id)
		if err != nil {
			return err
		}
		ids := make([]int64, 0, len(descendants)+1)
		ids = append(ids, id)
		for _, d := range descendants {
			ids = append(ids, d.ID)
		}

		deleted, err = s.DeleteNodes(ctx, ids)
		return err
	})
	if err != nil {
		return 0, err
	}

	e.log.Info("subtree deleted", zap.Int64("id", id), zap.Int64("deleted", deleted))
	return deleted, nil
}

// GetNode returns the stored row for id
func (e *Engine) GetNode(ctx context.Context, id int64) (*repository.Node, error) {
	return e.store.GetNode(ctx, id)
}

// Ping checks that the store answers queries
func (e *Engine) Ping(ctx context.Context) error {
	_, err := e.store.GetChildren(ctx, nil)
	return err
}

// ListAllTrees returns every tree in the store
func (e *Engine) ListAllTrees(ctx context.Context) ([]*models.Node, error) {
	nodes, err := e.store.GetAllNodes(ctx)
	if err != nil {
		return nil, err
	}
	return BuildHierarchy(nodes, nil), nil
}

// GetTree returns the subtree rooted at rootID
func (e *Engine) GetTree(ctx context.Context, rootID int64) (*models.Node, error) {
	root, err := e.store.GetNode(ctx, rootID)
	if err != nil {
		return nil, err
	}

	descendants, err := collectDescendants(ctx, e.store, rootID)
	if err != nil {
		return nil, err
	}
	return BuildSubtree(append([]*repository.Node{root}, descendants...), rootID), nil
}

// GetPath returns the root-to-node path for nodeID
func (e *Engine) GetPath(ctx context.Context, nodeID int64) (*models.PathResponse, error) {
	path, err := e.GetPathToNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return nil, ErrNodeNotFound
	}
	return &models.PathResponse{
		NodeID: nodeID,
		Path:   path,
		Depth:  len(path),
	}, nil
}

// GetStats computes aggregate counts over the whole store
func (e *Engine) GetStats(ctx context.Context) (*models.StatsResponse, error) {
	nodes, err := e.store.GetAllNodes(ctx)
	if err != nil {
		return nil, err
	}

	byID := indexNodes(nodes)
	hasChildren := make(map[int64]bool, len(nodes))
	stats := &models.StatsResponse{TotalNodes: len(nodes)}
	for _, node := range nodes {
		if node.ParentID == nil {
			stats.TotalTrees++
		} else {
			hasChildren[*node.ParentID] = true
		}
	}

	for _, node := range nodes {
		if !hasChildren[node.ID] {
			stats.LeafNodes++
		}
		walk, err := walkAncestors(ctx, node, byID.lookup)
		if err != nil {
			return nil, err
		}
		if depth := len(walk.chain); depth > stats.MaxDepth {
			stats.MaxDepth = depth
		}
	}
	return stats, nil
}

// insertNode checks the parent inside the caller's transaction and inserts
func insertNode(ctx context.Context, s repository.Store, label string, parentID *int64) (*repository.Node, error) {
	if parentID != nil {
		exists, err := s.NodeExists(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrParentNotFound
		}
	}

	id, err := s.CreateNode(ctx, label, parentID)
	if err != nil {
		return nil, err
	}
	return s.GetNode(ctx, id)
}

func validateInput(label string, parentID *int64) error {
	if err := validateLabel(label); err != nil {
		return err
	}
	if parentID != nil && *parentID <= 0 {
		return ErrInvalidParent
	}
	return nil
}

func validateLabel(label string) error {
	if strings.TrimSpace(label) == "" || utf8.RuneCountInString(label) > MaxLabelLength {
		return ErrInvalidLabel
	}
	return nil
}
