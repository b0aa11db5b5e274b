package tree

import (
	"context"
	"errors"
	"sort"

	"github.com/ammiranda/forest_service/models"
	"github.com/ammiranda/forest_service/repository"
)

// lookupFunc resolves a node by id. It returns nil, nil for a missing node.
type lookupFunc func(ctx context.Context, id int64) (*repository.Node, error)

// storeLookup resolves nodes with one store round-trip per call
func storeLookup(s repository.Store) lookupFunc {
	return func(ctx context.Context, id int64) (*repository.Node, error) {
		node, err := s.GetNode(ctx, id)
		if errors.Is(err, repository.ErrNodeNotFound) {
			return nil, nil
		}
		return node, err
	}
}

// nodeIndex resolves nodes from an in-memory set
type nodeIndex map[int64]*repository.Node

func indexNodes(nodes []*repository.Node) nodeIndex {
	idx := make(nodeIndex, len(nodes))
	for _, n := range nodes {
		idx[n.ID] = n
	}
	return idx
}

func (idx nodeIndex) lookup(_ context.Context, id int64) (*repository.Node, error) {
	return idx[id], nil
}

// ancestry is the result of an upward walk
type ancestry struct {
	// chain holds ancestors nearest first. On cyclic data the start node
	// itself closes the chain.
	chain []*repository.Node
	// truncated is set when the walk stopped at MaxDepth with parents left
	truncated bool
}

// containsID reports whether id appears in the chain
func (a ancestry) containsID(id int64) bool {
	for _, n := range a.chain {
		if n.ID == id {
			return true
		}
	}
	return false
}

func (a ancestry) ids() []int64 {
	ids := make([]int64, len(a.chain))
	for i, n := range a.chain {
		ids[i] = n.ID
	}
	return ids
}

// walkAncestors follows parent pointers from start toward its root. The walk
// ends at a root, at a missing parent, when it revisits a node or after
// MaxDepth steps.
func walkAncestors(ctx context.Context, start *repository.Node, lookup lookupFunc) (ancestry, error) {
	var result ancestry
	seen := map[int64]bool{start.ID: true}
	parentID := start.ParentID

	for parentID != nil {
		if len(result.chain) >= MaxDepth {
			result.truncated = true
			break
		}
		if seen[*parentID] {
			if *parentID == start.ID {
				result.chain = append(result.chain, start)
			}
			break
		}

		parent, err := lookup(ctx, *parentID)
		if err != nil {
			return result, err
		}
		if parent == nil {
			break
		}
		seen[parent.ID] = true
		result.chain = append(result.chain, parent)
		parentID = parent.ParentID
	}
	return result, nil
}

// ancestorsOf walks up from nodeID using the store. A missing node has no ancestors.
func ancestorsOf(ctx context.Context, s repository.Store, nodeID int64) (ancestry, *repository.Node, error) {
	lookup := storeLookup(s)
	node, err := lookup(ctx, nodeID)
	if err != nil || node == nil {
		return ancestry{}, nil, err
	}
	walk, err := walkAncestors(ctx, node, lookup)
	return walk, node, err
}

// collectDescendants expands children depth-first with an explicit stack and
// returns them in pre-order. Nodes are visited once and expansion stops
// MaxDepth levels below nodeID.
func collectDescendants(ctx context.Context, s repository.Store, nodeID int64) ([]*repository.Node, error) {
	type frame struct {
		node  *repository.Node
		depth int
	}

	result := make([]*repository.Node, 0)
	visited := map[int64]bool{nodeID: true}

	children, err := s.GetChildren(ctx, &nodeID)
	if err != nil {
		return nil, err
	}
	stack := make([]frame, 0, len(children))
	for i := len(children) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: children[i], depth: 1})
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[top.node.ID] {
			continue
		}
		visited[top.node.ID] = true
		result = append(result, top.node)

		if top.depth >= MaxDepth {
			continue
		}
		id := top.node.ID
		children, err := s.GetChildren(ctx, &id)
		if err != nil {
			return nil, err
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: children[i], depth: top.depth + 1})
		}
	}
	return result, nil
}

// GetAncestors returns the ancestors of nodeID, nearest parent first.
// A root or a missing node has none.
func (e *Engine) GetAncestors(ctx context.Context, nodeID int64) ([]*repository.Node, error) {
	walk, _, err := ancestorsOf(ctx, e.store, nodeID)
	if err != nil {
		return nil, err
	}
	if walk.chain == nil {
		return []*repository.Node{}, nil
	}
	return walk.chain, nil
}

// GetAncestorIDs returns the ids of the ancestors of nodeID, nearest first.
// The walk is capped at MaxDepth and stops early rather than failing.
func (e *Engine) GetAncestorIDs(ctx context.Context, nodeID int64) ([]int64, error) {
	walk, _, err := ancestorsOf(ctx, e.store, nodeID)
	if err != nil {
		return nil, err
	}
	return walk.ids(), nil
}

// IsSameNode reports whether a and b identify the same node
func IsSameNode(a, b int64) bool {
	return a == b
}

// IsStrictAncestor reports whether a is a proper ancestor of b
func (e *Engine) IsStrictAncestor(ctx context.Context, a, b int64) (bool, error) {
	if IsSameNode(a, b) {
		return false, nil
	}
	walk, _, err := ancestorsOf(ctx, e.store, b)
	if err != nil {
		return false, err
	}
	return walk.containsID(a), nil
}

// IsAncestor reports whether a is b or one of b's ancestors
func (e *Engine) IsAncestor(ctx context.Context, a, b int64) (bool, error) {
	if IsSameNode(a, b) {
		return true, nil
	}
	return e.IsStrictAncestor(ctx, a, b)
}

// GetNodeDepth returns the number of ancestors of nodeID; roots have depth 0
func (e *Engine) GetNodeDepth(ctx context.Context, nodeID int64) (int, error) {
	ancestors, err := e.GetAncestors(ctx, nodeID)
	if err != nil {
		return 0, err
	}
	return len(ancestors), nil
}

// GetAllDescendants returns every node below nodeID in pre-order
func (e *Engine) GetAllDescendants(ctx context.Context, nodeID int64) ([]*repository.Node, error) {
	return collectDescendants(ctx, e.store, nodeID)
}

// GetSubtreeSize returns the number of descendants of nodeID, excluding itself
func (e *Engine) GetSubtreeSize(ctx context.Context, nodeID int64) (int, error) {
	descendants, err := e.GetAllDescendants(ctx, nodeID)
	if err != nil {
		return 0, err
	}
	return len(descendants), nil
}

// GetPathToNode returns the path from the tree root down to nodeID, the node
// included. The result is empty when nodeID does not exist.
func (e *Engine) GetPathToNode(ctx context.Context, nodeID int64) ([]models.PathEntry, error) {
	walk, node, err := ancestorsOf(ctx, e.store, nodeID)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return []models.PathEntry{}, nil
	}

	path := make([]models.PathEntry, 0, len(walk.chain)+1)
	for i := len(walk.chain) - 1; i >= 0; i-- {
		if walk.chain[i].ID == node.ID {
			continue
		}
		path = append(path, models.PathEntry{ID: walk.chain[i].ID, Label: walk.chain[i].Label})
	}
	return append(path, models.PathEntry{ID: node.ID, Label: node.Label}), nil
}

// GetNodesAtDepth returns the nodes with exactly depth ancestors.
// Depths above zero scan and walk every node, so cost grows with n·depth.
func (e *Engine) GetNodesAtDepth(ctx context.Context, depth int) ([]*repository.Node, error) {
	if depth < 0 {
		return nil, ErrInvalidDepth
	}
	if depth == 0 {
		return e.store.GetChildren(ctx, nil)
	}

	nodes, err := e.store.GetAllNodes(ctx)
	if err != nil {
		return nil, err
	}
	byID := indexNodes(nodes)

	result := make([]*repository.Node, 0)
	for _, node := range nodes {
		walk, err := walkAncestors(ctx, node, byID.lookup)
		if err != nil {
			return nil, err
		}
		if len(walk.chain) == depth {
			result = append(result, node)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}
