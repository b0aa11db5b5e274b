package tree

import (
	"sort"

	"github.com/ammiranda/forest_service/models"
	"github.com/ammiranda/forest_service/repository"
)

// BuildHierarchy builds nested trees from a flat list of nodes.
//
// Nodes whose parent equals rootParentID become top-level entries in input
// order. Nodes whose parent is another input node are attached to it. Nodes
// matching neither are unreachable from the requested root and are dropped.
// Every children slice is sorted by ascending id. BuildHierarchy never fails
// and always returns a non-nil slice.
func BuildHierarchy(nodes []*repository.Node, rootParentID *int64) []*models.Node {
	roots := make([]*models.Node, 0)
	if len(nodes) == 0 {
		return roots
	}

	nodeMap := linkNodes(nodes)
	for _, node := range nodes {
		if sameParent(node.ParentID, rootParentID) {
			roots = append(roots, nodeMap[node.ID])
		}
	}
	return roots
}

// BuildSubtree builds the tree rooted at rootID from nodes, which should hold
// the root and its descendants. It returns nil when rootID is not in nodes.
func BuildSubtree(nodes []*repository.Node, rootID int64) *models.Node {
	if len(nodes) == 0 {
		return nil
	}
	return linkNodes(nodes)[rootID]
}

// linkNodes creates a tree node per input node, attaches each to its parent
// when the parent is present and sorts all children slices.
func linkNodes(nodes []*repository.Node) map[int64]*models.Node {
	nodeMap := make(map[int64]*models.Node, len(nodes))
	for _, node := range nodes {
		nodeMap[node.ID] = models.NewNode(node.ID, node.Label)
	}

	for _, node := range nodes {
		if node.ParentID == nil || *node.ParentID == node.ID {
			continue
		}
		if parent, ok := nodeMap[*node.ParentID]; ok {
			parent.AddChild(nodeMap[node.ID])
		}
	}

	// Flat pass over the map so cyclic input cannot loop.
	for _, treeNode := range nodeMap {
		children := treeNode.Children
		sort.Slice(children, func(i, j int) bool {
			return children[i].ID < children[j].ID
		})
	}
	return nodeMap
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
