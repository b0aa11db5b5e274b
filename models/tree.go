package models

import "time"

// Node represents a single node in a nested tree
type Node struct {
	ID       int64   `json:"id"`
	Label    string  `json:"label"`
	Children []*Node `json:"children"`
}

// NewNode creates a new tree node with no children
func NewNode(id int64, label string) *Node {
	return &Node{
		ID:       id,
		Label:    label,
		Children: make([]*Node, 0),
	}
}

// AddChild adds a child node to the current node
func (n *Node) AddChild(child *Node) {
	n.Children = append(n.Children, child)
}

// Count returns the number of nodes in the tree rooted at n, n included
func (n *Node) Count() int {
	count := 0
	stack := []*Node{n}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		stack = append(stack, top.Children...)
	}
	return count
}

// NodeResponse is the flat representation of a stored node
type NodeResponse struct {
	ID        int64     `json:"id"`
	Label     string    `json:"label"`
	ParentID  *int64    `json:"parentId"`
	CreatedAt time.Time `json:"createdAt"`
}

// PathEntry is one step of a root-to-node path
type PathEntry struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// PathResponse describes the path from a tree root to a node.
// Depth is the number of entries in Path.
type PathResponse struct {
	NodeID int64       `json:"nodeId"`
	Path   []PathEntry `json:"path"`
	Depth  int         `json:"depth"`
}

// DescendantsResponse lists every node below a node
type DescendantsResponse struct {
	NodeID      int64          `json:"nodeId"`
	Descendants []NodeResponse `json:"descendants"`
	SubtreeSize int            `json:"subtreeSize"`
}

// StatsResponse holds aggregate counts over the whole store
type StatsResponse struct {
	TotalNodes int `json:"totalNodes"`
	TotalTrees int `json:"totalTrees"`
	LeafNodes  int `json:"leafNodes"`
	MaxDepth   int `json:"maxDepth"`
}
