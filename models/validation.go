package models

// Structural issue types reported by the validator
const (
	IssueOrphanedNode      = "orphaned_node"
	IssueCircularReference = "circular_reference"
	IssueTraversalError    = "traversal_error"
)

// Issue is a single structural problem found in the node set
type Issue struct {
	Type     string `json:"type"`
	NodeID   int64  `json:"nodeId"`
	ParentID *int64 `json:"parentId,omitempty"`
	Message  string `json:"message"`
}

// ValidationReport is the result of a structural audit
type ValidationReport struct {
	IsValid    bool    `json:"isValid"`
	Issues     []Issue `json:"issues"`
	TotalNodes int     `json:"totalNodes"`
	RootNodes  int     `json:"rootNodes"`
}
