package tree

import (
	"context"
	"fmt"

	"github.com/ammiranda/forest_service/models"
	"github.com/ammiranda/forest_service/repository"

	"go.uber.org/zap"
)

// ValidateTreeStructure audits nodes for orphans and cycles. A nil nodes
// slice audits the full store. Problems are reported in the returned report;
// only a failure to load the store returns an error.
func (e *Engine) ValidateTreeStructure(ctx context.Context, nodes []*repository.Node) (*models.ValidationReport, error) {
	if nodes == nil {
		var err error
		if nodes, err = e.store.GetAllNodes(ctx); err != nil {
			return nil, err
		}
	}

	report := inspect(ctx, nodes)
	e.log.Info("tree structure validated",
		zap.Bool("valid", report.IsValid),
		zap.Int("issues", len(report.Issues)),
		zap.Int("nodes", report.TotalNodes),
	)
	return report, nil
}

// inspect runs the orphan and cycle checks over an in-memory node set.
// Ancestor walks resolve parents within the set itself.
func inspect(ctx context.Context, nodes []*repository.Node) *models.ValidationReport {
	byID := indexNodes(nodes)
	report := &models.ValidationReport{
		Issues:     make([]models.Issue, 0),
		TotalNodes: len(nodes),
	}

	for _, node := range nodes {
		if node.ParentID == nil {
			report.RootNodes++
			continue
		}

		if _, ok := byID[*node.ParentID]; !ok {
			report.Issues = append(report.Issues, models.Issue{
				Type:     models.IssueOrphanedNode,
				NodeID:   node.ID,
				ParentID: node.ParentID,
				Message:  fmt.Sprintf("node %d references missing parent %d", node.ID, *node.ParentID),
			})
			continue
		}

		walk, err := walkAncestors(ctx, node, byID.lookup)
		switch {
		case err != nil:
			report.Issues = append(report.Issues, models.Issue{
				Type:    models.IssueTraversalError,
				NodeID:  node.ID,
				Message: fmt.Sprintf("failed to walk ancestors of node %d: %v", node.ID, err),
			})
		case walk.containsID(node.ID):
			report.Issues = append(report.Issues, models.Issue{
				Type:     models.IssueCircularReference,
				NodeID:   node.ID,
				ParentID: node.ParentID,
				Message:  fmt.Sprintf("node %d is its own ancestor", node.ID),
			})
		case walk.truncated:
			report.Issues = append(report.Issues, models.Issue{
				Type:    models.IssueTraversalError,
				NodeID:  node.ID,
				Message: fmt.Sprintf("ancestor chain of node %d exceeds %d levels", node.ID, MaxDepth),
			})
		}
	}

	report.IsValid = len(report.Issues) == 0
	return report
}
