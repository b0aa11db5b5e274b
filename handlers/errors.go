package handlers

import (
	"errors"
	"net/http"

	"github.com/ammiranda/forest_service/models"
	"github.com/ammiranda/forest_service/repository"
	"github.com/ammiranda/forest_service/tree"
)

// ErrInvalidID is returned for a path id that is not a positive integer
var ErrInvalidID = errors.New("node id must be a positive integer")

// ErrorStatus maps an engine or store error to its HTTP status code
func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, tree.ErrInvalidLabel),
		errors.Is(err, tree.ErrInvalidParent),
		errors.Is(err, tree.ErrInvalidDepth),
		errors.Is(err, tree.ErrSelfMove),
		errors.Is(err, tree.ErrDescendantMove),
		errors.Is(err, repository.ErrInvalidInput),
		errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, tree.ErrNodeNotFound),
		errors.Is(err, tree.ErrParentNotFound),
		errors.Is(err, tree.ErrSourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, tree.ErrNoOpMove):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorMessage returns the client-facing message for err. Internal failures
// are not described.
func ErrorMessage(err error) string {
	if ErrorStatus(err) == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}

// NodeResponse converts a stored row to its API representation
func NodeResponse(n *repository.Node) models.NodeResponse {
	return models.NodeResponse{
		ID:        n.ID,
		Label:     n.Label,
		ParentID:  n.ParentID,
		CreatedAt: n.CreatedAt,
	}
}

// NodeResponses converts a list of stored rows
func NodeResponses(nodes []*repository.Node) []models.NodeResponse {
	out := make([]models.NodeResponse, len(nodes))
	for i, n := range nodes {
		out[i] = NodeResponse(n)
	}
	return out
}
