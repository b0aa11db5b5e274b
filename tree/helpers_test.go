package tree

import (
	"context"
	"testing"

	"github.com/ammiranda/forest_service/repository"

	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

// setupEngine returns an engine over an empty mock repository
func setupEngine(t *testing.T) (*Engine, *repository.MockRepository) {
	t.Helper()
	repo := repository.NewMockRepository()
	require.NoError(t, repo.Initialize(context.Background()))
	t.Cleanup(func() {
		_ = repo.Cleanup(context.Background())
	})
	return NewEngine(repo, nil), repo
}

// seedAnimals creates root(1) -> bear(2) -> cat(3) and root(1) -> frog(4)
func seedAnimals(t *testing.T, e *Engine) {
	t.Helper()
	ctx := context.Background()
	for _, in := range []NodeInput{
		{Label: "root"},
		{Label: "bear", ParentID: int64Ptr(1)},
		{Label: "cat", ParentID: int64Ptr(2)},
		{Label: "frog", ParentID: int64Ptr(1)},
	} {
		_, err := e.CreateNode(ctx, in.Label, in.ParentID)
		require.NoError(t, err)
	}
}

func rawNode(id int64, label string, parentID *int64) *repository.Node {
	return &repository.Node{ID: id, Label: label, ParentID: parentID}
}

func nodeIDs(nodes []*repository.Node) []int64 {
	ids := make([]int64, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
