package tree

import (
	"context"
	"testing"

	"github.com/ammiranda/forest_service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAncestorsChain(t *testing.T) {
	e, _ := setupEngine(t)
	seedAnimals(t, e)
	ctx := context.Background()

	ancestors, err := e.GetAncestors(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, nodeIDs(ancestors))

	ids, err := e.GetAncestorIDs(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, ids)

	rootAncestors, err := e.GetAncestors(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, rootAncestors)
}

func TestTraversalOfMissingNode(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()

	ancestors, err := e.GetAncestors(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, ancestors)

	descendants, err := e.GetAllDescendants(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, descendants)

	path, err := e.GetPathToNode(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, path)

	_, err = e.GetPath(ctx, 42)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestGetPathToNode(t *testing.T) {
	e, _ := setupEngine(t)
	seedAnimals(t, e)
	ctx := context.Background()

	path, err := e.GetPathToNode(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []models.PathEntry{
		{ID: 1, Label: "root"},
		{ID: 2, Label: "bear"},
		{ID: 3, Label: "cat"},
	}, path)

	resp, err := e.GetPath(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.NodeID)
	assert.Equal(t, 3, resp.Depth)
	assert.Equal(t, path, resp.Path)
}

func TestDepthMatchesPathLength(t *testing.T) {
	e, _ := setupEngine(t)
	seedAnimals(t, e)
	ctx := context.Background()

	for id := int64(1); id <= 4; id++ {
		depth, err := e.GetNodeDepth(ctx, id)
		require.NoError(t, err)
		path, err := e.GetPathToNode(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, len(path)-1, depth, "node %d", id)
	}
}

func TestAncestorPredicates(t *testing.T) {
	e, _ := setupEngine(t)
	seedAnimals(t, e)
	ctx := context.Background()

	for id := int64(1); id <= 4; id++ {
		self, err := e.IsAncestor(ctx, id, id)
		require.NoError(t, err)
		assert.True(t, self)

		strict, err := e.IsStrictAncestor(ctx, id, id)
		require.NoError(t, err)
		assert.False(t, strict)
	}

	ok, err := e.IsStrictAncestor(ctx, 1, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.IsStrictAncestor(ctx, 3, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = e.IsAncestor(ctx, 4, 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDescendantsAndSubtreeSize(t *testing.T) {
	e, _ := setupEngine(t)
	seedAnimals(t, e)
	ctx := context.Background()

	descendants, err := e.GetAllDescendants(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 4}, nodeIDs(descendants))

	size, err := e.GetSubtreeSize(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, size)

	leafSize, err := e.GetSubtreeSize(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, leafSize)
}

func TestSubtreeSizeMonotonicAlongAncestry(t *testing.T) {
	e, _ := setupEngine(t)
	seedAnimals(t, e)
	ctx := context.Background()

	for b := int64(1); b <= 4; b++ {
		ancestors, err := e.GetAncestorIDs(ctx, b)
		require.NoError(t, err)
		sizeB, err := e.GetSubtreeSize(ctx, b)
		require.NoError(t, err)
		for _, a := range ancestors {
			sizeA, err := e.GetSubtreeSize(ctx, a)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, sizeA, sizeB+1)
		}
	}
}

func TestSingleRoot(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()
	root, err := e.CreateNode(ctx, "alone", nil)
	require.NoError(t, err)

	depth, err := e.GetNodeDepth(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, depth)

	size, err := e.GetSubtreeSize(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, size)
}

func TestGetNodesAtDepth(t *testing.T) {
	e, _ := setupEngine(t)
	seedAnimals(t, e)
	ctx := context.Background()

	roots, err := e.GetNodesAtDepth(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, nodeIDs(roots))

	level1, err := e.GetNodesAtDepth(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 4}, nodeIDs(level1))

	level2, err := e.GetNodesAtDepth(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, nodeIDs(level2))

	none, err := e.GetNodesAtDepth(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = e.GetNodesAtDepth(ctx, -1)
	assert.ErrorIs(t, err, ErrInvalidDepth)
}

func TestTraversalTerminatesOnCycle(t *testing.T) {
	e, repo := setupEngine(t)
	seedAnimals(t, e)
	ctx := context.Background()

	// Out-of-band write: root becomes a child of cat, closing 1 -> 2 -> 3 -> 1
	require.NoError(t, repo.UpdateParent(ctx, 1, int64Ptr(3)))

	ids, err := e.GetAncestorIDs(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, ids)

	descendants, err := e.GetAllDescendants(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{2, 3, 4}, nodeIDs(descendants))

	path, err := e.GetPathToNode(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), path[len(path)-1].ID)
}

func TestAncestorWalkIsCapped(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()

	var parent *int64
	var last int64
	for i := 0; i < MaxDepth+5; i++ {
		node, err := e.CreateNode(ctx, "level", parent)
		require.NoError(t, err)
		last = node.ID
		parent = int64Ptr(node.ID)
	}

	ids, err := e.GetAncestorIDs(ctx, last)
	require.NoError(t, err)
	assert.Len(t, ids, MaxDepth)
}
