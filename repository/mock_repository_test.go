package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepository()
	require.NoError(t, repo.Initialize(ctx))
	defer repo.Cleanup(ctx)

	// Test creating a node
	id, err := repo.CreateNode(ctx, "test", nil)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	// Test getting the node
	node, err := repo.GetNode(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "test", node.Label)
	assert.Nil(t, node.ParentID)

	// Test updating the label
	require.NoError(t, repo.UpdateLabel(ctx, id, "updated"))
	node, err = repo.GetNode(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "updated", node.Label)

	// Test deleting the node
	deleted, err := repo.DeleteNodes(ctx, []int64{id})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.GetNode(ctx, id)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestMockRepositoryParentChecks(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepository()

	missing := int64(5)
	_, err := repo.CreateNode(ctx, "child", &missing)
	assert.ErrorIs(t, err, ErrParentNotFound)

	_, err = repo.CreateNode(ctx, "", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.ErrorIs(t, repo.UpdateParent(ctx, 9, nil), ErrNodeNotFound)
	assert.ErrorIs(t, repo.UpdateLabel(ctx, 9, "x"), ErrNodeNotFound)
	assert.Equal(t, 0, repo.Len())
}

func TestMockRepositoryOrdering(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepository()

	a, _ := repo.CreateNode(ctx, "a", nil)
	b, _ := repo.CreateNode(ctx, "b", nil)
	c, _ := repo.CreateNode(ctx, "c", &b)
	d, _ := repo.CreateNode(ctx, "d", &a)

	nodes, err := repo.GetAllNodes(ctx)
	require.NoError(t, err)
	ids := make([]int64, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	assert.Equal(t, []int64{a, b, d, c}, ids)

	roots, err := repo.GetChildren(ctx, nil)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, a, roots[0].ID)

	children, err := repo.GetChildren(ctx, &b)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, c, children[0].ID)
}

func TestMockRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepository()
	root, _ := repo.CreateNode(ctx, "root", nil)
	child, _ := repo.CreateNode(ctx, "child", &root)

	node, err := repo.GetNode(ctx, child)
	require.NoError(t, err)
	node.Label = "mutated"
	*node.ParentID = 42

	again, err := repo.GetNode(ctx, child)
	require.NoError(t, err)
	assert.Equal(t, "child", again.Label)
	assert.Equal(t, root, *again.ParentID)
}

func TestMockRepositoryRunInTx(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepository()
	boom := errors.New("boom")

	err := repo.RunInTx(ctx, func(s Store) error {
		if _, err := s.CreateNode(ctx, "kept", nil); err != nil {
			return err
		}
		// Nested calls join the outer transaction
		return s.RunInTx(ctx, func(inner Store) error {
			_, err := inner.CreateNode(ctx, "also kept", nil)
			return err
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.Len())

	err = repo.RunInTx(ctx, func(s Store) error {
		if _, err := s.CreateNode(ctx, "discarded", nil); err != nil {
			return err
		}
		if err := s.UpdateLabel(ctx, 1, "renamed"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, repo.Len())

	node, err := repo.GetNode(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "kept", node.Label)
}

func TestMockRepositoryCleanup(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepository()
	_, _ = repo.CreateNode(ctx, "a", nil)
	require.NoError(t, repo.Cleanup(ctx))
	assert.Equal(t, 0, repo.Len())

	id, err := repo.CreateNode(ctx, "b", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}
