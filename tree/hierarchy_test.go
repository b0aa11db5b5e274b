package tree

import (
	"encoding/json"
	"testing"

	"github.com/ammiranda/forest_service/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHierarchyEmpty(t *testing.T) {
	assert.Empty(t, BuildHierarchy(nil, nil))
	assert.NotNil(t, BuildHierarchy(nil, nil))
	assert.Empty(t, BuildHierarchy([]*repository.Node{}, nil))
}

func TestBuildHierarchyAnimals(t *testing.T) {
	// Deliberately shuffled input
	nodes := []*repository.Node{
		rawNode(4, "frog", int64Ptr(1)),
		rawNode(3, "cat", int64Ptr(2)),
		rawNode(1, "root", nil),
		rawNode(2, "bear", int64Ptr(1)),
	}

	forest := BuildHierarchy(nodes, nil)
	body, err := json.Marshal(forest)
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"id":1,"label":"root","children":[{"id":2,"label":"bear","children":[{"id":3,"label":"cat","children":[]}]},{"id":4,"label":"frog","children":[]}]}]`,
		string(body))
}

func TestBuildHierarchyKeepsRootInputOrder(t *testing.T) {
	nodes := []*repository.Node{
		rawNode(7, "b", nil),
		rawNode(3, "a", nil),
	}
	forest := BuildHierarchy(nodes, nil)
	require.Len(t, forest, 2)
	assert.Equal(t, int64(7), forest[0].ID)
	assert.Equal(t, int64(3), forest[1].ID)
}

func TestBuildHierarchyDropsUnreachable(t *testing.T) {
	nodes := []*repository.Node{
		rawNode(1, "root", nil),
		rawNode(2, "orphan", int64Ptr(99)),
		rawNode(3, "orphan-child", int64Ptr(2)),
	}
	forest := BuildHierarchy(nodes, nil)
	require.Len(t, forest, 1)
	assert.Equal(t, 1, forest[0].Count())
}

func TestBuildHierarchyWithRootParent(t *testing.T) {
	nodes := []*repository.Node{
		rawNode(2, "bear", int64Ptr(1)),
		rawNode(3, "cat", int64Ptr(2)),
		rawNode(4, "frog", int64Ptr(1)),
	}
	forest := BuildHierarchy(nodes, int64Ptr(1))
	require.Len(t, forest, 2)
	assert.Equal(t, "bear", forest[0].Label)
	assert.Equal(t, "cat", forest[0].Children[0].Label)
	assert.Equal(t, "frog", forest[1].Label)
}

func TestBuildHierarchyIgnoresCycles(t *testing.T) {
	nodes := []*repository.Node{
		rawNode(1, "root", nil),
		rawNode(2, "a", int64Ptr(3)),
		rawNode(3, "b", int64Ptr(2)),
		rawNode(4, "self", int64Ptr(4)),
	}
	forest := BuildHierarchy(nodes, nil)
	require.Len(t, forest, 1)
	_, err := json.Marshal(forest)
	assert.NoError(t, err)
}

func TestBuildSubtree(t *testing.T) {
	nodes := []*repository.Node{
		rawNode(2, "bear", int64Ptr(1)),
		rawNode(3, "cat", int64Ptr(2)),
	}

	subtree := BuildSubtree(nodes, 2)
	require.NotNil(t, subtree)
	assert.Equal(t, int64(2), subtree.ID)
	require.Len(t, subtree.Children, 1)
	assert.Equal(t, int64(3), subtree.Children[0].ID)

	assert.Nil(t, BuildSubtree(nodes, 42))
	assert.Nil(t, BuildSubtree(nil, 1))
}

func TestBuildHierarchyCountMatchesRows(t *testing.T) {
	nodes := []*repository.Node{rawNode(1, "r1", nil), rawNode(10, "r2", nil)}
	for id := int64(2); id < 10; id++ {
		nodes = append(nodes, rawNode(id, "n", int64Ptr(id-1)))
	}
	for id := int64(11); id < 20; id++ {
		nodes = append(nodes, rawNode(id, "m", int64Ptr(10)))
	}

	total := 0
	for _, root := range BuildHierarchy(nodes, nil) {
		total += root.Count()
	}
	assert.Equal(t, len(nodes), total)
}
