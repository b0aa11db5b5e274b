package repository

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MockRepository implements Repository in memory for testing.
// It enforces parent existence on insert like the SQL stores do, but
// UpdateParent writes whatever it is given so tests can corrupt the forest
// out of band.
type MockRepository struct {
	mu     sync.RWMutex
	txMu   sync.Mutex
	nodes  map[int64]*Node
	nextID int64
	now    func() time.Time
}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{
		nodes:  make(map[int64]*Node),
		nextID: 1,
		now:    time.Now,
	}
}

// Initialize performs any necessary setup
func (m *MockRepository) Initialize(ctx context.Context) error {
	return nil
}

// Cleanup removes every node and resets the id sequence
func (m *MockRepository) Cleanup(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes = make(map[int64]*Node)
	m.nextID = 1
	return nil
}

// CreateNode creates a new node
func (m *MockRepository) CreateNode(ctx context.Context, label string, parentID *int64) (int64, error) {
	if label == "" {
		return 0, ErrInvalidInput
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if parentID != nil {
		if _, ok := m.nodes[*parentID]; !ok {
			return 0, ErrParentNotFound
		}
	}

	id := m.nextID
	m.nextID++
	m.nodes[id] = &Node{
		ID:        id,
		Label:     label,
		ParentID:  copyID(parentID),
		CreatedAt: m.now().UTC(),
	}
	return id, nil
}

// GetNode retrieves a node by ID
func (m *MockRepository) GetNode(ctx context.Context, id int64) (*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, ok := m.nodes[id]
	if !ok {
		return nil, ErrNodeNotFound
	}
	return copyNode(node), nil
}

// GetAllNodes retrieves all nodes ordered by parent id (roots first), then id
func (m *MockRepository) GetAllNodes(ctx context.Context) ([]*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Node, 0, len(m.nodes))
	for _, node := range m.nodes {
		result = append(result, copyNode(node))
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		switch {
		case a.ParentID == nil && b.ParentID != nil:
			return true
		case a.ParentID != nil && b.ParentID == nil:
			return false
		case a.ParentID != nil && *a.ParentID != *b.ParentID:
			return *a.ParentID < *b.ParentID
		}
		return a.ID < b.ID
	})
	return result, nil
}

// GetChildren retrieves direct children of a node, or the roots for a nil parent
func (m *MockRepository) GetChildren(ctx context.Context, parentID *int64) ([]*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Node, 0)
	for _, node := range m.nodes {
		switch {
		case parentID == nil && node.ParentID == nil:
			result = append(result, copyNode(node))
		case parentID != nil && node.ParentID != nil && *node.ParentID == *parentID:
			result = append(result, copyNode(node))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// NodeExists checks if a node exists
func (m *MockRepository) NodeExists(ctx context.Context, id int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.nodes[id]
	return ok, nil
}

// UpdateLabel updates a node's label
func (m *MockRepository) UpdateLabel(ctx context.Context, id int64, label string) error {
	if label == "" {
		return ErrInvalidInput
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	node, ok := m.nodes[id]
	if !ok {
		return ErrNodeNotFound
	}
	node.Label = label
	return nil
}

// UpdateParent updates a node's parent pointer
func (m *MockRepository) UpdateParent(ctx context.Context, id int64, parentID *int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	node, ok := m.nodes[id]
	if !ok {
		return ErrNodeNotFound
	}
	node.ParentID = copyID(parentID)
	return nil
}

// DeleteNodes deletes the given set of nodes
func (m *MockRepository) DeleteNodes(ctx context.Context, ids []int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for _, id := range ids {
		if _, ok := m.nodes[id]; ok {
			delete(m.nodes, id)
			count++
		}
	}
	return count, nil
}

// RunInTx runs fn against the repository and restores the previous state if
// fn fails. Transactions are serialized with each other but not with
// non-transactional calls.
func (m *MockRepository) RunInTx(ctx context.Context, fn func(Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.RLock()
	snapshot := make(map[int64]*Node, len(m.nodes))
	for id, node := range m.nodes {
		snapshot[id] = copyNode(node)
	}
	nextID := m.nextID
	m.mu.RUnlock()

	if err := fn(&mockTx{m}); err != nil {
		m.mu.Lock()
		m.nodes = snapshot
		m.nextID = nextID
		m.mu.Unlock()
		return err
	}
	return nil
}

// Len returns the number of stored nodes
func (m *MockRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes)
}

// mockTx is the transaction-scoped view handed to RunInTx callbacks
type mockTx struct {
	*MockRepository
}

func (t *mockTx) RunInTx(ctx context.Context, fn func(Store) error) error {
	return fn(t)
}

func copyNode(n *Node) *Node {
	c := *n
	c.ParentID = copyID(n.ParentID)
	return &c
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
