package handlers

import (
	"net/http"
	"strconv"

	"github.com/ammiranda/forest_service/cache"
	"github.com/ammiranda/forest_service/logger"
	"github.com/ammiranda/forest_service/models"
	"github.com/ammiranda/forest_service/tree"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TreeHandler handles tree-related HTTP requests
type TreeHandler struct {
	engine *tree.Engine
	cache  cache.Provider
	log    *zap.Logger
}

// NewTreeHandler creates a new TreeHandler instance. A nil cache disables caching.
func NewTreeHandler(engine *tree.Engine, c cache.Provider, log *zap.Logger) *TreeHandler {
	if c == nil {
		c = cache.NoopCache{}
	}
	return &TreeHandler{
		engine: engine,
		cache:  c,
		log:    logger.OrNop(log),
	}
}

// GetForest returns all trees in the database
func (h *TreeHandler) GetForest(c *gin.Context) {
	ctx := c.Request.Context()

	// Try to get from cache first
	if forest, found := h.cache.GetForest(ctx); found {
		c.JSON(http.StatusOK, forest)
		return
	}

	forest, err := h.engine.ListAllTrees(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.cache.SetForest(ctx, forest)
	c.JSON(http.StatusOK, forest)
}

// CreateNode creates a new node in the tree
func (h *TreeHandler) CreateNode(c *gin.Context) {
	var req models.CreateNodeRequest
	if !h.bind(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	node, err := h.engine.CreateNode(ctx, req.Label, req.ParentID)
	if err != nil {
		h.fail(c, err)
		return
	}

	// Invalidate cache since we modified the tree
	h.cache.Invalidate(ctx)
	c.JSON(http.StatusCreated, NodeResponse(node))
}

// CreateNodes creates a batch of nodes in one transaction
func (h *TreeHandler) CreateNodes(c *gin.Context) {
	var req models.BatchCreateRequest
	if !h.bind(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inputs := make([]tree.NodeInput, len(req.Nodes))
	for i, n := range req.Nodes {
		inputs[i] = tree.NodeInput{Label: n.Label, ParentID: n.ParentID}
	}

	ctx := c.Request.Context()
	nodes, err := h.engine.CreateNodes(ctx, inputs)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.cache.Invalidate(ctx)
	c.JSON(http.StatusCreated, NodeResponses(nodes))
}

// GetTree returns the subtree rooted at the path id
func (h *TreeHandler) GetTree(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	subtree, err := h.engine.GetTree(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, subtree)
}

// RelabelNode changes the label of a node
func (h *TreeHandler) RelabelNode(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req models.UpdateNodeRequest
	if !h.bind(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	node, err := h.engine.RelabelNode(ctx, id, req.Label)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.cache.Invalidate(ctx)
	c.JSON(http.StatusOK, NodeResponse(node))
}

// DeleteNode removes a node and its whole subtree
func (h *TreeHandler) DeleteNode(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	deleted, err := h.engine.DeleteSubtree(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.cache.Invalidate(ctx)
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// GetPath returns the root-to-node path
func (h *TreeHandler) GetPath(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	path, err := h.engine.GetPath(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, path)
}

// GetDescendants lists every node below the path id in pre-order
func (h *TreeHandler) GetDescendants(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.engine.GetNode(ctx, id); err != nil {
		h.fail(c, err)
		return
	}
	descendants, err := h.engine.GetAllDescendants(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, models.DescendantsResponse{
		NodeID:      id,
		Descendants: NodeResponses(descendants),
		SubtreeSize: len(descendants),
	})
}

// MoveNode relocates a node and its subtree under a new parent
func (h *TreeHandler) MoveNode(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req models.MoveNodeRequest
	if !h.bind(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	node, err := h.engine.MoveNodeAndSubtree(ctx, id, req.NewParentID)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.cache.Invalidate(ctx)
	c.JSON(http.StatusOK, NodeResponse(node))
}

// GetNodesAtDepth lists the nodes at the depth given by the query string
func (h *TreeHandler) GetNodesAtDepth(c *gin.Context) {
	depth, err := strconv.Atoi(c.Query("depth"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "depth must be an integer"})
		return
	}

	nodes, err := h.engine.GetNodesAtDepth(c.Request.Context(), depth)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NodeResponses(nodes))
}

// GetStats returns aggregate counts over the forest
func (h *TreeHandler) GetStats(c *gin.Context) {
	stats, err := h.engine.GetStats(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Validate reports structural problems in the stored forest
func (h *TreeHandler) Validate(c *gin.Context) {
	report, err := h.engine.ValidateTreeStructure(c.Request.Context(), nil)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Health reports whether the store is reachable
func (h *TreeHandler) Health(c *gin.Context) {
	if err := h.engine.Ping(c.Request.Context()); err != nil {
		h.log.Error("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *TreeHandler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func (h *TreeHandler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalidID.Error()})
		return 0, false
	}
	return id, true
}

func (h *TreeHandler) fail(c *gin.Context, err error) {
	status := ErrorStatus(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": ErrorMessage(err)})
}
