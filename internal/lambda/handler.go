// Package lambda adapts the tree API to API Gateway proxy events
package lambda

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/ammiranda/forest_service/cache"
	"github.com/ammiranda/forest_service/handlers"
	"github.com/ammiranda/forest_service/logger"
	"github.com/ammiranda/forest_service/models"
	"github.com/ammiranda/forest_service/tree"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

// Handler represents the Lambda handler with its dependencies
type Handler struct {
	engine *tree.Engine
	cache  cache.Provider
	log    *zap.Logger
}

// NewHandler creates a new Handler. A nil cache disables caching.
func NewHandler(engine *tree.Engine, c cache.Provider, log *zap.Logger) *Handler {
	if c == nil {
		c = cache.NoopCache{}
	}
	return &Handler{
		engine: engine,
		cache:  c,
		log:    logger.OrNop(log),
	}
}

// Handle processes API Gateway events
func (h *Handler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	path := strings.TrimSuffix(request.Path, "/")
	method := request.HTTPMethod

	switch {
	case method == http.MethodGet && path == "/api/tree":
		return h.handleGetForest(ctx)
	case method == http.MethodPost && path == "/api/tree":
		return h.handleCreateNode(ctx, request)
	case method == http.MethodGet && path == "/api/stats":
		return h.handleGetStats(ctx)
	}

	// /api/tree/{id}/{action}
	if id, action, ok := splitNodePath(path); ok {
		switch {
		case method == http.MethodGet && action == "path":
			return h.handleGetPath(ctx, id)
		case method == http.MethodPost && action == "move":
			return h.handleMoveNode(ctx, id, request)
		}
	}

	return errorResponse(http.StatusNotFound, "not found"), nil
}

func (h *Handler) handleGetForest(ctx context.Context) (events.APIGatewayProxyResponse, error) {
	if forest, found := h.cache.GetForest(ctx); found {
		return jsonResponse(http.StatusOK, forest), nil
	}

	forest, err := h.engine.ListAllTrees(ctx)
	if err != nil {
		return h.failure(err), nil
	}
	h.cache.SetForest(ctx, forest)
	return jsonResponse(http.StatusOK, forest), nil
}

func (h *Handler) handleCreateNode(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req models.CreateNodeRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return errorResponse(http.StatusBadRequest, "invalid request: "+err.Error()), nil
	}
	if err := req.Validate(); err != nil {
		return errorResponse(http.StatusBadRequest, err.Error()), nil
	}

	node, err := h.engine.CreateNode(ctx, req.Label, req.ParentID)
	if err != nil {
		return h.failure(err), nil
	}

	h.cache.Invalidate(ctx)
	return jsonResponse(http.StatusCreated, handlers.NodeResponse(node)), nil
}

func (h *Handler) handleGetStats(ctx context.Context) (events.APIGatewayProxyResponse, error) {
	stats, err := h.engine.GetStats(ctx)
	if err != nil {
		return h.failure(err), nil
	}
	return jsonResponse(http.StatusOK, stats), nil
}

func (h *Handler) handleGetPath(ctx context.Context, id int64) (events.APIGatewayProxyResponse, error) {
	path, err := h.engine.GetPath(ctx, id)
	if err != nil {
		return h.failure(err), nil
	}
	return jsonResponse(http.StatusOK, path), nil
}

func (h *Handler) handleMoveNode(ctx context.Context, id int64, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req models.MoveNodeRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return errorResponse(http.StatusBadRequest, "invalid request: "+err.Error()), nil
	}
	if err := req.Validate(); err != nil {
		return errorResponse(http.StatusBadRequest, err.Error()), nil
	}

	node, err := h.engine.MoveNodeAndSubtree(ctx, id, req.NewParentID)
	if err != nil {
		return h.failure(err), nil
	}

	h.cache.Invalidate(ctx)
	return jsonResponse(http.StatusOK, handlers.NodeResponse(node)), nil
}

func (h *Handler) failure(err error) events.APIGatewayProxyResponse {
	status := handlers.ErrorStatus(err)
	if status == http.StatusInternalServerError {
		h.log.Error("lambda request failed", zap.Error(err))
	}
	return errorResponse(status, handlers.ErrorMessage(err))
}

// splitNodePath parses /api/tree/{id}/{action}
func splitNodePath(path string) (int64, string, bool) {
	rest, ok := strings.CutPrefix(path, "/api/tree/")
	if !ok {
		return 0, "", false
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		return 0, "", false
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, "", false
	}
	return id, parts[1], true
}

func jsonResponse(status int, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		return errorResponse(http.StatusInternalServerError, "failed to marshal response")
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func errorResponse(status int, message string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(map[string]string{"error": message})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}
