package handlers

import (
	"time"

	"github.com/ammiranda/forest_service/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterOptions configures the middleware chain of NewRouter
type RouterOptions struct {
	Log            *zap.Logger
	Metrics        *middleware.Metrics
	RateLimiter    *middleware.RateLimiter
	RequestTimeout time.Duration
}

// NewRouter builds the gin engine serving the tree API
func NewRouter(h *TreeHandler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.SecurityHeaders(), middleware.RequestLogger(opts.Log))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	r.GET("/health", h.Health)

	api := r.Group("/api")
	if opts.RateLimiter != nil {
		api.Use(opts.RateLimiter.Middleware())
	}
	if opts.RequestTimeout > 0 {
		api.Use(middleware.Deadline(opts.RequestTimeout))
	}
	RegisterRoutes(api, h)
	return r
}

// RegisterRoutes mounts the tree endpoints on rg
func RegisterRoutes(rg *gin.RouterGroup, h *TreeHandler) {
	rg.GET("/tree", h.GetForest)
	rg.POST("/tree", h.CreateNode)
	rg.POST("/tree/batch", h.CreateNodes)
	rg.GET("/tree/:id", h.GetTree)
	rg.PUT("/tree/:id", h.RelabelNode)
	rg.DELETE("/tree/:id", h.DeleteNode)
	rg.GET("/tree/:id/path", h.GetPath)
	rg.GET("/tree/:id/descendants", h.GetDescendants)
	rg.POST("/tree/:id/move", h.MoveNode)
	rg.GET("/nodes", h.GetNodesAtDepth)
	rg.GET("/stats", h.GetStats)
	rg.GET("/validate", h.Validate)
}
