package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/service"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/shared/utils"
)

// Version is reported by the root endpoint.
const Version = "0.3.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	registry *service.Registry
	browser  *browser.Provider
	windows  *browser.WindowManager
	metrics  *HandlerMetrics
	logger   *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(registry *service.Registry, browserProvider *browser.Provider, metrics *HandlerMetrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		registry: registry,
		browser:  browserProvider,
		windows:  browserProvider.Windows(),
		metrics:  metrics,
		logger:   logger,
	}
}

// Root reports the service identity
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "navigator",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"service_registry": h.registry.Stats(),
		"windows":          len(h.windows.List()),
		"sandbox":          h.browser.Pool().Stats(),
		"breakers":         h.browser.Breakers(),
	})
}

// ListServices lists all available services
func (h *Handlers) ListServices(c *gin.Context) {
	categoryStr := c.Query("category")
	if err := utils.ValidateCategory(categoryStr, false); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var category *types.Category
	if categoryStr != "" {
		cat := types.Category(categoryStr)
		category = &cat
	}

	c.JSON(http.StatusOK, gin.H{
		"services": h.registry.List(category),
		"stats":    h.registry.Stats(),
	})
}

// DiscoverServices discovers relevant services for a query
func (h *Handlers) DiscoverServices(c *gin.Context) {
	var req types.DiscoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateQuery(req.Query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit := req.Limit
	if limit <= 0 || limit > 20 {
		limit = 5
	}

	c.JSON(http.StatusOK, gin.H{
		"query":    req.Query,
		"services": h.registry.Discover(req.Query, limit),
	})
}

// ExecuteService executes a service tool
func (h *Handlers) ExecuteService(c *gin.Context) {
	done := h.metrics.TrackServiceOperation("execute")

	var req types.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		done("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateToolID(req.ToolID, "tool_id", true); err != nil {
		done("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.WindowID != nil {
		if err := utils.ValidateID(*req.WindowID, "window_id", false); err != nil {
			done("bad_request")
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.registry.Execute(c.Request.Context(), req.ToolID, req.Params, h.appContext(c, req.WindowID))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrInvalidToolID) || errors.Is(err, service.ErrServiceNotFound) ||
			errors.Is(err, service.ErrToolNotFound) {
			status = http.StatusNotFound
		}
		done("error")
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if result.Success {
		done("success")
	} else {
		done("failure")
	}
	c.JSON(http.StatusOK, result)
}

// appContext builds the execution context for a request.
func (h *Handlers) appContext(c *gin.Context, windowID *string) *types.Context {
	return &types.Context{
		WindowID:  windowID,
		RequestID: string(tracing.GetTraceID(c.Request.Context())),
		ClientIP:  c.ClientIP(),
	}
}
