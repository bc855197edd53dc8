package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/shared/utils"
)

// ListWindows lists open windows with navigation latency statistics
func (h *Handlers) ListWindows(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"windows": h.windows.List(),
		"latency": h.windows.Stats(),
	})
}

// OpenWindow opens a window, optionally nested and navigated
func (h *Handlers) OpenWindow(c *gin.Context) {
	done := h.metrics.TrackWindowOperation("open")

	var req types.OpenWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength != 0 {
		done("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateURL(req.URL, "url", false); err != nil {
		done("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateID(req.ParentID, "parent_id", false); err != nil {
		done("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := map[string]any{"url": req.URL}
	if req.ParentID != "" {
		params["parent_id"] = req.ParentID
	}
	result, err := h.registry.Execute(c.Request.Context(), "browser.open", params, h.appContext(c, nil))
	if err != nil {
		done("error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !result.Success {
		done("failure")
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}
	done("success")
	c.JSON(http.StatusCreated, result.Data)
}

// GetWindow describes one window
func (h *Handlers) GetWindow(c *gin.Context) {
	id, ok := h.windowID(c)
	if !ok {
		return
	}
	info, err := h.windows.Info(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

// CloseWindow closes a window and its nested windows
func (h *Handlers) CloseWindow(c *gin.Context) {
	id, ok := h.windowID(c)
	if !ok {
		return
	}
	if err := h.windows.Close(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"window_id": id, "closed": true})
}

// Navigate navigates a window
func (h *Handlers) Navigate(c *gin.Context) {
	var req types.NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateURL(req.URL, "url", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.runTool(c, "navigate", "browser.navigate", map[string]any{
		"url":     req.URL,
		"replace": req.Replace,
	})
}

// Reload reloads the active document; ?force=true bypasses caches
func (h *Handlers) Reload(c *gin.Context) {
	force, _ := strconv.ParseBool(c.Query("force"))
	h.runTool(c, "reload", "browser.reload", map[string]any{"force": force})
}

// Traverse moves through session history
func (h *Handlers) Traverse(c *gin.Context) {
	var req types.TraverseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.runTool(c, "traverse", "browser.go", map[string]any{"delta": req.Delta})
}

// UpdateState implements pushState and replaceState
func (h *Handlers) UpdateState(c *gin.Context) {
	var req types.StateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateState(req.State); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateTitle(req.Title); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := map[string]any{"state": req.State, "title": req.Title}
	if req.URL != nil {
		if err := utils.ValidateURL(*req.URL, "url", false); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		params["url"] = *req.URL
	}
	tool := "browser.push_state"
	if req.Replace {
		tool = "browser.replace_state"
	}
	h.runTool(c, "state", tool, params)
}

// RunScript executes a script against a window
func (h *Handlers) RunScript(c *gin.Context) {
	var req types.ScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateScript(req.Script); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.runTool(c, "script", "browser.execute_script", map[string]any{"script": req.Script})
}

// GetLocation reports the location components of a window
func (h *Handlers) GetLocation(c *gin.Context) {
	h.runTool(c, "location", "browser.location", map[string]any{})
}

// GetHistory reports the session history of a window
func (h *Handlers) GetHistory(c *gin.Context) {
	h.runTool(c, "history", "browser.history", map[string]any{})
}

// Query extracts text from the active document by ?selector= or ?xpath=
func (h *Handlers) Query(c *gin.Context) {
	h.runTool(c, "query", "browser.query", map[string]any{
		"selector": c.Query("selector"),
		"xpath":    c.Query("xpath"),
	})
}

// windowID validates the :id path parameter, writing a 400 on failure.
func (h *Handlers) windowID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if err := utils.ValidateID(id, "window_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return id, true
}

// runTool executes a browser tool against the :id window. Unknown windows
// are 404; tool failures (blocked, cross-origin state, network) are 422.
func (h *Handlers) runTool(c *gin.Context, operation, toolID string, params map[string]any) {
	done := h.metrics.TrackWindowOperation(operation)

	id, ok := h.windowID(c)
	if !ok {
		done("bad_request")
		return
	}
	if _, err := h.windows.Info(id); err != nil {
		done("not_found")
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	params["window_id"] = id
	result, err := h.registry.Execute(c.Request.Context(), toolID, params, h.appContext(c, &id))
	if err != nil {
		done("error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !result.Success {
		done("failure")
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}
	done("success")
	c.JSON(http.StatusOK, result.Data)
}
