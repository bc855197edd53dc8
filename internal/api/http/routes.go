package http

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts every REST endpoint on r. stream, when non-nil,
// serves the per-window event stream.
func RegisterRoutes(r gin.IRouter, h *Handlers, ma *MetricsAggregator, stream gin.HandlerFunc) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	// Service management
	r.GET("/services", h.ListServices)
	r.POST("/services/discover", h.DiscoverServices)
	r.POST("/services/execute", h.ExecuteService)

	// Windows
	r.GET("/windows", h.ListWindows)
	r.POST("/windows", h.OpenWindow)
	r.GET("/windows/:id", h.GetWindow)
	r.DELETE("/windows/:id", h.CloseWindow)
	r.POST("/windows/:id/navigate", h.Navigate)
	r.POST("/windows/:id/reload", h.Reload)
	r.POST("/windows/:id/traverse", h.Traverse)
	r.POST("/windows/:id/state", h.UpdateState)
	r.POST("/windows/:id/scripts", h.RunScript)
	r.GET("/windows/:id/location", h.GetLocation)
	r.GET("/windows/:id/history", h.GetHistory)
	r.GET("/windows/:id/query", h.Query)
	if stream != nil {
		r.GET("/windows/:id/stream", stream)
	}

	// Metrics
	r.GET("/metrics", ma.Prometheus())
	r.GET("/metrics/json", ma.GetAggregatedMetrics)
}
