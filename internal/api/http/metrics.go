package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/service"
)

// MetricsAggregator joins the Prometheus snapshot with browser state
type MetricsAggregator struct {
	metrics  *monitoring.Metrics
	browser  *browser.Provider
	registry *service.Registry
}

// NewMetricsAggregator creates a metrics aggregator
func NewMetricsAggregator(metrics *monitoring.Metrics, browserProvider *browser.Provider, registry *service.Registry) *MetricsAggregator {
	return &MetricsAggregator{
		metrics:  metrics,
		browser:  browserProvider,
		registry: registry,
	}
}

// MetricsSnapshot represents a snapshot of all system metrics
type MetricsSnapshot struct {
	Timestamp time.Time            `json:"timestamp"`
	Backend   monitoring.Snapshot  `json:"backend"`
	Latency   browser.LatencyStats `json:"navigation_latency"`
	Breakers  map[string]string    `json:"breakers"`
	Sandbox   map[string]any       `json:"sandbox"`
	Services  map[string]any       `json:"services"`
	Summary   MetricsSummary       `json:"summary"`
}

// MetricsSummary provides high-level metrics
type MetricsSummary struct {
	TotalRequests      int64   `json:"total_requests"`
	AverageLatencyMs   float64 `json:"average_latency_ms"`
	ErrorRate          float64 `json:"error_rate"`
	NavigationFailRate float64 `json:"navigation_fail_rate"`
	ActiveStreams      int64   `json:"active_streams"`
	UptimeSeconds      float64 `json:"uptime_seconds"`
}

// GetAggregatedMetrics returns every metric as JSON
func (ma *MetricsAggregator) GetAggregatedMetrics(c *gin.Context) {
	snap := ma.metrics.Snapshot()
	c.JSON(http.StatusOK, MetricsSnapshot{
		Timestamp: time.Now(),
		Backend:   snap,
		Latency:   ma.browser.Windows().Stats(),
		Breakers:  ma.browser.Breakers(),
		Sandbox:   ma.browser.Pool().Stats(),
		Services:  ma.registry.Stats(),
		Summary:   summarize(snap),
	})
}

func summarize(s monitoring.Snapshot) MetricsSummary {
	out := MetricsSummary{
		TotalRequests:    s.TotalRequests,
		AverageLatencyMs: s.AvgRequestMillis,
		ActiveStreams:    s.ActiveStreams,
		UptimeSeconds:    s.UptimeSeconds,
	}
	if s.TotalRequests > 0 {
		out.ErrorRate = float64(s.TotalErrors) / float64(s.TotalRequests)
	}
	if s.Navigations > 0 {
		out.NavigationFailRate = float64(s.FailedNavigation) / float64(s.Navigations)
	}
	return out
}

// Prometheus serves the collectors in Prometheus text format
func (ma *MetricsAggregator) Prometheus() gin.HandlerFunc {
	return gin.WrapH(ma.metrics.Handler())
}
