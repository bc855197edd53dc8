package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Middleware records every request under its route template. Requests for
// the paths in skip (typically the scrape endpoint) are not counted.
func Middleware(metrics *Metrics, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if _, ok := skipped[route]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// Handler serves the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// TrackCall starts timing a call on service. The returned func records it
// under the given outcome and counts any outcome other than "success" as an
// error of that type. Call it exactly once.
func (m *Metrics) TrackCall(service, tool string) func(outcome string) {
	start := time.Now()
	return func(outcome string) {
		m.RecordServiceCall(service, tool, outcome, time.Since(start))
		if outcome != "success" {
			m.RecordServiceError(service, tool, outcome)
		}
	}
}

// Outcome maps a provider's (success, err) pair to a metric label.
func Outcome(success bool, err error) string {
	switch {
	case err != nil:
		return "error"
	case !success:
		return "failure"
	default:
		return "success"
	}
}
