package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstancesDoNotCollide(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()
	a.RecordTraversal("noop")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.Traversals.WithLabelValues("noop")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Traversals.WithLabelValues("noop")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordNavigation("push", "committed", time.Millisecond)
		m.RecordFetch("https", 200, time.Millisecond, 10)
		m.SetWindowsActive(3)
		m.IncWSConnections()
	})
	assert.Equal(t, Snapshot{}, m.Snapshot())
}

func TestSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordHTTPRequest("GET", "/x", "200", 10*time.Millisecond)
	m.RecordHTTPRequest("GET", "/x", "500", 30*time.Millisecond)
	m.RecordNavigation("push", "committed", time.Millisecond)
	m.RecordNavigation("push", "failed", 0)
	m.SetWindowsActive(2)

	s := m.Snapshot()
	assert.EqualValues(t, 2, s.TotalRequests)
	assert.EqualValues(t, 1, s.TotalErrors)
	assert.EqualValues(t, 2, s.Navigations)
	assert.EqualValues(t, 1, s.FailedNavigation)
	assert.EqualValues(t, 2, s.ActiveWindows)
	assert.InDelta(t, 20.0, s.AvgRequestMillis, 0.001)
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()
	r := gin.New()
	r.Use(Middleware(m))
	r.GET("/windows/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/windows/abc", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/windows/:id", "200")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.True(t, strings.Contains(w.Body.String(), "navigator_http_requests_total"))
	assert.True(t, strings.Contains(w.Body.String(), "navigator_uptime_seconds"))
}

func TestTrackCall(t *testing.T) {
	m := NewMetrics()

	m.TrackCall("browser", "browser.navigate")(Outcome(true, nil))
	m.TrackCall("browser", "browser.navigate")(Outcome(false, nil))
	m.TrackCall("browser", "browser.back")(Outcome(false, assert.AnError))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ServiceCalls.WithLabelValues("browser", "browser.navigate", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ServiceErrors.WithLabelValues("browser", "browser.navigate", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ServiceErrors.WithLabelValues("browser", "browser.back", "error")))

	var nilMetrics *Metrics
	nilMetrics.TrackCall("browser", "browser.go")("success")
}

func TestMiddlewareSkipsPaths(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()
	r := gin.New()
	r.Use(Middleware(m, "/metrics"))
	r.GET("/metrics", gin.WrapH(m.Handler()))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 0.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/metrics", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}
