package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. Every Record/Set method is safe to
// call on a nil *Metrics so components can run without instrumentation.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Navigation metrics
	Navigations        *prometheus.CounterVec
	NavigationDuration *prometheus.HistogramVec
	Traversals         *prometheus.CounterVec
	Events             *prometheus.CounterVec
	WindowsActive      prometheus.Gauge

	// Network metrics
	Fetches       *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	FetchBytes    prometheus.Histogram

	// Script metrics
	Scripts *prometheus.CounterVec

	// Service metrics
	ServiceCalls    *prometheus.CounterVec
	ServiceDuration *prometheus.HistogramVec
	ServiceErrors   *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	startTime time.Time
	registry  *prometheus.Registry

	// Snapshot for JSON API - track current values
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current metric values for the JSON API
type Snapshot struct {
	TotalRequests    int64   `json:"total_requests"`
	TotalErrors      int64   `json:"total_errors"`
	Navigations      int64   `json:"navigations"`
	FailedNavigation int64   `json:"failed_navigations"`
	ActiveWindows    int64   `json:"active_windows"`
	ActiveStreams    int64   `json:"active_streams"`
	AvgRequestMillis float64 `json:"avg_request_ms"`
	UptimeSeconds    float64 `json:"uptime_seconds"`

	totalDuration float64
}

// NewMetrics creates a metrics collector backed by its own registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.NewRegistry())
}

// NewMetricsWith registers every collector on reg.
func NewMetricsWith(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{
		startTime: time.Now(),
		registry:  reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navigator_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "navigator_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		Navigations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navigator_navigations_total",
				Help: "Navigations by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		NavigationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "navigator_navigation_duration_seconds",
				Help:    "Time from navigation start to commit",
				Buckets: []float64{.001, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"kind"},
		),
		Traversals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navigator_traversals_total",
				Help: "History traversals by resolution",
			},
			[]string{"resolution"},
		),
		Events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navigator_events_dispatched_total",
				Help: "Events dispatched to windows",
			},
			[]string{"type"},
		),
		WindowsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "navigator_windows_active",
				Help: "Number of open browsing contexts",
			},
		),

		Fetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navigator_fetches_total",
				Help: "Document fetches by scheme and status class",
			},
			[]string{"scheme", "status"},
		),
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "navigator_fetch_duration_seconds",
				Help:    "Document fetch duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"scheme"},
		),
		FetchBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "navigator_fetch_body_bytes",
				Help:    "Decoded document body size",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
		),

		Scripts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navigator_scripts_total",
				Help: "Sandbox script executions by status",
			},
			[]string{"status"},
		),

		ServiceCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navigator_service_calls_total",
				Help: "Total number of service calls",
			},
			[]string{"service", "method", "status"},
		),
		ServiceDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "navigator_service_duration_seconds",
				Help:    "Service call duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"service", "method"},
		),
		ServiceErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navigator_service_errors_total",
				Help: "Total number of service errors",
			},
			[]string{"service", "method", "error_type"},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "navigator_ws_connections",
				Help: "Number of active WebSocket event streams",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navigator_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "navigator_uptime_seconds",
			Help: "Process uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordNavigation records a committed or failed navigation
func (m *Metrics) RecordNavigation(kind, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.Navigations.WithLabelValues(kind, outcome).Inc()
	if duration > 0 {
		m.NavigationDuration.WithLabelValues(kind).Observe(duration.Seconds())
	}

	m.mu.Lock()
	m.snapshot.Navigations++
	if outcome != "committed" {
		m.snapshot.FailedNavigation++
	}
	m.mu.Unlock()
}

// RecordTraversal records how a history traversal was resolved
func (m *Metrics) RecordTraversal(resolution string) {
	if m == nil {
		return
	}
	m.Traversals.WithLabelValues(resolution).Inc()
}

// RecordEvent records a dispatched event
func (m *Metrics) RecordEvent(eventType string) {
	if m == nil {
		return
	}
	m.Events.WithLabelValues(eventType).Inc()
}

// RecordFetch records a document fetch
func (m *Metrics) RecordFetch(scheme string, status int, duration time.Duration, size int) {
	if m == nil {
		return
	}
	m.Fetches.WithLabelValues(scheme, statusClass(status)).Inc()
	m.FetchDuration.WithLabelValues(scheme).Observe(duration.Seconds())
	m.FetchBytes.Observe(float64(size))
}

// RecordScript records a sandbox execution
func (m *Metrics) RecordScript(status string) {
	if m == nil {
		return
	}
	m.Scripts.WithLabelValues(status).Inc()
}

// RecordServiceCall records a service call
func (m *Metrics) RecordServiceCall(service, method, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ServiceCalls.WithLabelValues(service, method, status).Inc()
	m.ServiceDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

// RecordServiceError records a service error
func (m *Metrics) RecordServiceError(service, method, errorType string) {
	if m == nil {
		return
	}
	m.ServiceErrors.WithLabelValues(service, method, errorType).Inc()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// SetWindowsActive sets the number of open windows
func (m *Metrics) SetWindowsActive(count int) {
	if m == nil {
		return
	}
	m.WindowsActive.Set(float64(count))
	m.mu.Lock()
	m.snapshot.ActiveWindows = int64(count)
	m.mu.Unlock()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveStreams++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveStreams--
	m.mu.Unlock()
}

// Snapshot returns the current values for the JSON API
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.snapshot
	if s.TotalRequests > 0 {
		s.AvgRequestMillis = s.totalDuration / float64(s.TotalRequests) * 1000
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}

func statusClass(status int) string {
	switch {
	case status == 0:
		return "none"
	case status < 200:
		return "1xx"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
