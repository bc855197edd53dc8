package http

import (
	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/monitoring"
)

// HandlerMetrics times registry endpoints under the "service_registry" service.
type HandlerMetrics struct {
	metrics *monitoring.Metrics
}

func NewHandlerMetrics(metrics *monitoring.Metrics) *HandlerMetrics {
	return &HandlerMetrics{metrics: metrics}
}

// TrackServiceOperation starts timing operation. Pass the outcome label
// ("success", "failure", "bad_request", "error") to the returned func.
func (hm *HandlerMetrics) TrackServiceOperation(operation string) func(status string) {
	return hm.metrics.TrackCall("service_registry", operation)
}
