// Package http exposes the navigator over a REST API.
//
// Every window endpoint is a thin adapter over a browser tool executed
// through the service registry, so REST and /services/execute share one
// code path. Unknown windows are 404; navigation failures that the tool
// reports (blocked URL, cross-origin state, network error) are 422.
//
// Endpoints:
//   - Health: / and /health
//   - Services: /services, /services/discover, /services/execute
//   - Windows: /windows, /windows/:id and its navigate, reload, traverse,
//     state, scripts, location, history, query and stream sub-resources
//   - Metrics: /metrics (Prometheus) and /metrics/json
package http
