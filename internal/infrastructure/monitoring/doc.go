/*
Package monitoring provides Prometheus metrics for the navigator service.

# Overview

Collectors are registered on an explicit registry rather than the global
one, so several instances (one per test, for example) can coexist.

# Features

- HTTP request metrics (latency, throughput)
- Navigation metrics (kind, outcome, commit latency, traversal resolution)
- Document fetch metrics (status class, latency, body size)
- Sandbox script and service call metrics
- WebSocket event stream metrics

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics, "/metrics"))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	done := metrics.TrackCall("browser", "browser.navigate")
	res, err := provider.Execute(ctx, "browser.navigate", params, appCtx)
	done(monitoring.Outcome(res != nil && res.Success, err))
*/
package monitoring
