// Package server assembles the navigator: configuration, logging, metrics
// and tracing, the service registry with the browser and url providers,
// the gin middleware chain and every HTTP and WebSocket route.
package server
