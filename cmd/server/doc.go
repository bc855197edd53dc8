// Package main is the entry point for the navigator server.
//
// The server hosts headless browsing contexts: each window owns a session
// history, a location and a script sandbox, and is driven over REST,
// the service execute endpoint, or a WebSocket event stream.
//
// Configuration is layered: defaults, then an optional YAML or TOML file,
// then environment variables, then CLI flags.
//
// Usage:
//
//	./navigator --config navigator.yaml
//	./navigator --port 8080 --dev --initial-url https://example.com/
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
