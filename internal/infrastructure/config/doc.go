// Package config provides 12-factor configuration for the navigator service.
//
// Values come from three layers, later layers winning: built-in defaults,
// an optional YAML or TOML file, and environment variables.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - CORS: Allowed browser origins
//   - Browser: History limits, blocked URL patterns, file scheme access
//   - Fetch: Document loader timeouts, retries, rate and size limits
//   - Sandbox: Script timeout and runtime pool size
//   - Tracing: OpenTelemetry span emission
//
// Example Usage:
//
//	cfg, err := config.LoadFile("navigator.yaml")
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST, LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED, CORS_ORIGINS
//   - BROWSER_INITIAL_URL, BROWSER_MAX_HISTORY, BROWSER_BLOCKED, BROWSER_ALLOW_FILE
//   - FETCH_TIMEOUT, FETCH_RETRIES, FETCH_USER_AGENT, FETCH_RPS
//   - SANDBOX_TIMEOUT, SANDBOX_POOL_SIZE, TRACING_ENABLED
package config
