// Package middleware provides the HTTP middleware stack of the navigator API.
//
// Middleware stack includes:
//   - CORS: Cross-origin resource sharing with configurable origins
//   - RateLimit: Per-IP token bucket rate limiting
//   - Logger: One structured log line per request
//   - Recovery: Panic recovery with a JSON 500 response
//
// Rate Limiting:
//   - Per-IP tracking; idle clients are dropped after ten minutes
//   - Token bucket algorithm; rejected requests get Retry-After and keep their token
//   - Global rate limiting option
//
// Example Usage:
//
//	router.Use(middleware.Recovery(logger))
//	router.Use(middleware.CORS(middleware.CORSFromConfig(cfg.CORS)))
//	router.Use(middleware.RateLimit(middleware.RateLimitFromConfig(cfg.RateLimit)))
package middleware
