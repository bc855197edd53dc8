package middleware

import (
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/config"
)

// DefaultCORSConfig allows any origin without credentials. Window and trace
// headers are accepted, and the trace id is readable by scripts.
func DefaultCORSConfig() cors.Config {
	c := cors.DefaultConfig()
	c.AllowOrigins = []string{"*"}
	c.AddAllowHeaders("Accept", "Authorization", "X-Requested-With", "X-Window-ID", "traceparent", "tracestate")
	c.AddExposeHeaders("X-Trace-ID")
	return c
}

// CORSFromConfig narrows the defaults to the configured origins. Credentials
// are allowed only when the list has no wildcard.
func CORSFromConfig(cfg config.CORSConfig) cors.Config {
	c := DefaultCORSConfig()
	if len(cfg.AllowedOrigins) == 0 {
		return c
	}
	c.AllowOrigins = slices.Clone(cfg.AllowedOrigins)
	c.AllowCredentials = !slices.Contains(c.AllowOrigins, "*")
	return c
}

func CORS(cfg cors.Config) gin.HandlerFunc {
	return cors.New(cfg)
}
