package tracing

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// HeaderTraceID carries the request's trace id in responses.
const HeaderTraceID = "X-Trace-ID"

// HTTPMiddleware creates Gin middleware for HTTP tracing
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := tracer.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := tracer.StartSpan(ctx, c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", route),
				attribute.String("http.target", c.Request.URL.Path),
				attribute.String("net.host.name", c.Request.Host),
			),
		)
		defer span.End()

		traceID := traceIDFor(ctx)
		ctx = WithTraceID(ctx, traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Set("trace_id", string(traceID))
		c.Header(HeaderTraceID, string(traceID))

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if len(c.Errors) > 0 {
			span.RecordError(c.Errors.Last())
		}
		if status >= 500 {
			span.SetStatus(codes.Error, strconv.Itoa(status))
		}

		tracer.logger.Debug("request completed",
			zap.String("trace_id", string(traceID)),
			zap.String("operation", route),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
