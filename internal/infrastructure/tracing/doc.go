/*
Package tracing instruments the HTTP API with OpenTelemetry spans.

Incoming W3C traceparent headers are honoured, so a request that arrives
with trace context keeps its trace id; otherwise a request id is generated.
Either way the id is returned in the X-Trace-ID response header and is
available to handlers through GetTraceID. The document fetcher propagates
the same context on outgoing requests.

# Usage

	tracer := tracing.New("navigator", logger)
	router.Use(tracing.HTTPMiddleware(tracer))

	ctx, span := tracer.StartSpan(ctx, "operation")
	defer span.End()

Spans are exported by the process-wide TracerProvider. None is installed by
default, in which case spans are non-recording but ids still propagate.
*/
package tracing
