package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/shared/id"
)

// TraceID identifies a request across services. It is the W3C trace id
// when one is available, otherwise a generated request id.
type TraceID string

// Tracer starts spans for API requests on the global OpenTelemetry
// provider and propagates W3C trace context.
type Tracer struct {
	service    string
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
	logger     *zap.Logger
}

// New creates a tracer for service. Spans are exported by whatever
// TracerProvider the process installs; without one they are no-ops that
// still carry incoming trace context.
func New(service string, logger *zap.Logger) *Tracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracer{
		service: service,
		tracer:  otel.Tracer(service),
		propagator: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
		logger: logger,
	}
}

// Service returns the service name spans are attributed to.
func (t *Tracer) Service() string { return t.service }

// Tracer returns the underlying OpenTelemetry tracer for components that
// start their own spans.
func (t *Tracer) Tracer() trace.Tracer { return t.tracer }

// StartSpan starts a span as a child of any span in ctx.
func (t *Tracer) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// Extract reads trace context from carrier into ctx.
func (t *Tracer) Extract(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	return t.propagator.Extract(ctx, carrier)
}

// Inject writes the trace context of ctx into carrier.
func (t *Tracer) Inject(ctx context.Context, carrier propagation.TextMapCarrier) {
	t.propagator.Inject(ctx, carrier)
}

type traceIDKey struct{}

// WithTraceID stores id on ctx.
func WithTraceID(ctx context.Context, traceID TraceID) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// GetTraceID returns the trace id of ctx: the stored id, else the active
// span's trace id, else "".
func GetTraceID(ctx context.Context) TraceID {
	if v, ok := ctx.Value(traceIDKey{}).(TraceID); ok {
		return v
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return TraceID(sc.TraceID().String())
	}
	return ""
}

// traceIDFor picks the id reported back to the caller.
func traceIDFor(ctx context.Context) TraceID {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return TraceID(sc.TraceID().String())
	}
	return TraceID(id.NewRequestID())
}
