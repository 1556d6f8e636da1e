package client

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/gaborage/go-relay/client"

// tracingMiddleware opens an OpenTelemetry client span per logical request
// and injects W3C trace context headers onto the outbound request.
type tracingMiddleware struct {
	tracer     oteltrace.Tracer
	propagator propagation.TextMapPropagator
}

// Tracing returns a middleware using the global tracer provider and W3C
// trace context propagation.
func Tracing() Middleware {
	return &tracingMiddleware{
		tracer:     otel.Tracer(tracerName),
		propagator: propagation.TraceContext{},
	}
}

func (m *tracingMiddleware) Handle(req *http.Request, ext *Extensions, next Next) (*http.Response, error) {
	ctx, span := m.tracer.Start(req.Context(), "HTTP "+req.Method,
		oteltrace.WithSpanKind(oteltrace.SpanKindClient),
		oteltrace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL.String()),
		),
	)
	defer span.End()

	req = req.WithContext(ctx)
	m.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := next.Run(req, ext)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	return resp, nil
}
