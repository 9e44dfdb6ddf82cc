package observability

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/Alijeyrad/drivingschool_backend/pkg/observability"

// TraceHeader carries the trace id back to the client so support
// requests can be matched to spans.
const TraceHeader = "X-Trace-Id"

type httpInstruments struct {
	tracer   trace.Tracer
	requests metric.Int64Counter
	latency  metric.Float64Histogram
	inflight metric.Int64UpDownCounter
}

func newHTTPInstruments() httpInstruments {
	meter := otel.Meter(instrumentationName)

	// Instrument creation only fails on invalid names; the otel API hands
	// back no-op instruments in that case.
	requests, _ := meter.Int64Counter("http_server_request_count",
		metric.WithDescription("HTTP requests served"),
		metric.WithUnit("{request}"))
	latency, _ := meter.Float64Histogram("http_server_request_duration_ms",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("ms"))
	inflight, _ := meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("HTTP requests currently being served"),
		metric.WithUnit("{request}"))

	return httpInstruments{
		tracer:   otel.Tracer(instrumentationName),
		requests: requests,
		latency:  latency,
		inflight: inflight,
	}
}

// FiberMiddleware opens a server span per request, continuing any
// incoming trace, and records request count, latency and concurrency
// keyed by route template.
func FiberMiddleware() fiber.Handler {
	in := newHTTPInstruments()
	propagator := otel.GetTextMapPropagator()

	return func(c fiber.Ctx) error {
		route := c.Route().Path
		method := c.Method()

		ctx := propagator.Extract(c.Context(), propagation.HeaderCarrier(c.GetReqHeaders()))
		ctx, span := in.tracer.Start(ctx, method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(requestAttributes(c, method, route)...),
		)
		defer span.End()
		c.SetContext(ctx)

		if sc := span.SpanContext(); sc.HasTraceID() {
			c.Set(TraceHeader, sc.TraceID().String())
		}

		routeAttr := metric.WithAttributes(attribute.String("http.route", route))
		in.inflight.Add(ctx, 1, routeAttr)
		start := time.Now()

		err := c.Next()

		elapsed := float64(time.Since(start).Microseconds()) / 1000
		in.inflight.Add(ctx, -1, routeAttr)

		status := c.Response().StatusCode()
		span.SetAttributes(
			attribute.Int("http.status_code", status),
			attribute.Float64("http.duration_ms", elapsed),
		)
		markSpan(span, status, err)

		attrs := metric.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)
		in.requests.Add(ctx, 1, attrs)
		in.latency.Record(ctx, elapsed, attrs)

		return err
	}
}

func requestAttributes(c fiber.Ctx, method, route string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.String("http.target", c.OriginalURL()),
		attribute.String("http.scheme", c.Protocol()),
		attribute.String("net.host.name", c.Hostname()),
		attribute.String("http.user_agent", c.Get(fiber.HeaderUserAgent)),
		attribute.String("http.client_ip", c.IP()),
	}
}

// markSpan flags server-side failures only. 4xx responses are the
// client's problem and stay Unset.
func markSpan(span trace.Span, status int, err error) {
	if status < fiber.StatusInternalServerError {
		return
	}
	span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(status))
	if err != nil {
		span.RecordError(err)
	}
}
