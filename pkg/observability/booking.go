package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BookingMetrics counts appointment lifecycle outcomes.
type BookingMetrics struct {
	events metric.Int64Counter
	failed metric.Int64Counter
	credit metric.Int64Counter
}

// NewBookingMetrics builds the counters on the global meter provider. With no
// provider installed the counters are no-ops.
func NewBookingMetrics() *BookingMetrics {
	meter := otel.Meter(instrumentationName)

	events, _ := meter.Int64Counter(
		"drivingschool_appointment_events",
		metric.WithDescription("Appointment lifecycle transitions"),
		metric.WithUnit("{event}"),
	)
	failed, _ := meter.Int64Counter(
		"drivingschool_appointment_rejections",
		metric.WithDescription("Rejected appointment operations by reason"),
		metric.WithUnit("{request}"),
	)
	credit, _ := meter.Int64Counter(
		"drivingschool_credits_granted",
		metric.WithDescription("Lesson credits granted to students"),
		metric.WithUnit("{credit}"),
	)

	return &BookingMetrics{events: events, failed: failed, credit: credit}
}

// Event records a successful transition such as "booked" or "cancelled".
func (m *BookingMetrics) Event(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.events.Add(ctx, 1, metric.WithAttributes(attribute.String("event", kind)))
}

func (m *BookingMetrics) Rejected(ctx context.Context, op, reason string) {
	if m == nil {
		return
	}
	m.failed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("reason", reason),
	))
}

func (m *BookingMetrics) CreditsGranted(ctx context.Context, source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.credit.Add(ctx, int64(n), metric.WithAttributes(attribute.String("source", source)))
}
