package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/Alijeyrad/drivingschool_backend/pkg/constants"
)

type EventType string

const (
	EventBooked      EventType = "appointment.booked"
	EventCancelled   EventType = "appointment.cancelled"
	EventRescheduled EventType = "appointment.rescheduled"
)

func (t EventType) Valid() bool {
	switch t {
	case EventBooked, EventCancelled, EventRescheduled:
		return true
	}
	return false
}

const (
	SubjectPrefix = constants.NotificationSubjectPrefix + "."
	// SubjectAppointments matches every appointment event.
	SubjectAppointments = SubjectPrefix + "appointment.>"
)

// Event is the fact emitted after an appointment transaction commits.
type Event struct {
	Type          EventType `json:"type"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	StudentID     uuid.UUID `json:"student_id"`
	InstructorID  uuid.UUID `json:"instructor_id"`
	ScheduledTime time.Time `json:"scheduled_time"`
}

func (e Event) Subject() string {
	return SubjectPrefix + string(e.Type) + "." + e.AppointmentID.String()
}

func DecodeEvent(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if !e.Type.Valid() {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, e.Type)
	}
	return e, nil
}

// ---------------------------------------------------------------------------
// Publishers
// ---------------------------------------------------------------------------

// Publisher hands events off for delivery. It never fails the caller.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}

type natsPublisher struct {
	nc     *nats.Conn
	logger *slog.Logger
}

// NewNATSPublisher publishes JSON events on drivingschool.<type>.<appointment id>.
func NewNATSPublisher(nc *nats.Conn, logger *slog.Logger) Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &natsPublisher{nc: nc, logger: logger.With("publisher", "nats")}
}

func (p *natsPublisher) Publish(_ context.Context, e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		p.logger.Error("encode event", "type", e.Type, "error", err)
		return
	}
	if err := p.nc.Publish(e.Subject(), data); err != nil {
		p.logger.Warn("publish event", "subject", e.Subject(), "error", err)
	}
}

type directPublisher struct {
	svc     Service
	timeout time.Duration
	logger  *slog.Logger
}

// NewDirectPublisher delivers each event in its own goroutine, detached from
// the request context.
func NewDirectPublisher(svc Service, logger *slog.Logger) Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &directPublisher{svc: svc, timeout: 30 * time.Second, logger: logger.With("publisher", "direct")}
}

func (p *directPublisher) Publish(ctx context.Context, e Event) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		if err := p.svc.Deliver(ctx, e); err != nil {
			p.logger.Warn("deliver event", "type", e.Type, "appointment_id", e.AppointmentID, "error", err)
		}
	}()
}
