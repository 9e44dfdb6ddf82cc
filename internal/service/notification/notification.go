package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Alijeyrad/drivingschool_backend/internal/model"
	"github.com/Alijeyrad/drivingschool_backend/pkg/email"
	"github.com/Alijeyrad/drivingschool_backend/pkg/sms"
)

// WhenLayout is how lesson times read in messages.
const WhenLayout = "January 02, 2006 at 03:04 PM"

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	// Deliver sends the event to the student over every channel and records
	// one NotificationLog row per channel.
	Deliver(ctx context.Context, e Event) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type notificationService struct {
	db     *gorm.DB
	sms    sms.Sender
	mail   email.Sender
	loc    *time.Location
	logger *slog.Logger
}

func New(db *gorm.DB, smsSender sms.Sender, mail email.Sender, loc *time.Location, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &notificationService{
		db:     db,
		sms:    smsSender,
		mail:   mail,
		loc:    loc,
		logger: logger.With("service", "notification"),
	}
}

func (s *notificationService) Deliver(ctx context.Context, e Event) error {
	if !e.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, e.Type)
	}

	db := s.db.WithContext(ctx)

	var appt model.Appointment
	err := db.Preload("Student.User").Preload("Instructor.User").
		First(&appt, "id = ?", e.AppointmentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAppointmentNotFound
	}
	if err != nil {
		return fmt.Errorf("load appointment: %w", err)
	}

	when := e.ScheduledTime
	if when.IsZero() {
		when = appt.ScheduledTime
	}
	data := email.LessonEmailData{
		StudentName:    appt.Student.User.FullName(),
		InstructorName: appt.Instructor.Name(),
		When:           when.In(s.loc).Format(WhenLayout),
	}
	data.To = appt.Student.User.Email

	payload, _ := json.Marshal(e)

	var errs []error
	errs = append(errs, s.record(db, e, model.ChannelEmail, data.To, payload, s.sendEmail(ctx, e.Type, data)))
	errs = append(errs, s.record(db, e, model.ChannelSMS, appt.Student.Phone, payload, s.sendSMS(ctx, e.Type, appt.Student.Phone, data)))
	return errors.Join(errs...)
}

var errSkipped = errors.New("channel disabled")

func (s *notificationService) sendEmail(ctx context.Context, t EventType, d email.LessonEmailData) error {
	if s.mail == nil || !s.mail.Enabled() || d.To == "" {
		return errSkipped
	}
	var msg email.Message
	switch t {
	case EventBooked:
		msg = email.BuildLessonBookedEmail(d)
	case EventCancelled:
		msg = email.BuildLessonCancelledEmail(d)
	case EventRescheduled:
		msg = email.BuildLessonRescheduledEmail(d)
	}
	return s.mail.Send(ctx, msg)
}

func (s *notificationService) sendSMS(ctx context.Context, t EventType, phone string, d email.LessonEmailData) error {
	if s.sms == nil || !s.sms.IsEnabled() || phone == "" {
		return errSkipped
	}
	notice := map[EventType]sms.Notice{
		EventBooked:      sms.NoticeLessonBooked,
		EventCancelled:   sms.NoticeLessonCancelled,
		EventRescheduled: sms.NoticeLessonRescheduled,
	}[t]
	return s.sms.SendNotice(ctx, phone, notice, map[string]string{
		"name":       d.StudentName,
		"instructor": d.InstructorName,
		"time":       d.When,
	})
}

// record writes the delivery outcome and returns sendErr unless the channel
// was skipped.
func (s *notificationService) record(db *gorm.DB, e Event, ch model.NotificationChannel, to string, payload []byte, sendErr error) error {
	row := &model.NotificationLog{
		Event:     string(e.Type),
		Channel:   ch,
		Recipient: to,
		Status:    model.DeliverySent,
		Payload:   datatypes.JSON(payload),
	}
	switch {
	case errors.Is(sendErr, errSkipped):
		row.Status = model.DeliverySkipped
		sendErr = nil
	case sendErr != nil:
		row.Status = model.DeliveryFailed
		row.Error = sendErr.Error()
		s.logger.Warn("notification failed", "event", e.Type, "channel", ch, "error", sendErr)
	}
	if err := db.Create(row).Error; err != nil {
		return errors.Join(sendErr, fmt.Errorf("write notification log: %w", err))
	}
	return sendErr
}
