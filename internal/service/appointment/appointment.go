package appointment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Alijeyrad/drivingschool_backend/internal/apperr"
	"github.com/Alijeyrad/drivingschool_backend/internal/model"
	"github.com/Alijeyrad/drivingschool_backend/internal/principal"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/credit"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/notification"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/scheduling"
	"github.com/Alijeyrad/drivingschool_backend/pkg/observability"
	"github.com/Alijeyrad/drivingschool_backend/pkg/validate"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type BookRequest struct {
	InstructorID        uuid.UUID `json:"instructor_id" validate:"required"`
	Date                string    `json:"date" validate:"required,isodate"`
	Time                string    `json:"time" validate:"required,clock"`
	SpecialRequirements string    `json:"special_requirements" validate:"max=2000"`
}

type RescheduleRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id" validate:"required"`
	InstructorID  uuid.UUID `json:"instructor_id" validate:"required"`
	Date          string    `json:"new_date" validate:"required,isodate"`
	Time          string    `json:"new_time" validate:"required,clock"`
	Reason        string    `json:"reason" validate:"max=1000"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Book(ctx context.Context, p principal.Principal, req BookRequest) (*model.Appointment, error)
	Cancel(ctx context.Context, p principal.Principal, id uuid.UUID) (*model.Appointment, error)
	Reschedule(ctx context.Context, p principal.Principal, req RescheduleRequest) (*model.Appointment, error)

	// Complete moves a scheduled lesson of the calling instructor to
	// completed. Any other status is left as is.
	Complete(ctx context.Context, p principal.Principal, id uuid.UUID) (*model.Appointment, error)
	MarkNoShow(ctx context.Context, p principal.Principal, id uuid.UUID) (*model.Appointment, error)

	// ListForStudent is newest first, ListForInstructor oldest first.
	ListForStudent(ctx context.Context, p principal.Principal) ([]model.Appointment, error)
	ListForInstructor(ctx context.Context, p principal.Principal) ([]model.Appointment, error)
	Get(ctx context.Context, p principal.Principal, id uuid.UUID) (*model.Appointment, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type appointmentService struct {
	db        *gorm.DB
	schedule  scheduling.Service
	publisher notification.Publisher
	metrics   *observability.BookingMetrics
	logger    *slog.Logger
}

func New(db *gorm.DB, schedule scheduling.Service, publisher notification.Publisher, metrics *observability.BookingMetrics, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = notification.NopPublisher{}
	}
	return &appointmentService{
		db:        db,
		schedule:  schedule,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With("service", "appointment"),
	}
}

// ---------------------------------------------------------------------------
// Booking
// ---------------------------------------------------------------------------

func (s *appointmentService) Book(ctx context.Context, p principal.Principal, req BookRequest) (*model.Appointment, error) {
	if !p.IsStudent() {
		return nil, ErrStudentOnly
	}
	if err := validate.Struct(req); err != nil {
		return nil, s.reject(ctx, "book", ErrInvalidInput.Wrap(err))
	}
	at, err := s.schedule.ParseSlot(req.Date, req.Time)
	if err != nil {
		return nil, s.reject(ctx, "book", err)
	}
	if !at.After(s.schedule.Now()) {
		return nil, s.reject(ctx, "book", ErrPastDateTime)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("new appointment id: %w", err)
	}
	appt := &model.Appointment{
		Base:                model.Base{ID: id},
		StudentID:           p.StudentID,
		InstructorID:        req.InstructorID,
		ScheduledTime:       at.UTC(),
		Status:              model.StatusScheduled,
		CreditsUsed:         1,
		SpecialRequirements: strings.TrimSpace(req.SpecialRequirements),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := credit.Consume(tx, p.StudentID, appt.CreditsUsed, credit.Reference{Type: "appointment", ID: id}); err != nil {
			return err
		}
		if err := requireAvailable(tx, req.InstructorID); err != nil {
			return err
		}
		if err := ensureFree(tx, req.InstructorID, appt.ScheduledTime, uuid.Nil); err != nil {
			return err
		}

		lessonType, plan, err := EligibleLesson(tx, p.StudentID)
		if err != nil {
			return err
		}
		appt.LessonType = lessonType
		if plan != nil {
			appt.PlanID = &plan.ID
		}

		if err := tx.Create(appt).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrSlotConflict
			}
			return fmt.Errorf("create appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.reject(ctx, "book", err)
	}

	s.logger.Info("lesson booked", "appointment_id", appt.ID, "student_id", p.StudentID, "instructor_id", req.InstructorID, "at", appt.ScheduledTime)
	s.metrics.Event(ctx, "booked")
	s.publish(ctx, notification.EventBooked, appt)
	return s.load(ctx, appt.ID)
}

// EligibleLesson picks the lesson type and plan for a new booking from the
// student's completed purchases. A test-prep plan wins over any later one.
func EligibleLesson(db *gorm.DB, studentID uuid.UUID) (model.LessonType, *model.LessonPlan, error) {
	var purchases []model.Purchase
	err := db.Preload("Plan").
		Where("student_id = ? AND payment_status = ?", studentID, model.PaymentCompleted).
		Order("purchased_at DESC").
		Find(&purchases).Error
	if err != nil {
		return "", nil, fmt.Errorf("load purchases: %w", err)
	}
	for _, pu := range purchases {
		if pu.Plan != nil && pu.Plan.IncludesTest {
			return model.LessonTestPrep, pu.Plan, nil
		}
	}
	if len(purchases) > 0 {
		return model.LessonBeginner, purchases[0].Plan, nil
	}
	return model.LessonBeginner, nil, nil
}

// ---------------------------------------------------------------------------
// Cancel / reschedule
// ---------------------------------------------------------------------------

func (s *appointmentService) Cancel(ctx context.Context, p principal.Principal, id uuid.UUID) (*model.Appointment, error) {
	if !p.IsStudent() {
		return nil, ErrStudentOnly
	}

	var appt model.Appointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&appt, "id = ? AND student_id = ?", id, p.StudentID).Error; err != nil {
			return notFound(err)
		}
		if err := movable(appt.Status); err != nil {
			return err
		}
		now := s.schedule.Now()
		if appt.ScheduledTime.Sub(now) <= s.schedule.CancelWindow() {
			return ErrCancelWindow
		}

		cancelledAt := now.UTC()
		res := tx.Model(&model.Appointment{}).
			Where("id = ? AND status = ?", appt.ID, model.StatusScheduled).
			Updates(map[string]any{"status": model.StatusCancelled, "cancelled_at": cancelledAt})
		if res.Error != nil {
			return fmt.Errorf("cancel appointment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotScheduled
		}
		appt.Status = model.StatusCancelled
		appt.CancelledAt = &cancelledAt
		return nil
	})
	if err != nil {
		return nil, s.reject(ctx, "cancel", err)
	}

	s.logger.Info("lesson cancelled", "appointment_id", appt.ID, "student_id", p.StudentID)
	s.metrics.Event(ctx, "cancelled")
	s.publish(ctx, notification.EventCancelled, &appt)
	return s.load(ctx, appt.ID)
}

func (s *appointmentService) Reschedule(ctx context.Context, p principal.Principal, req RescheduleRequest) (*model.Appointment, error) {
	if !p.IsStudent() {
		return nil, ErrStudentOnly
	}
	if err := validate.Struct(req); err != nil {
		return nil, s.reject(ctx, "reschedule", ErrInvalidInput.Wrap(err))
	}
	at, err := s.schedule.ParseSlot(req.Date, req.Time)
	if err != nil {
		return nil, s.reject(ctx, "reschedule", err)
	}

	var appt model.Appointment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&appt, "id = ? AND student_id = ?", req.AppointmentID, p.StudentID).Error; err != nil {
			return notFound(err)
		}
		if err := movable(appt.Status); err != nil {
			return err
		}
		now := s.schedule.Now()
		if appt.ScheduledTime.Sub(now) < s.schedule.CancelWindow() {
			return ErrRescheduleWindow
		}
		if !at.After(now) {
			return ErrPastDateTime
		}
		if err := requireAvailable(tx, req.InstructorID); err != nil {
			return err
		}
		if err := ensureFree(tx, req.InstructorID, at.UTC(), appt.ID); err != nil {
			return err
		}

		updates := map[string]any{
			"scheduled_time": at.UTC(),
			"instructor_id":  req.InstructorID,
		}
		if reason := strings.TrimSpace(req.Reason); reason != "" {
			updates["notes"] = RescheduleNote(reason, appt.Notes)
		}
		res := tx.Model(&model.Appointment{}).
			Where("id = ? AND status = ?", appt.ID, model.StatusScheduled).
			Updates(updates)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return ErrSlotConflict
			}
			return fmt.Errorf("reschedule appointment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotScheduled
		}
		appt.ScheduledTime = at.UTC()
		appt.InstructorID = req.InstructorID
		return nil
	})
	if err != nil {
		return nil, s.reject(ctx, "reschedule", err)
	}

	s.logger.Info("lesson rescheduled", "appointment_id", appt.ID, "instructor_id", appt.InstructorID, "at", appt.ScheduledTime)
	s.metrics.Event(ctx, "rescheduled")
	s.publish(ctx, notification.EventRescheduled, &appt)
	return s.load(ctx, appt.ID)
}

// RescheduleNote prefixes the reason and keeps earlier notes after it.
func RescheduleNote(reason, previous string) string {
	note := "Rescheduled: " + reason
	if previous != "" {
		note += " | Previous notes: " + previous
	}
	return note
}

// ---------------------------------------------------------------------------
// Instructor transitions
// ---------------------------------------------------------------------------

func (s *appointmentService) Complete(ctx context.Context, p principal.Principal, id uuid.UUID) (*model.Appointment, error) {
	if !p.IsInstructor() {
		return nil, ErrInstructorOnly
	}
	db := s.db.WithContext(ctx)

	var appt model.Appointment
	if err := db.First(&appt, "id = ? AND instructor_id = ?", id, p.InstructorID).Error; err != nil {
		return nil, notFound(err)
	}
	if appt.Status != model.StatusScheduled {
		return s.load(ctx, appt.ID)
	}

	res := db.Model(&model.Appointment{}).
		Where("id = ? AND status = ?", appt.ID, model.StatusScheduled).
		Updates(map[string]any{"status": model.StatusCompleted, "completed_at": s.schedule.Now().UTC()})
	if res.Error != nil {
		return nil, fmt.Errorf("complete appointment: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		s.metrics.Event(ctx, "completed")
	}
	return s.load(ctx, appt.ID)
}

func (s *appointmentService) MarkNoShow(ctx context.Context, p principal.Principal, id uuid.UUID) (*model.Appointment, error) {
	if !p.IsInstructor() {
		return nil, ErrInstructorOnly
	}
	db := s.db.WithContext(ctx)

	var appt model.Appointment
	if err := db.First(&appt, "id = ? AND instructor_id = ?", id, p.InstructorID).Error; err != nil {
		return nil, notFound(err)
	}
	if appt.Status != model.StatusScheduled {
		return nil, s.reject(ctx, "no_show", ErrNotScheduled)
	}
	if appt.ScheduledTime.After(s.schedule.Now()) {
		return nil, s.reject(ctx, "no_show", ErrLessonNotStarted)
	}

	res := db.Model(&model.Appointment{}).
		Where("id = ? AND status = ?", appt.ID, model.StatusScheduled).
		Update("status", model.StatusNoShow)
	if res.Error != nil {
		return nil, fmt.Errorf("mark no-show: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotScheduled
	}
	s.metrics.Event(ctx, "no_show")
	return s.load(ctx, appt.ID)
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

func (s *appointmentService) ListForStudent(ctx context.Context, p principal.Principal) ([]model.Appointment, error) {
	if !p.IsStudent() {
		return nil, ErrStudentOnly
	}
	var out []model.Appointment
	err := s.db.WithContext(ctx).
		Preload("Instructor.User").Preload("Plan").
		Where("student_id = ?", p.StudentID).
		Order("scheduled_time DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list student appointments: %w", err)
	}
	return out, nil
}

func (s *appointmentService) ListForInstructor(ctx context.Context, p principal.Principal) ([]model.Appointment, error) {
	if !p.IsInstructor() {
		return nil, ErrInstructorOnly
	}
	var out []model.Appointment
	err := s.db.WithContext(ctx).
		Preload("Student.User").Preload("Plan").
		Where("instructor_id = ?", p.InstructorID).
		Order("scheduled_time ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list instructor appointments: %w", err)
	}
	return out, nil
}

func (s *appointmentService) Get(ctx context.Context, p principal.Principal, id uuid.UUID) (*model.Appointment, error) {
	q := s.db.WithContext(ctx).Where("id = ?", id)
	switch {
	case p.IsAdmin():
	case p.IsStudent():
		q = q.Where("student_id = ?", p.StudentID)
	case p.IsInstructor():
		q = q.Where("instructor_id = ?", p.InstructorID)
	default:
		return nil, ErrNotFound
	}

	var appt model.Appointment
	if err := q.Preload("Instructor.User").Preload("Student.User").Preload("Plan").First(&appt).Error; err != nil {
		return nil, notFound(err)
	}
	return &appt, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *appointmentService) load(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var appt model.Appointment
	err := s.db.WithContext(ctx).
		Preload("Instructor.User").Preload("Plan").
		First(&appt, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &appt, nil
}

func (s *appointmentService) publish(ctx context.Context, t notification.EventType, a *model.Appointment) {
	s.publisher.Publish(ctx, notification.Event{
		Type:          t,
		AppointmentID: a.ID,
		StudentID:     a.StudentID,
		InstructorID:  a.InstructorID,
		ScheduledTime: a.ScheduledTime,
	})
}

// reject counts domain refusals by kind and passes err through.
func (s *appointmentService) reject(ctx context.Context, op string, err error) error {
	if kind := apperr.KindOf(err); kind != apperr.KindInternal {
		s.metrics.Rejected(ctx, op, kind.String())
	}
	return err
}

func requireAvailable(tx *gorm.DB, instructorID uuid.UUID) error {
	var in model.Instructor
	err := tx.Select("id", "is_available").First(&in, "id = ?", instructorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInstructorNotFound
	}
	if err != nil {
		return fmt.Errorf("load instructor: %w", err)
	}
	if !in.IsAvailable {
		return ErrInstructorUnavailable
	}
	return nil
}

// ensureFree reports ErrSlotConflict when the instructor already holds a
// live appointment at that time. The appointment being moved is ignored.
func ensureFree(tx *gorm.DB, instructorID uuid.UUID, at time.Time, except uuid.UUID) error {
	q := tx.Model(&model.Appointment{}).
		Where("instructor_id = ? AND scheduled_time = ? AND status <> ?", instructorID, at, model.StatusCancelled)
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return fmt.Errorf("check slot: %w", err)
	}
	if n > 0 {
		return ErrSlotConflict
	}
	return nil
}

func movable(status model.AppointmentStatus) error {
	switch status {
	case model.StatusScheduled:
		return nil
	case model.StatusCompleted:
		return ErrAlreadyCompleted
	case model.StatusCancelled:
		return ErrAlreadyCancelled
	default:
		return ErrNotScheduled
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("load appointment: %w", err)
}
