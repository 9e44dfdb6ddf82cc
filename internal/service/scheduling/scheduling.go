package scheduling

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Alijeyrad/drivingschool_backend/config"
	"github.com/Alijeyrad/drivingschool_backend/internal/model"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// ---------------------------------------------------------------------------
// Config
// ---------------------------------------------------------------------------

// Config describes the lesson calendar. Slots start on the hour from
// FirstHour to LastHour inclusive, in Location.
type Config struct {
	Location     *time.Location
	FirstHour    int
	LastHour     int
	CancelWindow time.Duration
}

func DefaultConfig() Config {
	return Config{
		Location:     time.UTC,
		FirstHour:    9,
		LastHour:     17,
		CancelWindow: 24 * time.Hour,
	}
}

// ConfigFrom fills unset fields of the booking section with defaults.
func ConfigFrom(b config.BookingConfig) Config {
	cfg := DefaultConfig()
	cfg.Location = b.Location()
	if b.FirstSlotHour > 0 || b.LastSlotHour > 0 {
		cfg.FirstHour = b.FirstSlotHour
		cfg.LastHour = b.LastSlotHour
	}
	if b.CancelWindowHours > 0 {
		cfg.CancelWindow = time.Duration(b.CancelWindowHours) * time.Hour
	}
	return cfg
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type SlotAvailability struct {
	InstructorID   uuid.UUID `json:"instructor_id"`
	InstructorName string    `json:"instructor_name"`
	Date           string    `json:"date"`
	AvailableSlots []string  `json:"available_slots"`
	BookedSlots    []string  `json:"booked_slots"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	// AvailableSlots lists the free slot labels of an available instructor on
	// a school-local calendar date.
	AvailableSlots(ctx context.Context, instructorID uuid.UUID, date string) (*SlotAvailability, error)

	// ParseSlot turns a date and a slot label into an instant.
	ParseSlot(date, clock string) (time.Time, error)

	Labels() []string
	Now() time.Time
	CancelWindow() time.Duration
	Location() *time.Location
}

type Option func(*schedulingService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *schedulingService) { s.now = now }
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type schedulingService struct {
	db     *gorm.DB
	cfg    Config
	labels []string
	now    func() time.Time
}

func New(db *gorm.DB, cfg Config, opts ...Option) Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	s := &schedulingService{db: db, cfg: cfg, now: time.Now}
	for h := cfg.FirstHour; h <= cfg.LastHour; h++ {
		s.labels = append(s.labels, fmt.Sprintf("%02d:00", h))
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *schedulingService) Labels() []string            { return slices.Clone(s.labels) }
func (s *schedulingService) Now() time.Time              { return s.now() }
func (s *schedulingService) CancelWindow() time.Duration { return s.cfg.CancelWindow }
func (s *schedulingService) Location() *time.Location    { return s.cfg.Location }

func (s *schedulingService) ParseSlot(date, clock string) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, date, s.cfg.Location)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	tod, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return time.Time{}, ErrInvalidTime
	}
	if !slices.Contains(s.labels, tod.Format(ClockLayout)) {
		return time.Time{}, ErrNotASlot
	}
	return time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), 0, 0, s.cfg.Location), nil
}

func (s *schedulingService) AvailableSlots(ctx context.Context, instructorID uuid.UUID, date string) (*SlotAvailability, error) {
	day, err := time.ParseInLocation(DateLayout, date, s.cfg.Location)
	if err != nil {
		return nil, ErrInvalidDate
	}

	db := s.db.WithContext(ctx)

	var in model.Instructor
	err = db.Preload("User").
		Where("id = ? AND is_available = ?", instructorID, true).
		First(&in).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInstructorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load instructor: %w", err)
	}

	from := day.UTC()
	to := day.AddDate(0, 0, 1).UTC()

	var times []time.Time
	err = db.Model(&model.Appointment{}).
		Where("instructor_id = ? AND status = ? AND scheduled_time >= ? AND scheduled_time < ?",
			instructorID, model.StatusScheduled, from, to).
		Order("scheduled_time").
		Pluck("scheduled_time", &times).Error
	if err != nil {
		return nil, fmt.Errorf("list booked slots: %w", err)
	}

	booked := make([]string, 0, len(times))
	for _, t := range times {
		booked = append(booked, t.In(s.cfg.Location).Format(ClockLayout))
	}

	now := s.now().In(s.cfg.Location)
	today := now.Format(DateLayout) == day.Format(DateLayout)

	available := make([]string, 0, len(s.labels))
	for _, label := range s.labels {
		if slices.Contains(booked, label) {
			continue
		}
		if today {
			at, _ := s.ParseSlot(date, label)
			if !at.After(now) {
				continue
			}
		}
		available = append(available, label)
	}

	return &SlotAvailability{
		InstructorID:   in.ID,
		InstructorName: in.Name(),
		Date:           date,
		AvailableSlots: available,
		BookedSlots:    booked,
	}, nil
}
