package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/Alijeyrad/drivingschool_backend/internal/model"
	"github.com/Alijeyrad/drivingschool_backend/internal/principal"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/appointment"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/cart"
)

// PassRate is the advertised first-attempt pass rate.
const PassRate = "98%"

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type StudentDashboard struct {
	Student            *model.Student      `json:"student"`
	Appointments       []model.Appointment `json:"appointments"`
	Completed          int                 `json:"completed"`
	Total              int                 `json:"total"`
	Progress           float64             `json:"progress"`
	AvailableCredits   int                 `json:"available_credits"`
	Purchases          []model.Purchase    `json:"purchases"`
	CartItemsCount     int                 `json:"cart_items_count"`
	EligibleLessonType model.LessonType    `json:"eligible_lesson_type"`
	Instructors        []model.Instructor  `json:"instructors"`
}

type InstructorDashboard struct {
	Instructor   *model.Instructor   `json:"instructor"`
	Appointments []model.Appointment `json:"appointments"`
}

type AdminDashboard struct {
	Students     int64 `json:"students"`
	Instructors  int64 `json:"instructors"`
	Appointments int64 `json:"appointments"`
	Applications int64 `json:"applications"`
	// Revenue is in cents.
	Revenue int64 `json:"revenue"`
}

// Home holds exactly one portal, named by Portal.
type Home struct {
	Portal     string               `json:"portal"`
	Student    *StudentDashboard    `json:"student,omitempty"`
	Instructor *InstructorDashboard `json:"instructor,omitempty"`
	Admin      *AdminDashboard      `json:"admin,omitempty"`
}

type PublicStats struct {
	TotalStudents int64  `json:"total_students"`
	PassRate      string `json:"pass_rate"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Student(ctx context.Context, p principal.Principal) (*StudentDashboard, error)
	Instructor(ctx context.Context, p principal.Principal) (*InstructorDashboard, error)
	Admin(ctx context.Context, p principal.Principal) (*AdminDashboard, error)
	Home(ctx context.Context, p principal.Principal) (*Home, error)
	Public(ctx context.Context) (*PublicStats, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type dashboardService struct {
	db           *gorm.DB
	appointments appointment.Service
	carts        cart.Service
	logger       *slog.Logger
}

func New(db *gorm.DB, appointments appointment.Service, carts cart.Service, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &dashboardService{
		db:           db,
		appointments: appointments,
		carts:        carts,
		logger:       logger.With("service", "dashboard"),
	}
}

func (s *dashboardService) Student(ctx context.Context, p principal.Principal) (*StudentDashboard, error) {
	if !p.IsStudent() {
		return nil, ErrStudentOnly
	}
	db := s.db.WithContext(ctx)

	var st model.Student
	if err := db.Preload("User").First(&st, "id = ?", p.StudentID).Error; err != nil {
		return nil, notFound(err, "load student")
	}

	appts, err := s.appointments.ListForStudent(ctx, p)
	if err != nil {
		return nil, err
	}
	completed := 0
	for _, a := range appts {
		if a.Status == model.StatusCompleted {
			completed++
		}
	}

	var purchases []model.Purchase
	err = db.Preload("Plan").
		Where("student_id = ? AND payment_status = ?", st.ID, model.PaymentCompleted).
		Order("purchased_at DESC").
		Find(&purchases).Error
	if err != nil {
		return nil, fmt.Errorf("load purchases: %w", err)
	}

	count, err := s.carts.Count(ctx, st.ID)
	if err != nil {
		return nil, err
	}

	lessonType, _, err := appointment.EligibleLesson(db, st.ID)
	if err != nil {
		return nil, err
	}

	var instructors []model.Instructor
	if err := db.Preload("User").Where("is_available = ?", true).Find(&instructors).Error; err != nil {
		return nil, fmt.Errorf("load instructors: %w", err)
	}

	return &StudentDashboard{
		Student:            &st,
		Appointments:       appts,
		Completed:          completed,
		Total:              st.TotalCredits,
		Progress:           Progress(completed, st.TotalCredits),
		AvailableCredits:   st.AvailableCredits,
		Purchases:          purchases,
		CartItemsCount:     count,
		EligibleLessonType: lessonType,
		Instructors:        instructors,
	}, nil
}

// Progress is completed lessons as a percentage of all credits ever granted.
func Progress(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

func (s *dashboardService) Instructor(ctx context.Context, p principal.Principal) (*InstructorDashboard, error) {
	if !p.IsInstructor() {
		return nil, ErrInstructorOnly
	}

	var in model.Instructor
	if err := s.db.WithContext(ctx).Preload("User").First(&in, "id = ?", p.InstructorID).Error; err != nil {
		return nil, notFound(err, "load instructor")
	}
	appts, err := s.appointments.ListForInstructor(ctx, p)
	if err != nil {
		return nil, err
	}
	return &InstructorDashboard{Instructor: &in, Appointments: appts}, nil
}

func (s *dashboardService) Admin(ctx context.Context, p principal.Principal) (*AdminDashboard, error) {
	if !p.IsAdmin() {
		return nil, ErrAdminOnly
	}
	db := s.db.WithContext(ctx)

	var out AdminDashboard
	counts := []struct {
		model any
		dst   *int64
	}{
		{&model.Student{}, &out.Students},
		{&model.Instructor{}, &out.Instructors},
		{&model.Appointment{}, &out.Appointments},
		{&model.JobApplication{}, &out.Applications},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("count: %w", err)
		}
	}

	err := db.Model(&model.Appointment{}).
		Select("COALESCE(SUM(lesson_plans.price), 0)").
		Joins("JOIN lesson_plans ON lesson_plans.id = appointments.plan_id").
		Where("appointments.status = ?", model.StatusCompleted).
		Scan(&out.Revenue).Error
	if err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}
	return &out, nil
}

func (s *dashboardService) Home(ctx context.Context, p principal.Principal) (*Home, error) {
	switch {
	case p.IsStudent():
		d, err := s.Student(ctx, p)
		if err != nil {
			return nil, err
		}
		return &Home{Portal: "student", Student: d}, nil
	case p.IsInstructor():
		d, err := s.Instructor(ctx, p)
		if err != nil {
			return nil, err
		}
		return &Home{Portal: "instructor", Instructor: d}, nil
	case p.IsAdmin():
		d, err := s.Admin(ctx, p)
		if err != nil {
			return nil, err
		}
		return &Home{Portal: "admin", Admin: d}, nil
	default:
		return nil, ErrNoDashboard
	}
}

func (s *dashboardService) Public(ctx context.Context) (*PublicStats, error) {
	out := PublicStats{PassRate: PassRate}
	if err := s.db.WithContext(ctx).Model(&model.Student{}).Count(&out.TotalStudents).Error; err != nil {
		return nil, fmt.Errorf("count students: %w", err)
	}
	return &out, nil
}

func notFound(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProfileNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
