// Package community holds the public-facing side of the school: reviews,
// careers, the contact form, referrals and gift cards.
package community

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Alijeyrad/drivingschool_backend/internal/model"
	"github.com/Alijeyrad/drivingschool_backend/internal/principal"
	"github.com/Alijeyrad/drivingschool_backend/pkg/email"
	"github.com/Alijeyrad/drivingschool_backend/pkg/observability"
	"github.com/Alijeyrad/drivingschool_backend/pkg/s3"
	"github.com/Alijeyrad/drivingschool_backend/pkg/util/codes"
	"github.com/Alijeyrad/drivingschool_backend/pkg/util/phone"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type ReviewRequest struct {
	InstructorName string `json:"instructor_name" validate:"notblank,max=100"`
	Rating         int    `json:"rating" validate:"min=1,max=5"`
	Comment        string `json:"comment" validate:"notblank,max=5000"`
}

type JobApplicationRequest struct {
	FirstName string `json:"first_name" validate:"notblank,max=50"`
	LastName  string `json:"last_name" validate:"notblank,max=50"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
}

// CV is an uploaded résumé.
type CV struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type ContactRequest struct {
	Name    string `json:"name" validate:"notblank,max=100"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Message string `json:"message" validate:"notblank,max=5000"`
}

type ReferralRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

type IssueGiftCardRequest struct {
	// Value is in cents.
	Value   int64 `json:"value" validate:"min=0"`
	Credits int   `json:"credits" validate:"min=1,max=100"`
}

type GiftCardView struct {
	model.GiftCard
	DisplayCode string `json:"display_code"`
}

type RedeemResult struct {
	GiftCard         *GiftCardView `json:"gift_card"`
	CreditsAdded     int           `json:"credits_added"`
	AvailableCredits int           `json:"available_credits"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	SubmitReview(ctx context.Context, p principal.Principal, req ReviewRequest) (*model.Review, error)
	LatestReviews(ctx context.Context, n int) ([]model.Review, error)

	Apply(ctx context.Context, req JobApplicationRequest, cv *CV) (*model.JobApplication, error)
	ListApplications(ctx context.Context, p principal.Principal) ([]model.JobApplication, error)
	Contact(ctx context.Context, req ContactRequest) (*model.ContactMessage, error)

	Refer(ctx context.Context, p principal.Principal, req ReferralRequest) (*model.Referral, error)
	ListReferrals(ctx context.Context, p principal.Principal) ([]model.Referral, error)

	IssueGiftCard(ctx context.Context, p principal.Principal, req IssueGiftCardRequest) (*GiftCardView, error)
	RedeemGiftCard(ctx context.Context, p principal.Principal, code string) (*RedeemResult, error)
}

type Options struct {
	// Store keeps CV files. Without one, applications are refused.
	Store       s3.ObjectStore
	Mail        email.Sender
	Codes       *codes.Generator
	Metrics     *observability.BookingMetrics
	PhoneRegion string
	Logger      *slog.Logger
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type communityService struct {
	db      *gorm.DB
	store   s3.ObjectStore
	mail    email.Sender
	codes   *codes.Generator
	metrics *observability.BookingMetrics
	region  string
	now     func() time.Time
	logger  *slog.Logger
}

func New(db *gorm.DB, opts Options) Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Codes == nil {
		opts.Codes = codes.NewGenerator(codes.Config{})
	}
	if opts.PhoneRegion == "" {
		opts.PhoneRegion = phone.DefaultRegion
	}
	return &communityService{
		db:      db,
		store:   opts.Store,
		mail:    opts.Mail,
		codes:   opts.Codes,
		metrics: opts.Metrics,
		region:  opts.PhoneRegion,
		now:     time.Now,
		logger:  opts.Logger.With("service", "community"),
	}
}

// notifyAdmin sends m when email is on. Failures are logged only.
func (s *communityService) notifyAdmin(ctx context.Context, build func(admin string) email.Message) {
	if s.mail == nil || !s.mail.Enabled() || s.mail.AdminAddress() == "" {
		return
	}
	if err := s.mail.Send(ctx, build(s.mail.AdminAddress())); err != nil {
		s.logger.WarnContext(ctx, "admin email failed", "error", err)
	}
}

func userName(db *gorm.DB, userID uuid.UUID) (string, error) {
	var u model.User
	if err := db.Select("id", "username", "first_name", "last_name").First(&u, "id = ?", userID).Error; err != nil {
		return "", err
	}
	return u.FullName(), nil
}
