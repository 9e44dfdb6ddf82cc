package community

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Alijeyrad/drivingschool_backend/internal/model"
	"github.com/Alijeyrad/drivingschool_backend/internal/principal"
	"github.com/Alijeyrad/drivingschool_backend/pkg/validate"
)

// AboutPageReviews is how many reviews the about page shows.
const AboutPageReviews = 3

func (s *communityService) SubmitReview(ctx context.Context, p principal.Principal, req ReviewRequest) (*model.Review, error) {
	if !p.IsStudent() {
		return nil, ErrStudentOnly
	}
	if err := validate.Struct(req); err != nil {
		return nil, ErrInvalidInput.Wrap(err)
	}

	db := s.db.WithContext(ctx)
	name, err := userName(db, p.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLoginRequired
	}
	if err != nil {
		return nil, fmt.Errorf("load reviewer: %w", err)
	}

	r := &model.Review{
		StudentName:    name,
		InstructorName: strings.TrimSpace(req.InstructorName),
		Rating:         req.Rating,
		Comment:        strings.TrimSpace(req.Comment),
	}
	if err := db.Create(r).Error; err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	return r, nil
}

func (s *communityService) LatestReviews(ctx context.Context, n int) ([]model.Review, error) {
	if n <= 0 {
		n = AboutPageReviews
	}
	var out []model.Review
	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(n).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return out, nil
}
