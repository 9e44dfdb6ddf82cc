package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Alijeyrad/drivingschool_backend/internal/model"
	"github.com/Alijeyrad/drivingschool_backend/internal/principal"
	"github.com/Alijeyrad/drivingschool_backend/pkg/validate"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type PlanInput struct {
	Name          string            `json:"name" validate:"notblank,max=100"`
	Slug          string            `json:"slug" validate:"omitempty,max=120"`
	Hours         int               `json:"hours" validate:"gt=0"`
	Price         int64             `json:"price" validate:"gte=0"`
	OriginalPrice *int64            `json:"original_price" validate:"omitempty,gte=0"`
	PackageType   model.PackageType `json:"package_type" validate:"omitempty,oneof=standard specialized"`
	IsPopular     bool              `json:"is_popular"`
	IncludesTest  bool              `json:"includes_test"`
	IsActive      *bool             `json:"is_active"`
	DisplayOrder  int               `json:"display_order"`
	Description   string            `json:"description"`
	// Features replaces the bullet list when non-nil.
	Features []string `json:"features" validate:"omitempty,dive,notblank,max=200"`
}

// PlanGroup is one section of the pricing page.
type PlanGroup struct {
	PackageType model.PackageType  `json:"package_type"`
	Plans       []model.LessonPlan `json:"plans"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	ListActive(ctx context.Context) ([]PlanGroup, error)
	Get(ctx context.Context, id uuid.UUID) (*model.LessonPlan, error)
	GetBySlug(ctx context.Context, slug string) (*model.LessonPlan, error)

	Create(ctx context.Context, p principal.Principal, in PlanInput) (*model.LessonPlan, error)
	Update(ctx context.Context, p principal.Principal, id uuid.UUID, in PlanInput) (*model.LessonPlan, error)
	Delete(ctx context.Context, p principal.Principal, id uuid.UUID) error

	// SeedDefaults inserts the stock plans that are missing by slug and
	// returns how many were created.
	SeedDefaults(ctx context.Context) (int, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type catalogService struct {
	db     *gorm.DB
	logger *slog.Logger
}

func New(db *gorm.DB, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &catalogService{db: db, logger: logger.With("service", "catalog")}
}

func withFeatures(db *gorm.DB) *gorm.DB {
	return db.Preload("Features", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("sort_order ASC")
	})
}

func (s *catalogService) ListActive(ctx context.Context) ([]PlanGroup, error) {
	var plans []model.LessonPlan
	err := withFeatures(s.db.WithContext(ctx)).
		Where("is_active = ?", true).
		Order("display_order ASC, name ASC").
		Find(&plans).Error
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}

	groups := []PlanGroup{
		{PackageType: model.PackageStandard, Plans: []model.LessonPlan{}},
		{PackageType: model.PackageSpecialized, Plans: []model.LessonPlan{}},
	}
	for _, p := range plans {
		i := 0
		if p.PackageType == model.PackageSpecialized {
			i = 1
		}
		groups[i].Plans = append(groups[i].Plans, p)
	}
	return groups, nil
}

func (s *catalogService) Get(ctx context.Context, id uuid.UUID) (*model.LessonPlan, error) {
	return s.first(withFeatures(s.db.WithContext(ctx)).Where("id = ?", id))
}

func (s *catalogService) GetBySlug(ctx context.Context, slug string) (*model.LessonPlan, error) {
	return s.first(withFeatures(s.db.WithContext(ctx)).Where("slug = ?", strings.ToLower(strings.TrimSpace(slug))))
}

func (s *catalogService) first(q *gorm.DB) (*model.LessonPlan, error) {
	var p model.LessonPlan
	if err := q.First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return &p, nil
}

// ---------------------------------------------------------------------------
// Admin
// ---------------------------------------------------------------------------

func (s *catalogService) Create(ctx context.Context, p principal.Principal, in PlanInput) (*model.LessonPlan, error) {
	if !p.IsAdmin() {
		return nil, ErrAdminOnly
	}
	if err := normalize(&in); err != nil {
		return nil, err
	}

	plan := &model.LessonPlan{IsActive: true}
	apply(plan, in)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkSlug(tx, plan.Slug, uuid.Nil); err != nil {
			return err
		}
		if err := tx.Create(plan).Error; err != nil {
			return mapWriteErr(err)
		}
		return replaceFeatures(tx, plan.ID, in.Features)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "plan created", "plan_id", plan.ID, "slug", plan.Slug)
	return s.Get(ctx, plan.ID)
}

func (s *catalogService) Update(ctx context.Context, p principal.Principal, id uuid.UUID, in PlanInput) (*model.LessonPlan, error) {
	if !p.IsAdmin() {
		return nil, ErrAdminOnly
	}
	if err := normalize(&in); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var plan model.LessonPlan
		if err := tx.First(&plan, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlanNotFound
			}
			return fmt.Errorf("get plan: %w", err)
		}
		if err := s.checkSlug(tx, in.Slug, id); err != nil {
			return err
		}

		apply(&plan, in)
		if err := tx.Omit(clause.Associations).Save(&plan).Error; err != nil {
			return mapWriteErr(err)
		}
		if in.Features != nil {
			return replaceFeatures(tx, plan.ID, in.Features)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a plan. Purchases keep their plan, so a purchased plan is
// refused; appointments lose the reference and cart items are dropped.
func (s *catalogService) Delete(ctx context.Context, p principal.Principal, id uuid.UUID) error {
	if !p.IsAdmin() {
		return ErrAdminOnly
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var plan model.LessonPlan
		if err := tx.Select("id").First(&plan, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlanNotFound
			}
			return fmt.Errorf("get plan: %w", err)
		}

		var purchases int64
		if err := tx.Model(&model.Purchase{}).Where("plan_id = ?", id).Count(&purchases).Error; err != nil {
			return fmt.Errorf("count purchases: %w", err)
		}
		if purchases > 0 {
			return ErrPlanHasPurchases
		}

		if err := tx.Model(&model.Appointment{}).Where("plan_id = ?", id).Update("plan_id", nil).Error; err != nil {
			return fmt.Errorf("detach appointments: %w", err)
		}
		if err := tx.Where("plan_id = ?", id).Delete(&model.CartItem{}).Error; err != nil {
			return fmt.Errorf("delete cart items: %w", err)
		}
		if err := tx.Where("plan_id = ?", id).Delete(&model.PlanFeature{}).Error; err != nil {
			return fmt.Errorf("delete features: %w", err)
		}
		if err := tx.Delete(&model.LessonPlan{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("delete plan: %w", err)
		}

		s.logger.InfoContext(ctx, "plan deleted", "plan_id", id)
		return nil
	})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases name and joins its words with dashes.
func Slugify(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

func normalize(in *PlanInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = Slugify(in.Slug)
	if in.Slug == "" {
		in.Slug = Slugify(in.Name)
	}
	if in.PackageType == "" {
		in.PackageType = model.PackageStandard
	}
	if err := validate.Struct(*in); err != nil {
		return ErrInvalidPlan.Wrap(err)
	}
	if in.Slug == "" {
		return ErrInvalidPlan
	}
	return nil
}

func apply(plan *model.LessonPlan, in PlanInput) {
	plan.Name = in.Name
	plan.Slug = in.Slug
	plan.Hours = in.Hours
	plan.Price = in.Price
	plan.OriginalPrice = in.OriginalPrice
	plan.PackageType = in.PackageType
	plan.IsPopular = in.IsPopular
	plan.IncludesTest = in.IncludesTest
	plan.DisplayOrder = in.DisplayOrder
	plan.Description = strings.TrimSpace(in.Description)
	if in.IsActive != nil {
		plan.IsActive = *in.IsActive
	}
}

func replaceFeatures(tx *gorm.DB, planID uuid.UUID, features []string) error {
	if err := tx.Where("plan_id = ?", planID).Delete(&model.PlanFeature{}).Error; err != nil {
		return fmt.Errorf("clear features: %w", err)
	}
	if len(features) == 0 {
		return nil
	}
	rows := make([]model.PlanFeature, 0, len(features))
	for i, f := range features {
		rows = append(rows, model.PlanFeature{PlanID: planID, FeatureText: strings.TrimSpace(f), Order: i + 1})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("create features: %w", err)
	}
	return nil
}

func (s *catalogService) checkSlug(tx *gorm.DB, slug string, self uuid.UUID) error {
	var n int64
	if err := tx.Model(&model.LessonPlan{}).Where("slug = ? AND id <> ?", slug, self).Count(&n).Error; err != nil {
		return fmt.Errorf("check slug: %w", err)
	}
	if n > 0 {
		return ErrSlugTaken
	}
	return nil
}

func mapWriteErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSlugTaken
	}
	return fmt.Errorf("save plan: %w", err)
}
