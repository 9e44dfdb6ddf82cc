package catalog

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Alijeyrad/drivingschool_backend/internal/model"
)

func cents(dollars int64) int64 { return dollars * 100 }

func ptr[T any](v T) *T { return &v }

// DefaultPlans is the stock pricing page. Original prices sit 25% above the
// selling price.
var DefaultPlans = []PlanInput{
	{
		Name: "Quick Start", Hours: 2, Price: cents(160), OriginalPrice: ptr(cents(200)),
		PackageType: model.PackageStandard, DisplayOrder: 1,
		Description: "Core maneuvers, expressway practice, pickup/drop-off",
		Features:    []string{"Core maneuvers", "Expressway practice", "Pickup and drop-off"},
	},
	{
		Name: "Momentum Drive", Hours: 4, Price: cents(300), OriginalPrice: ptr(cents(375)),
		PackageType: model.PackageStandard, DisplayOrder: 2,
		Description: "Foundational skills + advanced techniques",
		Features:    []string{"Foundational skills", "Advanced techniques", "Pickup and drop-off"},
	},
	{
		Name: "Confidence Cruise", Hours: 6, Price: cents(420), OriginalPrice: ptr(cents(525)),
		PackageType: model.PackageStandard, DisplayOrder: 3, IsPopular: true,
		Description: "Freeway driving, parking mastery, full support",
		Features:    []string{"Freeway driving", "Parking mastery", "Full instructor support"},
	},
	{
		Name: "Master the Road", Hours: 8, Price: cents(560), OriginalPrice: ptr(cents(700)),
		PackageType: model.PackageStandard, DisplayOrder: 4,
		Description: "Deep training, full skill set coverage",
		Features:    []string{"Deep training", "Full skill set coverage"},
	},
	{
		Name: "Driven to Succeed", Hours: 10, Price: cents(650), OriginalPrice: ptr(int64(81250)),
		PackageType: model.PackageStandard, DisplayOrder: 5,
		Description: "Comprehensive training, lifelong habits",
		Features:    []string{"Comprehensive training", "Lifelong safe driving habits"},
	},
	{
		Name: "Test Day Champion", Hours: 1, Price: cents(280), OriginalPrice: ptr(cents(350)),
		PackageType: model.PackageSpecialized, DisplayOrder: 1, IncludesTest: true,
		Description: "DMV prep, car use, pickup within 15 miles",
		Features:    []string{"DMV test preparation", "Use of school car for the test", "Pickup within 15 miles"},
	},
}

func (s *catalogService) SeedDefaults(ctx context.Context) (int, error) {
	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, in := range DefaultPlans {
			if err := normalize(&in); err != nil {
				return err
			}
			var n int64
			if err := tx.Model(&model.LessonPlan{}).Where("slug = ?", in.Slug).Count(&n).Error; err != nil {
				return fmt.Errorf("check plan %s: %w", in.Slug, err)
			}
			if n > 0 {
				continue
			}
			plan := &model.LessonPlan{IsActive: true}
			apply(plan, in)
			if err := tx.Create(plan).Error; err != nil {
				return fmt.Errorf("seed plan %s: %w", in.Slug, err)
			}
			if err := replaceFeatures(tx, plan.ID, in.Features); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "plans seeded", "created", created)
	return created, nil
}
