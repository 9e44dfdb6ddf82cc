package model

import "github.com/google/uuid"

type PackageType string

const (
	PackageStandard    PackageType = "standard"
	PackageSpecialized PackageType = "specialized"
)

// lesson_plans. Prices are in cents.
type LessonPlan struct {
	Base

	Name          string      `gorm:"type:varchar(100);not null" json:"name"`
	Slug          string      `gorm:"type:varchar(120);not null;uniqueIndex" json:"slug"`
	Hours         int         `gorm:"not null;check:chk_lesson_plans_hours,hours > 0" json:"hours"`
	Price         int64       `gorm:"not null;check:chk_lesson_plans_price,price >= 0" json:"price"`
	OriginalPrice *int64      `json:"original_price,omitempty"`
	PackageType   PackageType `gorm:"type:varchar(16);not null;default:'standard';index" json:"package_type"`
	IsPopular     bool        `gorm:"not null" json:"is_popular"`
	IncludesTest  bool        `gorm:"not null" json:"includes_test"`
	IsActive      bool        `gorm:"not null;index" json:"is_active"`
	DisplayOrder  int         `gorm:"not null;default:0" json:"display_order"`
	Description   string      `gorm:"type:text" json:"description"`

	Features []PlanFeature `gorm:"foreignKey:PlanID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"features,omitempty"`
}

// DiscountPercent is the saving against OriginalPrice, rounded down.
func (p *LessonPlan) DiscountPercent() int {
	if p.OriginalPrice == nil || *p.OriginalPrice <= p.Price || *p.OriginalPrice == 0 {
		return 0
	}
	return int((*p.OriginalPrice - p.Price) * 100 / *p.OriginalPrice)
}

// plan_features
type PlanFeature struct {
	Base

	PlanID      uuid.UUID `gorm:"type:uuid;not null;index" json:"plan_id"`
	FeatureText string    `gorm:"type:varchar(200);not null" json:"feature_text"`
	Order       int       `gorm:"column:sort_order;not null;default:0" json:"order"`
}
