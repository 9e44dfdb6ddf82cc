package model

import (
	"time"

	"github.com/google/uuid"
)

// carts: one per student.
type Cart struct {
	Base

	StudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"student_id"`

	Student *Student   `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Items   []CartItem `gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"items,omitempty"`
}

// cart_items: a plan appears at most once per cart.
type CartItem struct {
	Base

	CartID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_plan" json:"cart_id"`
	PlanID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_plan;index" json:"plan_id"`
	AddedAt time.Time `gorm:"not null" json:"added_at"`

	Plan *LessonPlan `gorm:"foreignKey:PlanID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"plan,omitempty"`
}
