package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// student_plan_purchases. CreditsGranted and Amount are snapshots taken when
// the purchase is created.
type Purchase struct {
	Base

	StudentID      uuid.UUID     `gorm:"type:uuid;not null;index" json:"student_id"`
	PlanID         uuid.UUID     `gorm:"type:uuid;not null;index" json:"plan_id"`
	CreditsGranted int           `gorm:"not null" json:"credits_granted"`
	Amount         int64         `gorm:"not null" json:"amount"`
	PaymentStatus  PaymentStatus `gorm:"type:varchar(16);not null;index" json:"payment_status"`
	PaymentID      string        `gorm:"type:varchar(100)" json:"payment_id,omitempty"`
	FailureReason  string        `gorm:"type:text" json:"failure_reason,omitempty"`
	PurchasedAt    time.Time     `gorm:"not null" json:"purchased_at"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`

	Student *Student    `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Plan    *LessonPlan `gorm:"foreignKey:PlanID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"plan,omitempty"`
}

func (Purchase) TableName() string { return "student_plan_purchases" }

type CreditKind string

const (
	CreditPurchase   CreditKind = "purchase"
	CreditBooking    CreditKind = "booking"
	CreditGiftCard   CreditKind = "gift_card"
	CreditAdjustment CreditKind = "adjustment"
)

// credit_transactions: append-only ledger of balance changes.
type CreditTransaction struct {
	Base

	StudentID             uuid.UUID  `gorm:"type:uuid;not null;index" json:"student_id"`
	Kind                  CreditKind `gorm:"type:varchar(16);not null" json:"kind"`
	DeltaAvailable        int        `gorm:"not null" json:"delta_available"`
	DeltaTotal            int        `gorm:"not null" json:"delta_total"`
	BalanceAvailableAfter int        `gorm:"not null" json:"balance_available_after"`
	BalanceTotalAfter     int        `gorm:"not null" json:"balance_total_after"`
	ReferenceType         string     `gorm:"type:varchar(32)" json:"reference_type,omitempty"`
	ReferenceID           *uuid.UUID `gorm:"type:uuid" json:"reference_id,omitempty"`

	Student *Student `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
