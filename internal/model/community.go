package model

import (
	"time"

	"github.com/google/uuid"
)

// reviews
type Review struct {
	Base

	StudentName    string `gorm:"type:varchar(100);not null" json:"student_name"`
	InstructorName string `gorm:"type:varchar(100);not null" json:"instructor_name"`
	Rating         int    `gorm:"not null;check:chk_reviews_rating,rating BETWEEN 1 AND 5" json:"rating"`
	Comment        string `gorm:"type:text;not null" json:"comment"`
}

// job_applications
type JobApplication struct {
	Base

	FirstName string    `gorm:"type:varchar(50);not null" json:"first_name"`
	LastName  string    `gorm:"type:varchar(50);not null" json:"last_name"`
	Email     string    `gorm:"type:varchar(254);not null" json:"email"`
	Phone     string    `gorm:"type:varchar(20)" json:"phone"`
	CVKey     string    `gorm:"type:varchar(255)" json:"cv_key,omitempty"`
	AppliedAt time.Time `gorm:"not null" json:"applied_at"`
}

// contact_messages
type ContactMessage struct {
	Base

	Name    string `gorm:"type:varchar(100);not null" json:"name"`
	Email   string `gorm:"type:varchar(254);not null" json:"email"`
	Message string `gorm:"type:text;not null" json:"message"`
}

// gift_cards. Code is stored upper-case without separators.
type GiftCard struct {
	Base

	Code    string     `gorm:"type:varchar(32);not null;uniqueIndex" json:"code"`
	Value   int64      `gorm:"not null" json:"value"`
	Credits int        `gorm:"not null" json:"credits"`
	IsUsed  bool       `gorm:"not null;index" json:"is_used"`
	UsedBy  *uuid.UUID `gorm:"type:uuid" json:"used_by,omitempty"`
	UsedAt  *time.Time `json:"used_at,omitempty"`

	User *User `gorm:"foreignKey:UsedBy;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
}

// referrals
type Referral struct {
	Base

	ReferrerID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_referrals_referrer_email" json:"referrer_id"`
	ReferredEmail string    `gorm:"type:varchar(254);not null;uniqueIndex:idx_referrals_referrer_email;index" json:"referred_email"`
	IsConverted   bool      `gorm:"not null" json:"is_converted"`

	Referrer *User `gorm:"foreignKey:ReferrerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
