package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no_show"
)

type LessonType string

const (
	LessonBeginner LessonType = "beginner"
	LessonTestPrep LessonType = "test_prep"
)

// appointments. An instructor holds at most one non-cancelled appointment
// per start time.
type Appointment struct {
	Base

	StudentID           uuid.UUID         `gorm:"type:uuid;not null;index" json:"student_id"`
	InstructorID        uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_appointments_active_slot,where:status <> 'cancelled'" json:"instructor_id"`
	PlanID              *uuid.UUID        `gorm:"type:uuid;index" json:"plan_id,omitempty"`
	ScheduledTime       time.Time         `gorm:"not null;uniqueIndex:idx_appointments_active_slot;index" json:"scheduled_time"`
	Status              AppointmentStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	CreditsUsed         int               `gorm:"not null;default:1" json:"credits_used"`
	LessonType          LessonType        `gorm:"type:varchar(16);not null" json:"lesson_type"`
	SpecialRequirements string            `gorm:"type:text" json:"special_requirements,omitempty"`
	Notes               string            `gorm:"type:text" json:"notes,omitempty"`
	CancelledAt         *time.Time        `json:"cancelled_at,omitempty"`
	CompletedAt         *time.Time        `json:"completed_at,omitempty"`

	Student    *Student    `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student,omitempty"`
	Instructor *Instructor `gorm:"foreignKey:InstructorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"instructor,omitempty"`
	Plan       *LessonPlan `gorm:"foreignKey:PlanID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"plan,omitempty"`
}
