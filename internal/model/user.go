package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// users
type User struct {
	Base

	Username     string     `gorm:"type:varchar(150);not null;uniqueIndex" json:"username"`
	Email        string     `gorm:"type:varchar(254);not null;uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	FirstName    string     `gorm:"type:varchar(150)" json:"first_name"`
	LastName     string     `gorm:"type:varchar(150)" json:"last_name"`
	Role         Role       `gorm:"type:varchar(16);not null;index" json:"role"`
	IsActive     bool       `gorm:"not null" json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// FullName falls back to the username when no name was given.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

const DefaultLicenseStatus = "Learner's Permit"

// students
type Student struct {
	Base

	UserID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Phone   string    `gorm:"type:varchar(20)" json:"phone"`
	Address string    `gorm:"type:text" json:"address"`
	// PermitNo holds the sealed permit number, never the plain text.
	PermitNo         string `gorm:"type:text" json:"-"`
	LicenseStatus    string `gorm:"type:varchar(50);not null" json:"license_status"`
	TotalCredits     int    `gorm:"not null;default:0;check:chk_students_total_credits,total_credits >= 0" json:"total_credits"`
	AvailableCredits int    `gorm:"not null;default:0;check:chk_students_available_credits,available_credits >= 0" json:"available_credits"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"`
}

// instructors
type Instructor struct {
	Base

	UserID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Phone           string    `gorm:"type:varchar(20)" json:"phone"`
	Bio             string    `gorm:"type:text" json:"bio"`
	ExperienceYears int       `gorm:"not null;default:2" json:"experience_years"`
	Rating          float64   `gorm:"not null;default:5" json:"rating"`
	IsAvailable     bool      `gorm:"not null;index" json:"is_available"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"`
}

// Name is the instructor's display name.
func (i *Instructor) Name() string {
	if i.User == nil {
		return ""
	}
	return i.User.FullName()
}
