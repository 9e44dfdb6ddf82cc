package testutil

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Alijeyrad/drivingschool_backend/internal/model"
)

func newUser(t *testing.T, db *gorm.DB, username string, role model.Role) *model.User {
	t.Helper()
	if username == "" {
		username = string(role) + "_" + uuid.NewString()[:8]
	}
	u := &model.User{
		Username:     username,
		Email:        strings.ToLower(username) + "@example.com",
		PasswordHash: "x",
		FirstName:    strings.ToUpper(username[:1]) + username[1:],
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// Student creates a student with the given credits on both balances and an
// empty cart.
func Student(t *testing.T, db *gorm.DB, credits int) *model.Student {
	t.Helper()
	u := newUser(t, db, "", model.RoleStudent)
	s := &model.Student{
		UserID:           u.ID,
		LicenseStatus:    model.DefaultLicenseStatus,
		TotalCredits:     credits,
		AvailableCredits: credits,
	}
	require.NoError(t, db.Create(s).Error)
	require.NoError(t, db.Create(&model.Cart{StudentID: s.ID}).Error)
	s.User = u
	return s
}

func Instructor(t *testing.T, db *gorm.DB, username string, available bool) *model.Instructor {
	t.Helper()
	u := newUser(t, db, username, model.RoleInstructor)
	in := &model.Instructor{
		UserID:          u.ID,
		Bio:             "Patient and calm.",
		ExperienceYears: 5,
		Rating:          4.8,
		IsAvailable:     true,
	}
	require.NoError(t, db.Create(in).Error)
	if !available {
		require.NoError(t, db.Model(in).Update("is_available", false).Error)
		in.IsAvailable = false
	}
	in.User = u
	return in
}

func Admin(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()
	return newUser(t, db, "", model.RoleAdmin)
}

// Plan creates an active standard plan priced in cents.
func Plan(t *testing.T, db *gorm.DB, name string, hours int, price int64, includesTest bool) *model.LessonPlan {
	t.Helper()
	p := &model.LessonPlan{
		Name:         name,
		Slug:         strings.ReplaceAll(strings.ToLower(name), " ", "-"),
		Hours:        hours,
		Price:        price,
		PackageType:  model.PackageStandard,
		IncludesTest: includesTest,
		IsActive:     true,
	}
	if includesTest {
		p.PackageType = model.PackageSpecialized
	}
	require.NoError(t, db.Create(p).Error)
	return p
}
