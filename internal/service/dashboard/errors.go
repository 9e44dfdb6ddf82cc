package dashboard

import "github.com/Alijeyrad/drivingschool_backend/internal/apperr"

var (
	ErrNoDashboard     = apperr.NotFound("no dashboard available for your account type")
	ErrStudentOnly     = apperr.Forbidden("only students have a student portal")
	ErrInstructorOnly  = apperr.Forbidden("only instructors have an instructor portal")
	ErrAdminOnly       = apperr.Forbidden("only administrators can view the admin dashboard")
	ErrProfileNotFound = apperr.NotFound("profile not found")
)
