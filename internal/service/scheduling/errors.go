package scheduling

import "github.com/Alijeyrad/drivingschool_backend/internal/apperr"

var (
	ErrInstructorNotFound = apperr.NotFound("instructor not found or not available")
	ErrInvalidDate        = apperr.Validation("invalid date format, use YYYY-MM-DD")
	ErrInvalidTime        = apperr.Validation("invalid time format, use HH:MM")
	ErrNotASlot           = apperr.Validation("time is not one of the lesson slots")
)
