package appointment

import (
	"github.com/Alijeyrad/drivingschool_backend/internal/apperr"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/credit"
)

var (
	ErrInvalidInput          = apperr.Validation("invalid appointment request")
	ErrNotFound              = apperr.NotFound("appointment not found")
	ErrInstructorNotFound    = apperr.NotFound("instructor not found")
	ErrInsufficientCredits   = credit.ErrInsufficientCredits
	ErrInstructorUnavailable = apperr.StateConflict("selected instructor is not available")
	ErrSlotConflict          = apperr.StateConflict("instructor not available at this time")
	ErrPastDateTime          = apperr.PolicyViolation("can't book in the past")
	ErrAlreadyCompleted      = apperr.StateConflict("appointment is already completed")
	ErrAlreadyCancelled      = apperr.StateConflict("appointment is already cancelled")
	ErrNotScheduled          = apperr.StateConflict("appointment is not scheduled")
	ErrCancelWindow          = apperr.PolicyViolation("appointments can only be cancelled more than 24 hours in advance")
	ErrRescheduleWindow      = apperr.PolicyViolation("appointments can only be rescheduled at least 24 hours in advance")
	ErrLessonNotStarted      = apperr.PolicyViolation("lesson has not started yet")
	ErrStudentOnly           = apperr.Forbidden("only students can do this")
	ErrInstructorOnly        = apperr.Forbidden("only instructors can do this")
)
