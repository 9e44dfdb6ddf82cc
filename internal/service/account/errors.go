package account

import "github.com/Alijeyrad/drivingschool_backend/internal/apperr"

var (
	ErrInvalidInput       = apperr.Validation("invalid input")
	ErrInvalidPhone       = apperr.Validation("invalid phone number")
	ErrUsernameTaken      = apperr.StateConflict("username already taken")
	ErrEmailTaken         = apperr.StateConflict("email already registered")
	ErrInvalidCredentials = apperr.Unauthorized("username/email or password is incorrect")
	ErrAccountInactive    = apperr.Forbidden("account is deactivated")
	ErrSessionNotFound    = apperr.Unauthorized("session not found or expired")
	ErrInvalidToken       = apperr.Unauthorized("invalid or expired token")
	ErrUserNotFound       = apperr.NotFound("user not found")
	ErrInstructorNotFound = apperr.NotFound("instructor not found")
	ErrNoProfile          = apperr.NotFound("no profile for this account")
	ErrAdminOnly          = apperr.Forbidden("only administrators can do this")
)
