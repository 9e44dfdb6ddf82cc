package community

import "github.com/Alijeyrad/drivingschool_backend/internal/apperr"

var (
	ErrInvalidInput     = apperr.Validation("invalid input")
	ErrInvalidPhone     = apperr.Validation("invalid phone number")
	ErrCVRequired       = apperr.Validation("a CV file is required")
	ErrCVType           = apperr.Validation("CV must be a .pdf, .doc or .docx file")
	ErrCVTooLarge       = apperr.Validation("CV must be 5 MB or smaller")
	ErrUploadsDisabled  = apperr.New(apperr.KindInternal, "file uploads are not configured")
	ErrStudentOnly      = apperr.Forbidden("only students can do this")
	ErrAdminOnly        = apperr.Forbidden("only administrators can do this")
	ErrLoginRequired    = apperr.Unauthorized("login required")
	ErrSelfReferral     = apperr.Validation("you cannot refer yourself")
	ErrAlreadyReferred  = apperr.StateConflict("you already referred this email")
	ErrAlreadyMember    = apperr.StateConflict("this email already has an account")
	ErrGiftCardNotFound = apperr.NotFound("gift card not found")
	ErrGiftCardUsed     = apperr.StateConflict("gift card has already been used")
)
