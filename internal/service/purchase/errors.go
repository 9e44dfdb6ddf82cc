package purchase

import "github.com/Alijeyrad/drivingschool_backend/internal/apperr"

var (
	ErrEmptyCart        = apperr.PolicyViolation("your cart is empty")
	ErrPlanNotFound     = apperr.NotFound("lesson plan not found")
	ErrPurchaseNotFound = apperr.NotFound("purchase not found")
	ErrAlreadySettled   = apperr.StateConflict("purchase is no longer pending")
	ErrPaymentDeclined  = apperr.PolicyViolation("payment was declined")
	ErrInvalidStatus    = apperr.Validation("unknown payment status")
)
