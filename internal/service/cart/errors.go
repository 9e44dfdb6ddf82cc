package cart

import "github.com/Alijeyrad/drivingschool_backend/internal/apperr"

var (
	ErrPlanNotFound = apperr.NotFound("lesson plan not found")
	ErrItemNotFound = apperr.NotFound("item not in cart")
	ErrCartNotFound = apperr.NotFound("cart not found")
)
