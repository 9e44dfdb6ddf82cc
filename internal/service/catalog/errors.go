package catalog

import "github.com/Alijeyrad/drivingschool_backend/internal/apperr"

var (
	ErrPlanNotFound     = apperr.NotFound("lesson plan not found")
	ErrInvalidPlan      = apperr.Validation("invalid lesson plan")
	ErrSlugTaken        = apperr.StateConflict("a plan with this slug already exists")
	ErrPlanHasPurchases = apperr.StateConflict("plan has purchases and cannot be deleted; deactivate it instead")
	ErrAdminOnly        = apperr.Forbidden("only administrators can manage plans")
)
