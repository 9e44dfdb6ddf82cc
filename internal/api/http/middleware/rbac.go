package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/drivingschool_backend/internal/principal"
	"github.com/Alijeyrad/drivingschool_backend/pkg/authorize"
)

// RoleOf maps a principal to its casbin role. Anonymous principals have none.
func RoleOf(p principal.Principal) (authorize.Role, bool) {
	switch p.Kind {
	case principal.Student:
		return authorize.RoleStudent, true
	case principal.Instructor:
		return authorize.RoleInstructor, true
	case principal.Admin:
		return authorize.RoleAdmin, true
	default:
		return "", false
	}
}

// RequirePermission checks the resolved principal's role against the policy
// table. It must run after ResolvePrincipal.
func RequirePermission(auth authorize.IAuthorization, resource authorize.Resource, action authorize.Action) fiber.Handler {
	return func(c fiber.Ctx) error {
		role, ok := RoleOf(PrincipalFromFiber(c))
		if !ok {
			return fiber.ErrUnauthorized
		}

		if err := auth.MustEnforce(c.Context(), role, resource, action); err != nil {
			if errors.Is(err, authorize.ErrForbidden) {
				return fiber.ErrForbidden
			}
			return err
		}

		return c.Next()
	}
}
