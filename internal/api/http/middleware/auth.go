package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/drivingschool_backend/internal/principal"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/account"
	pasetotoken "github.com/Alijeyrad/drivingschool_backend/pkg/paseto"
	"github.com/Alijeyrad/drivingschool_backend/pkg/reqctx"
)

const (
	LocalClaims    = "auth_claims"
	LocalPrincipal = "principal"
)

// AuthRequired validates a Bearer PASETO access token and checks that its
// session is still live. On success the claims are stored in locals and in
// the request context.
func AuthRequired(mgr *pasetotoken.Manager, accounts account.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		claims, ok := bearerClaims(c, mgr)
		if !ok {
			return fiber.ErrUnauthorized
		}

		if claims.SessionID != nil {
			if err := accounts.ValidateSession(c.Context(), *claims.SessionID, claims.UserID); err != nil {
				return fiber.ErrUnauthorized
			}
		}

		c.Locals(LocalClaims, claims)
		c.SetContext(reqctx.WithClaims(c.Context(), claims))
		return c.Next()
	}
}

func bearerClaims(c fiber.Ctx, mgr *pasetotoken.Manager) (*pasetotoken.Claims, bool) {
	h := c.Get("Authorization")
	if h == "" {
		return nil, false
	}

	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, false
	}

	claims, err := mgr.Verify(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, false
	}

	// Only access tokens are accepted on protected routes
	if claims.Type != pasetotoken.TokenTypeAccess {
		return nil, false
	}
	return claims, true
}

// ResolvePrincipal turns the authenticated user into a Principal. Requests
// without claims get the anonymous principal, so it can also sit on public
// routes behind OptionalAuth.
func ResolvePrincipal(accounts account.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		p := principal.AnonymousPrincipal()
		if claims, ok := ClaimsFromFiber(c); ok {
			resolved, err := accounts.Resolve(c.Context(), claims.UserID)
			if err != nil {
				return fiber.ErrUnauthorized
			}
			p = resolved
		}

		c.Locals(LocalPrincipal, p)
		c.SetContext(principal.With(c.Context(), p))
		return c.Next()
	}
}

// OptionalAuth stores claims when a valid token is present and lets the
// request through either way.
func OptionalAuth(mgr *pasetotoken.Manager, accounts account.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		claims, ok := bearerClaims(c, mgr)
		if ok && claims.SessionID != nil {
			ok = accounts.ValidateSession(c.Context(), *claims.SessionID, claims.UserID) == nil
		}
		if ok {
			c.Locals(LocalClaims, claims)
			c.SetContext(reqctx.WithClaims(c.Context(), claims))
		}
		return c.Next()
	}
}

func ClaimsFromFiber(c fiber.Ctx) (*pasetotoken.Claims, bool) {
	claims, ok := c.Locals(LocalClaims).(*pasetotoken.Claims)
	return claims, ok && claims != nil
}

// PrincipalFromFiber returns the anonymous principal when none was resolved.
func PrincipalFromFiber(c fiber.Ctx) principal.Principal {
	if p, ok := c.Locals(LocalPrincipal).(principal.Principal); ok {
		return p
	}
	return principal.AnonymousPrincipal()
}
