package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/portkey-logistics/portkey/internal/domain"
	apperrors "github.com/portkey-logistics/portkey/pkg/util"
)

// RequireRole ensures the principal's profile has one of the allowed roles.
func RequireRole(allowed ...domain.ProfileRole) fiber.Handler {
	allowedSet := make(map[domain.ProfileRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role()]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a principal was loaded by AuthMiddleware.
func RequireAuthenticated() fiber.Handler {
	return RequireRole()
}
