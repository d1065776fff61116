package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/condohub/property-service/internal/domain"
	apperrors "github.com/condohub/property-service/pkg/util/errorutil"
)

// RequireRole admits principals holding one of the allowed roles. It must run
// after AuthMiddleware.Handle.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.User.Role]; !exists {
			return apperrors.NewForbidden("role " + string(principal.User.Role) + " may not access this resource")
		}
		return c.Next()
	}
}

// RequireAnyRole admits any authenticated principal.
func RequireAnyRole() fiber.Handler {
	return RequireRole()
}
