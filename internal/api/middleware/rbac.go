package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
)

// AllowedRoles enforces role-based access control. It must run after
// ExtractTokenPayload.
func AllowedRoles(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			payload, ok := PayloadFromContext(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Valid token not found.")
			}
			if _, ok := allowed[payload.User.Role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
			}
			return next(c)
		}
	}
}
