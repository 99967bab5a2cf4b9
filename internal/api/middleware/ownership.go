package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// MatchParamIDToPayloadUserID lets a user act only on their own resource,
// identified by the path parameter param. Admin tokens pass.
func MatchParamIDToPayloadUserID(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			payload, ok := PayloadFromContext(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Valid token not found.")
			}
			if payload.IsAdmin() || c.Param(param) == payload.User.ID {
				return next(c)
			}
			return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
		}
	}
}
