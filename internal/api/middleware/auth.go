package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
)

// PayloadKey is the echo context key holding the *domain.TokenPayload.
const PayloadKey = "payload"

// TokenParser verifies an access token.
type TokenParser interface {
	Parse(token string) (*domain.TokenPayload, error)
}

// ExtractTokenPayload verifies the bearer token and stores its payload in the
// context. A missing token is 401; a token that fails verification is 403.
func ExtractTokenPayload(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Valid token not found.")
			}

			payload, err := parser.Parse(token)
			if err != nil {
				c.Logger().Debugf("token rejected: %v", err)
				return echo.NewHTTPError(http.StatusForbidden, "Invalid or expired token.")
			}

			c.Set(PayloadKey, payload)
			return next(c)
		}
	}
}

// PayloadFromContext returns the payload stored by ExtractTokenPayload.
func PayloadFromContext(c echo.Context) (*domain.TokenPayload, bool) {
	p, ok := c.Get(PayloadKey).(*domain.TokenPayload)
	return p, ok && p != nil
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
