package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
)

type errorBody struct {
	Message string `json:"message"`
}

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Message string    `json:"message"`
	Error   errorBody `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain error kinds to 400/401/403/404.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"message": ..., "error": {"message": ...}}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Message: msg, Error: errorBody{Message: msg}})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, middleware rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// A partially applied cascade is a server-side failure whatever its causes.
	var mue *domain.MetadataUpdateError
	if errors.As(err, &mue) {
		log.Error().
			Err(err).
			Str("operation", mue.Operation).
			Strs("applied", mue.Applied).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("metadata update failed")
		return http.StatusInternalServerError, "internal server error"
	}

	if code, ok := statusOf(err); ok {
		var de *domain.Error
		if errors.As(err, &de) {
			return code, de.Message
		}
		return code, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

func statusOf(err error) (int, bool) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest, true
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, true
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, true
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, true
	}
	return 0, false
}
