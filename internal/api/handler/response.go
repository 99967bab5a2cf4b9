package handler

import (
	"github.com/labstack/echo/v4"
)

// response is the success envelope shared by every endpoint.
type response struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	HasMore *bool  `json:"hasMore,omitempty"`
}

func respond(c echo.Context, code int, message string, data any) error {
	return c.JSON(code, response{Message: message, Data: data})
}

func respondPage(c echo.Context, code int, message string, data any, hasMore bool) error {
	return c.JSON(code, response{Message: message, Data: data, HasMore: &hasMore})
}

// errorResponse documents the envelope rendered by the API error handler.
type errorResponse struct {
	Message string `json:"message"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
}
