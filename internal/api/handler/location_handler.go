package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
	"github.com/omerdemirkan/stem-bound-api/internal/core/ports"
)

type LocationHandler struct {
	locations ports.LocationService
}

func NewLocationHandler(locations ports.LocationService) *LocationHandler {
	return &LocationHandler{locations: locations}
}

// Search handles GET /v1/locations?text=.
//
// @Summary      Search locations
// @Tags         locations
// @Produce      json
// @Param        text  query     string  true  "City, state or zip"
// @Success      200   {object}  response{data=[]domain.ZipLocation}
// @Failure      400   {object}  errorResponse
// @Router       /v1/locations [get]
func (h *LocationHandler) Search(c echo.Context) error {
	text := strings.TrimSpace(c.QueryParam("text"))
	if text == "" {
		return domain.BadRequest("text is required")
	}
	locations, err := h.locations.FindLocationsByText(c.Request().Context(), text)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Locations fetched successfully", locations)
}

// GetByZip handles GET /v1/locations/:zip.
//
// @Summary      Location of a zip code
// @Tags         locations
// @Produce      json
// @Param        zip  path      string  true  "Zip code"
// @Success      200  {object}  response{data=domain.ZipLocation}
// @Failure      404  {object}  errorResponse
// @Router       /v1/locations/{zip} [get]
func (h *LocationHandler) GetByZip(c echo.Context) error {
	loc, err := h.locations.FindLocationByZip(c.Request().Context(), c.Param("zip"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Location fetched successfully", loc)
}
