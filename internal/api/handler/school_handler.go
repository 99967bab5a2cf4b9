package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/omerdemirkan/stem-bound-api/internal/core/ports"
)

type SchoolHandler struct {
	schools ports.SchoolService
}

func NewSchoolHandler(schools ports.SchoolService) *SchoolHandler {
	return &SchoolHandler{schools: schools}
}

// List handles GET /v1/schools.
//
// @Summary      List schools
// @Tags         schools
// @Produce      json
// @Param        text   query     string  false  "Full text search"
// @Param        ids    query     string  false  "Comma separated ids"
// @Param        lat    query     number  false  "Latitude; with lng orders by distance"
// @Param        lng    query     number  false  "Longitude"
// @Param        skip   query     int     false  "Documents to skip"
// @Param        limit  query     int     false  "Page size"
// @Param        sort   query     string  false  "e.g. name"
// @Success      200    {object}  response{data=[]domain.School}
// @Failure      400    {object}  errorResponse
// @Router       /v1/schools [get]
func (h *SchoolHandler) List(c echo.Context) error {
	var (
		q   ports.SchoolQuery
		err error
	)
	q.Filter.Text = c.QueryParam("text")
	if q.Filter.IDs, err = idsQuery(c, "ids"); err != nil {
		return err
	}
	if q.Page, err = parsePage(c, schoolSortFields); err != nil {
		return err
	}
	if q.Near, err = parseNear(c); err != nil {
		return err
	}

	schools, err := h.schools.FindSchools(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Schools fetched successfully", schools)
}

// Get handles GET /v1/schools/:id.
//
// @Summary      Get a school
// @Tags         schools
// @Produce      json
// @Param        id   path      string  true  "School id"
// @Success      200  {object}  response{data=domain.School}
// @Failure      404  {object}  errorResponse
// @Router       /v1/schools/{id} [get]
func (h *SchoolHandler) Get(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	school, err := h.schools.FindSchoolByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "School fetched successfully", school)
}
