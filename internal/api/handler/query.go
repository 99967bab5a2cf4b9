package handler

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
	"github.com/omerdemirkan/stem-bound-api/internal/core/ports"
)

// sortable lists the fields a resource may be sorted by, keyed by the name
// clients use.
type sortable map[string]string

var (
	userSortFields = sortable{
		"firstName": "firstName",
		"lastName":  "lastName",
		"createdAt": "createdAt",
		"updatedAt": "updatedAt",
		"distance":  "distance.calculated",
	}
	courseSortFields = sortable{
		"title":     "title",
		"createdAt": "createdAt",
		"updatedAt": "updatedAt",
	}
	schoolSortFields = sortable{
		"name":     "name",
		"distance": "distance.calculated",
	}
	chatSortFields = sortable{
		"createdAt":         "createdAt",
		"updatedAt":         "updatedAt",
		"lastMessageSentAt": "lastMessageSentAt",
	}
	messageSortFields = sortable{
		"createdAt": "createdAt",
	}
)

// parsePage reads skip, limit and sort. sort is a comma separated list of
// field names, each optionally prefixed with "-" for descending order. The
// limit is left for the service to clamp.
func parsePage(c echo.Context, fields sortable) (ports.Page, error) {
	var page ports.Page

	skip, err := intQuery(c, "skip")
	if err != nil {
		return page, err
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		return page, err
	}
	page.Skip, page.Limit = skip, limit

	raw := c.QueryParam("sort")
	if raw == "" {
		return page, nil
	}
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		desc := strings.HasPrefix(name, "-")
		name = strings.TrimPrefix(name, "-")
		field, ok := fields[name]
		if !ok {
			return page, domain.BadRequest("cannot sort by %q", name)
		}
		page.Sort = append(page.Sort, ports.SortField{Field: field, Desc: desc})
	}
	return page, nil
}

func intQuery(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.BadRequest("%s must be a non-negative integer", name)
	}
	return n, nil
}

// parseNear reads lat and lng. Both or neither must be present.
func parseNear(c echo.Context) (*ports.Near, error) {
	rawLat, rawLng := c.QueryParam("lat"), c.QueryParam("lng")
	if rawLat == "" && rawLng == "" {
		return nil, nil
	}
	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, domain.BadRequest("lat must be a latitude")
	}
	lng, err := strconv.ParseFloat(rawLng, 64)
	if err != nil || lng < -180 || lng > 180 {
		return nil, domain.BadRequest("lng must be a longitude")
	}
	return &ports.Near{Point: domain.NewPoint(lng, lat)}, nil
}

func idParam(c echo.Context, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		return primitive.NilObjectID, domain.ErrInvalidID
	}
	return id, nil
}

// idQuery parses an optional id query parameter. Absent is the zero id.
func idQuery(c echo.Context, name string) (primitive.ObjectID, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return primitive.NilObjectID, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, domain.BadRequest("%s must be a valid id", name)
	}
	return id, nil
}

// idsQuery parses a comma separated id list.
func idsQuery(c echo.Context, name string) ([]primitive.ObjectID, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	return parseIDs(strings.Split(raw, ","), name)
}

func parseIDs(hexes []string, name string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(h))
		if err != nil {
			return nil, domain.BadRequest("%s must contain valid ids", name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func boolQuery(c echo.Context, name string) (bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, domain.BadRequest("%s must be a boolean", name)
	}
	return b, nil
}
