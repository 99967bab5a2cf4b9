package ports

import "github.com/omerdemirkan/stem-bound-api/internal/core/domain"

// SortField orders results by one document field.
type SortField struct {
	Field string
	Desc  bool
}

// Page is the skip/limit/sort window of a list query. Services clamp Limit
// before it reaches a repository.
type Page struct {
	Skip  int
	Limit int
	Sort  []SortField
}

// PageLimits bounds the size of list responses.
type PageLimits struct {
	Default int
	Max     int
	// GeoMax caps nearest-neighbour queries, which are allowed a larger window.
	GeoMax int
}

func DefaultPageLimits() PageLimits {
	return PageLimits{Default: 20, Max: 20, GeoMax: 50}
}

// Clamp applies the limits to p. A non-positive limit becomes the default.
func (l PageLimits) Clamp(p Page, geo bool) Page {
	maxLimit := l.Max
	if geo {
		maxLimit = l.GeoMax
	}
	if p.Limit <= 0 {
		p.Limit = l.Default
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Skip < 0 {
		p.Skip = 0
	}
	return p
}

// Near switches a list query to nearest-first ordering around Point.
type Near struct {
	Point domain.GeoPoint
}
