package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
	"github.com/omerdemirkan/stem-bound-api/internal/core/ports"
)

type SchoolService struct {
	schools ports.SchoolRepository
	limits  ports.PageLimits
}

func NewSchoolService(schools ports.SchoolRepository, limits ports.PageLimits) *SchoolService {
	return &SchoolService{schools: schools, limits: limits}
}

func (s *SchoolService) FindSchools(ctx context.Context, q ports.SchoolQuery) ([]*domain.School, error) {
	if q.Near != nil {
		if q.Filter.Text != "" {
			return nil, domain.BadRequest("text search cannot be combined with coordinates")
		}
		return s.schools.FindNear(ctx, *q.Near, q.Filter, s.limits.Clamp(q.Page, true))
	}
	return s.schools.Find(ctx, q.Filter, s.limits.Clamp(q.Page, false))
}

func (s *SchoolService) FindSchoolByID(ctx context.Context, id primitive.ObjectID) (*domain.School, error) {
	return s.schools.FindByID(ctx, id)
}
