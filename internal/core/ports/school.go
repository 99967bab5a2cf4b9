package ports

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
)

type SchoolFilter struct {
	IDs  []primitive.ObjectID
	Text string
}

type SchoolQuery struct {
	Filter SchoolFilter
	Page   Page
	Near   *Near
}

// SchoolRepository is read-only; schools are reference data.
type SchoolRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.School, error)
	Find(ctx context.Context, filter SchoolFilter, page Page) ([]*domain.School, error)
	FindNear(ctx context.Context, near Near, filter SchoolFilter, page Page) ([]*domain.School, error)
}

type SchoolService interface {
	FindSchools(ctx context.Context, query SchoolQuery) ([]*domain.School, error)
	FindSchoolByID(ctx context.Context, id primitive.ObjectID) (*domain.School, error)
}
