package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
	"github.com/omerdemirkan/stem-bound-api/internal/core/ports"
)

type SchoolRepository struct {
	col *mongo.Collection
}

func NewSchoolRepository(db *mongo.Database) *SchoolRepository {
	return &SchoolRepository{col: db.Collection(domain.CollectionSchools)}
}

func (r *SchoolRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.School, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var s domain.School
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSchoolNotFound
		}
		return nil, fmt.Errorf("find school: %w", err)
	}
	return &s, nil
}

func (r *SchoolRepository) Find(ctx context.Context, filter ports.SchoolFilter, page ports.Page) ([]*domain.School, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, schoolFilter(filter), findOptions(page))
	if err != nil {
		return nil, fmt.Errorf("find schools: %w", err)
	}
	return decodeAll[domain.School](ctx, cur)
}

func (r *SchoolRepository) FindNear(ctx context.Context, near ports.Near, filter ports.SchoolFilter, page ports.Page) ([]*domain.School, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, geoNearPipeline(near, schoolFilter(filter), page))
	if err != nil {
		return nil, fmt.Errorf("aggregate schools: %w", err)
	}
	return decodeAll[domain.School](ctx, cur)
}

func (r *SchoolRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: geoKey, Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "location.city", Value: "text"}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
