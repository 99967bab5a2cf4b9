package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
)

const collectionLocations = "locations"

type LocationRepository struct {
	col *mongo.Collection
}

func NewLocationRepository(db *mongo.Database) *LocationRepository {
	return &LocationRepository{col: db.Collection(collectionLocations)}
}

func (r *LocationRepository) FindByZip(ctx context.Context, zip string) (*domain.ZipLocation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var loc domain.ZipLocation
	if err := r.col.FindOne(ctx, bson.M{"zip": zip}).Decode(&loc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrLocationNotFound
		}
		return nil, fmt.Errorf("find location: %w", err)
	}
	return &loc, nil
}

// FindByText runs a text search ordered by relevance.
func (r *LocationRepository) FindByText(ctx context.Context, text string, limit int) ([]*domain.ZipLocation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	score := bson.M{"$meta": "textScore"}
	opts := options.Find().
		SetProjection(bson.M{"score": score}).
		SetSort(bson.D{{Key: "score", Value: score}}).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, bson.M{"$text": bson.M{"$search": text}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find locations: %w", err)
	}
	return decodeAll[domain.ZipLocation](ctx, cur)
}

func (r *LocationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "zip", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "city", Value: "text"}, {Key: "state", Value: "text"}, {Key: "zip", Value: "text"}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
