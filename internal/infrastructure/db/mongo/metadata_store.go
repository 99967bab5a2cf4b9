package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
)

// MetadataStore writes metadata arrays with $addToSet/$pullAll over many
// documents at once. Each call is a single UpdateMany and is atomic per
// document only.
type MetadataStore struct {
	db *mongo.Database
}

func NewMetadataStore(db *mongo.Database) *MetadataStore {
	return &MetadataStore{db: db}
}

func (s *MetadataStore) AddToSet(ctx context.Context, target domain.MetadataTarget, docIDs, values []primitive.ObjectID) error {
	return s.updateMany(ctx, target, docIDs, bson.M{
		"$addToSet": bson.M{target.Field: bson.M{"$each": values}},
	})
}

func (s *MetadataStore) PullAll(ctx context.Context, target domain.MetadataTarget, docIDs, values []primitive.ObjectID) error {
	return s.updateMany(ctx, target, docIDs, bson.M{
		"$pullAll": bson.M{target.Field: values},
	})
}

func (s *MetadataStore) updateMany(ctx context.Context, target domain.MetadataTarget, docIDs []primitive.ObjectID, update bson.M) error {
	if len(docIDs) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.db.Collection(target.Collection).UpdateMany(ctx, metadataFilter(target, docIDs), update); err != nil {
		return fmt.Errorf("update %s.%s: %w", target.Collection, target.Field, err)
	}
	return nil
}

// metadataFilter restricts user updates to the roles owning the field, so a
// role never gains an array its shape does not define.
func metadataFilter(target domain.MetadataTarget, docIDs []primitive.ObjectID) bson.M {
	filter := bson.M{"_id": bson.M{"$in": docIDs}}
	if len(target.Roles) > 0 {
		roles := make([]string, 0, len(target.Roles))
		for _, r := range target.Roles {
			roles = append(roles, string(r))
		}
		filter["role"] = bson.M{"$in": roles}
	}
	return filter
}
