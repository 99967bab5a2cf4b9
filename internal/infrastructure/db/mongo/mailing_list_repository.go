package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
)

const collectionMailingList = "mailing_list_subscribers"

type MailingListRepository struct {
	col *mongo.Collection
}

func NewMailingListRepository(db *mongo.Database) *MailingListRepository {
	return &MailingListRepository{col: db.Collection(collectionMailingList)}
}

func (r *MailingListRepository) Create(ctx context.Context, s *domain.MailingListSubscriber) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, s); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadySubscribed
		}
		return fmt.Errorf("insert subscriber: %w", err)
	}
	return nil
}

func (r *MailingListRepository) FindAll(ctx context.Context) ([]*domain.MailingListSubscriber, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find subscribers: %w", err)
	}
	return decodeAll[domain.MailingListSubscriber](ctx, cur)
}

func (r *MailingListRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
