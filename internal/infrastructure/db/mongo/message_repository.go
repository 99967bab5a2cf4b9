package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
	"github.com/omerdemirkan/stem-bound-api/internal/core/ports"
)

const collectionMessages = "messages"

type MessageRepository struct {
	col *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{col: db.Collection(collectionMessages)}
}

func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, m); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *MessageRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m domain.Message
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, fmt.Errorf("find message: %w", err)
	}
	return &m, nil
}

func (r *MessageRepository) FindByChat(ctx context.Context, chatID primitive.ObjectID, page ports.Page) ([]*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"meta.chat": chatID}, findOptions(page))
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	return decodeAll[domain.Message](ctx, cur)
}

func (r *MessageRepository) UpdateText(ctx context.Context, chatID, id, authorID primitive.ObjectID, text string) (*domain.Message, error) {
	return r.update(ctx, authoredBy(chatID, id, authorID), bson.M{
		"$set": bson.M{"text": text, "isEdited": true, "updatedAt": time.Now().UTC()},
	})
}

func (r *MessageRepository) SetDeleted(ctx context.Context, chatID, id, authorID primitive.ObjectID, deleted bool) (*domain.Message, error) {
	return r.update(ctx, authoredBy(chatID, id, authorID), bson.M{
		"$set": bson.M{"isDeleted": deleted, "updatedAt": time.Now().UTC()},
	})
}

func (r *MessageRepository) AddReader(ctx context.Context, chatID, id, userID primitive.ObjectID) (*domain.Message, error) {
	return r.update(ctx, bson.M{"_id": id, "meta.chat": chatID}, bson.M{
		"$addToSet": bson.M{"meta.readBy": userID},
	})
}

func (r *MessageRepository) DeleteByChat(ctx context.Context, chatID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{"meta.chat": chatID}); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	return nil
}

func (r *MessageRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "meta.chat", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "meta.from", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *MessageRepository) update(ctx context.Context, filter, update bson.M) (*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var m domain.Message
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, fmt.Errorf("update message: %w", err)
	}
	return &m, nil
}

func authoredBy(chatID, id, authorID primitive.ObjectID) bson.M {
	return bson.M{"_id": id, "meta.chat": chatID, "meta.from": authorID}
}
