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

type ChatRepository struct {
	col *mongo.Collection
}

func NewChatRepository(db *mongo.Database) *ChatRepository {
	return &ChatRepository{col: db.Collection(domain.CollectionChats)}
}

func (r *ChatRepository) Create(ctx context.Context, c *domain.Chat) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.BadRequest("a private chat between these users already exists")
		}
		return fmt.Errorf("insert chat: %w", err)
	}
	return nil
}

func (r *ChatRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Chat, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ChatRepository) FindByPrivateKey(ctx context.Context, key string) (*domain.Chat, error) {
	return r.findOne(ctx, bson.M{"privateChatKey": key})
}

func (r *ChatRepository) Find(ctx context.Context, filter ports.ChatFilter, page ports.Page) ([]*domain.Chat, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, chatFilter(filter), findOptions(page))
	if err != nil {
		return nil, fmt.Errorf("find chats: %w", err)
	}
	return decodeAll[domain.Chat](ctx, cur)
}

func (r *ChatRepository) Delete(ctx context.Context, id primitive.ObjectID) (*domain.Chat, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var c domain.Chat
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrChatNotFound
		}
		return nil, fmt.Errorf("delete chat: %w", err)
	}
	return &c, nil
}

func (r *ChatRepository) RecordMessage(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"numMessages": 1},
		"$set": bson.M{"lastMessageSentAt": at, "updatedAt": at},
	})
	if err != nil {
		return fmt.Errorf("record chat message: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrChatNotFound
	}
	return nil
}

func (r *ChatRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "meta.users", Value: 1}}},
		{
			Keys:    bson.D{{Key: "privateChatKey", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *ChatRepository) findOne(ctx context.Context, filter bson.M) (*domain.Chat, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var c domain.Chat
	if err := r.col.FindOne(ctx, filter).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrChatNotFound
		}
		return nil, fmt.Errorf("find chat: %w", err)
	}
	return &c, nil
}
