package ports

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
)

// ChatFilter selects chats containing every id in Users. With Exact set the
// chat must contain no other members.
type ChatFilter struct {
	Users []primitive.ObjectID
	Exact bool
}

type CreateChatInput struct {
	Type       string
	Name       string
	PictureURL string
	Users      []primitive.ObjectID
}

type ChatRepository interface {
	Create(ctx context.Context, c *domain.Chat) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Chat, error)
	FindByPrivateKey(ctx context.Context, key string) (*domain.Chat, error)
	Find(ctx context.Context, filter ChatFilter, page Page) ([]*domain.Chat, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*domain.Chat, error)
	// RecordMessage bumps the message counter and last activity time.
	RecordMessage(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

type MessageRepository interface {
	Create(ctx context.Context, m *domain.Message) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Message, error)
	FindByChat(ctx context.Context, chatID primitive.ObjectID, page Page) ([]*domain.Message, error)
	// The mutating calls match on chat, message and author together and
	// report domain.ErrMessageNotFound when nothing matches.
	UpdateText(ctx context.Context, chatID, id, authorID primitive.ObjectID, text string) (*domain.Message, error)
	SetDeleted(ctx context.Context, chatID, id, authorID primitive.ObjectID, deleted bool) (*domain.Message, error)
	AddReader(ctx context.Context, chatID, id, userID primitive.ObjectID) (*domain.Message, error)
	DeleteByChat(ctx context.Context, chatID primitive.ObjectID) error
}

type ChatService interface {
	CreateChat(ctx context.Context, creatorID primitive.ObjectID, input CreateChatInput) (*domain.Chat, error)
	FindChats(ctx context.Context, filter ChatFilter, page Page) ([]*domain.Chat, error)
	FindChatByID(ctx context.Context, requesterID, id primitive.ObjectID) (*domain.Chat, error)
	DeleteChat(ctx context.Context, requesterID, id primitive.ObjectID) (*domain.Chat, error)

	FindMessages(ctx context.Context, requesterID, chatID primitive.ObjectID, page Page) (messages []*domain.Message, hasMore bool, err error)
	CreateMessage(ctx context.Context, requesterID, chatID primitive.ObjectID, text string) (*domain.Message, error)
	FindMessage(ctx context.Context, requesterID, chatID, id primitive.ObjectID) (*domain.Message, error)
	UpdateMessage(ctx context.Context, requesterID, chatID, id primitive.ObjectID, text string) (*domain.Message, error)
	SetMessageDeleted(ctx context.Context, requesterID, chatID, id primitive.ObjectID, deleted bool) (*domain.Message, error)
	MarkMessageRead(ctx context.Context, requesterID, chatID, id primitive.ObjectID) (*domain.Message, error)
}
