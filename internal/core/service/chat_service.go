package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
	"github.com/omerdemirkan/stem-bound-api/internal/core/ports"
)

type ChatService struct {
	chats    ports.ChatRepository
	messages ports.MessageRepository
	users    ports.UserService
	metadata ports.MetadataService
	limits   ports.PageLimits
	metrics  ports.Recorder
	logger   zerolog.Logger
}

func NewChatService(
	chats ports.ChatRepository,
	messages ports.MessageRepository,
	users ports.UserService,
	metadata ports.MetadataService,
	limits ports.PageLimits,
	recorder ports.Recorder,
	logger zerolog.Logger,
) *ChatService {
	return &ChatService{
		chats:    chats,
		messages: messages,
		users:    users,
		metadata: metadata,
		limits:   limits,
		metrics:  recorder,
		logger:   logger,
	}
}

// CreateChat stores a chat whose member list must include its creator and
// only name existing users. A private chat between the same two users is
// created once; later requests get the existing chat back.
func (s *ChatService) CreateChat(ctx context.Context, creatorID primitive.ObjectID, in ports.CreateChatInput) (*domain.Chat, error) {
	chatType, err := domain.ParseChatType(in.Type)
	if err != nil {
		return nil, err
	}

	users := domain.UniqueIDs(in.Users)
	chat := &domain.Chat{
		Type:       chatType,
		Name:       in.Name,
		PictureURL: in.PictureURL,
		Meta:       domain.ChatMeta{Users: users, CreatedBy: creatorID},
	}
	if !chat.HasUser(creatorID) {
		return nil, domain.BadRequest("chat creator must be one of its users")
	}
	if len(users) < 2 {
		return nil, domain.BadRequest("a chat needs at least two users")
	}

	if chatType == domain.ChatPrivate {
		if len(users) != 2 {
			return nil, domain.BadRequest("a private chat has exactly two users")
		}
		chat.PrivateChatKey = domain.PrivateChatKey(users)
		existing, err := s.chats.FindByPrivateKey(ctx, chat.PrivateChatKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	if err := requireUsers(ctx, s.users, users, s.limits.Max); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	chat.CreatedAt = now
	chat.UpdatedAt = now
	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, err
	}
	s.logger.Info().Str("chat_id", chat.ID.Hex()).Str("type", string(chatType)).Int("users", len(users)).Msg("chat created")

	if err := s.metadata.OnChatCreated(ctx, chat); err != nil {
		return nil, fmt.Errorf("chat %s created: %w", chat.ID.Hex(), err)
	}
	return chat, nil
}

func (s *ChatService) FindChats(ctx context.Context, filter ports.ChatFilter, page ports.Page) ([]*domain.Chat, error) {
	if len(page.Sort) == 0 {
		page.Sort = []ports.SortField{{Field: "updatedAt", Desc: true}}
	}
	return s.chats.Find(ctx, filter, s.limits.Clamp(page, false))
}

func (s *ChatService) FindChatByID(ctx context.Context, requesterID, id primitive.ObjectID) (*domain.Chat, error) {
	return s.memberChat(ctx, requesterID, id)
}

// DeleteChat is reserved to the creator. Messages of the chat are removed
// with it.
func (s *ChatService) DeleteChat(ctx context.Context, requesterID, id primitive.ObjectID) (*domain.Chat, error) {
	chat, err := s.chats.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if chat.Meta.CreatedBy != requesterID {
		return nil, domain.Forbidden("only the creator can delete a chat")
	}

	deleted, err := s.chats.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.messages.DeleteByChat(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("chat_id", id.Hex()).Msg("failed to delete chat messages")
	}

	if err := s.metadata.OnChatDeleted(ctx, deleted); err != nil {
		return nil, fmt.Errorf("chat %s deleted: %w", id.Hex(), err)
	}
	return deleted, nil
}

// FindMessages returns a page of messages, newest first. hasMore reports
// whether another page exists.
func (s *ChatService) FindMessages(ctx context.Context, requesterID, chatID primitive.ObjectID, page ports.Page) ([]*domain.Message, bool, error) {
	if _, err := s.memberChat(ctx, requesterID, chatID); err != nil {
		return nil, false, err
	}

	page = s.limits.Clamp(page, false)
	if len(page.Sort) == 0 {
		page.Sort = []ports.SortField{{Field: "createdAt", Desc: true}}
	}
	limit := page.Limit
	page.Limit++

	messages, err := s.messages.FindByChat(ctx, chatID, page)
	if err != nil {
		return nil, false, err
	}
	if len(messages) > limit {
		return messages[:limit], true, nil
	}
	return messages, false, nil
}

func (s *ChatService) CreateMessage(ctx context.Context, requesterID, chatID primitive.ObjectID, text string) (*domain.Message, error) {
	if err := domain.ValidateMessageText(text); err != nil {
		return nil, err
	}
	if _, err := s.memberChat(ctx, requesterID, chatID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	msg := &domain.Message{
		Text: text,
		Meta: domain.MessageMeta{
			Chat:   chatID,
			From:   requesterID,
			ReadBy: []primitive.ObjectID{requesterID},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	s.metrics.MessageCreated()

	if err := s.chats.RecordMessage(ctx, chatID, now); err != nil {
		s.logger.Warn().Err(err).Str("chat_id", chatID.Hex()).Msg("failed to record chat activity")
	}
	return msg, nil
}

// FindMessage reports a message outside chatID as not found.
func (s *ChatService) FindMessage(ctx context.Context, requesterID, chatID, id primitive.ObjectID) (*domain.Message, error) {
	msg, err := s.messages.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg.Meta.Chat != chatID {
		return nil, domain.ErrMessageNotFound
	}
	if _, err := s.memberChat(ctx, requesterID, chatID); err != nil {
		return nil, err
	}
	return msg, nil
}

// UpdateMessage only matches messages authored by the requester.
func (s *ChatService) UpdateMessage(ctx context.Context, requesterID, chatID, id primitive.ObjectID, text string) (*domain.Message, error) {
	if err := domain.ValidateMessageText(text); err != nil {
		return nil, err
	}
	return s.messages.UpdateText(ctx, chatID, id, requesterID, text)
}

// SetMessageDeleted soft-deletes or restores a message of the requester.
func (s *ChatService) SetMessageDeleted(ctx context.Context, requesterID, chatID, id primitive.ObjectID, deleted bool) (*domain.Message, error) {
	return s.messages.SetDeleted(ctx, chatID, id, requesterID, deleted)
}

func (s *ChatService) MarkMessageRead(ctx context.Context, requesterID, chatID, id primitive.ObjectID) (*domain.Message, error) {
	if _, err := s.memberChat(ctx, requesterID, chatID); err != nil {
		return nil, err
	}
	return s.messages.AddReader(ctx, chatID, id, requesterID)
}

func (s *ChatService) memberChat(ctx context.Context, requesterID, chatID primitive.ObjectID) (*domain.Chat, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasUser(requesterID) {
		return nil, domain.Forbidden("you are not a member of this chat")
	}
	return chat, nil
}
