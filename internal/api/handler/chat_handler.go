package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
	"github.com/omerdemirkan/stem-bound-api/internal/core/ports"
)

// ChatHandler serves /v1/chats and the messages of each chat.
type ChatHandler struct {
	chats ports.ChatService
}

func NewChatHandler(chats ports.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

type chatMetaRequest struct {
	Users []string `json:"users" validate:"required,min=2,dive,objectid"`
}

type createChatRequest struct {
	Type       string          `json:"type" validate:"required,oneof=PRIVATE GROUP"`
	Name       string          `json:"name" validate:"max=100"`
	PictureURL string          `json:"pictureUrl" validate:"omitempty,url"`
	Meta       chatMetaRequest `json:"meta"`
}

type messageRequest struct {
	Text string `json:"text" validate:"required"`
}

// List handles GET /v1/chats, the requester's own chats.
//
// @Summary      My chats
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Param        skip   query     int     false  "Documents to skip"
// @Param        limit  query     int     false  "Page size"
// @Param        sort   query     string  false  "e.g. -lastMessageSentAt"
// @Success      200    {object}  response{data=[]domain.Chat}
// @Router       /v1/chats [get]
func (h *ChatHandler) List(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	page, err := parsePage(c, chatSortFields)
	if err != nil {
		return err
	}
	chats, err := h.chats.FindChats(c.Request().Context(), ports.ChatFilter{Users: []primitive.ObjectID{userID}}, page)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Chats fetched successfully", chats)
}

// Create handles POST /v1/chats. A private chat that already exists is
// returned as is.
//
// @Summary      Create a chat
// @Tags         chats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createChatRequest  true  "New chat"
// @Success      201   {object}  response{data=domain.Chat}
// @Failure      400   {object}  errorResponse
// @Router       /v1/chats [post]
func (h *ChatHandler) Create(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	var req createChatRequest
	if err := c.Bind(&req); err != nil {
		return domain.BadRequest("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	users, err := parseIDs(req.Meta.Users, "meta.users")
	if err != nil {
		return err
	}

	chat, err := h.chats.CreateChat(c.Request().Context(), userID, ports.CreateChatInput{
		Type:       req.Type,
		Name:       req.Name,
		PictureURL: req.PictureURL,
		Users:      users,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Chat created successfully", chat)
}

// Get handles GET /v1/chats/:chatId.
//
// @Summary      Get a chat
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Param        chatId  path      string  true  "Chat id"
// @Success      200     {object}  response{data=domain.Chat}
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /v1/chats/{chatId} [get]
func (h *ChatHandler) Get(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "chatId")
	if err != nil {
		return err
	}
	chat, err := h.chats.FindChatByID(c.Request().Context(), userID, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Chat fetched successfully", chat)
}

// Delete handles DELETE /v1/chats/:chatId.
//
// @Summary      Delete a chat
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Param        chatId  path      string  true  "Chat id"
// @Success      200     {object}  response{data=domain.Chat}
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /v1/chats/{chatId} [delete]
func (h *ChatHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "chatId")
	if err != nil {
		return err
	}
	chat, err := h.chats.DeleteChat(c.Request().Context(), userID, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Chat deleted successfully", chat)
}

// ListMessages handles GET /v1/chats/:chatId/messages, newest first.
//
// @Summary      Messages of a chat
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        chatId  path      string  true   "Chat id"
// @Param        skip    query     int     false  "Documents to skip"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  response{data=[]domain.Message}
// @Failure      403     {object}  errorResponse
// @Router       /v1/chats/{chatId}/messages [get]
func (h *ChatHandler) ListMessages(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	chatID, err := idParam(c, "chatId")
	if err != nil {
		return err
	}
	page, err := parsePage(c, messageSortFields)
	if err != nil {
		return err
	}

	messages, hasMore, err := h.chats.FindMessages(c.Request().Context(), userID, chatID, page)
	if err != nil {
		return err
	}
	return respondPage(c, http.StatusOK, "Messages fetched successfully", newMessageViews(messages), hasMore)
}

// CreateMessage handles POST /v1/chats/:chatId/messages.
//
// @Summary      Send a message
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        chatId  path      string          true  "Chat id"
// @Param        body    body      messageRequest  true  "Message"
// @Success      201     {object}  response{data=domain.Message}
// @Failure      400     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Router       /v1/chats/{chatId}/messages [post]
func (h *ChatHandler) CreateMessage(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	chatID, err := idParam(c, "chatId")
	if err != nil {
		return err
	}
	var req messageRequest
	if err := c.Bind(&req); err != nil {
		return domain.BadRequest("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	msg, err := h.chats.CreateMessage(c.Request().Context(), userID, chatID, req.Text)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Message sent successfully", msg)
}

// GetMessage handles GET /v1/chats/:chatId/messages/:messageId.
//
// @Summary      Get a message
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        chatId     path      string  true  "Chat id"
// @Param        messageId  path      string  true  "Message id"
// @Success      200        {object}  response{data=domain.Message}
// @Failure      404        {object}  errorResponse
// @Router       /v1/chats/{chatId}/messages/{messageId} [get]
func (h *ChatHandler) GetMessage(c echo.Context) error {
	return h.message(c, func(ctx context.Context, r messageRef) (*domain.Message, error) {
		return h.chats.FindMessage(ctx, r.userID, r.chatID, r.id)
	}, "Message fetched successfully")
}

// UpdateMessage handles PATCH /v1/chats/:chatId/messages/:messageId.
//
// @Summary      Edit a message
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        chatId     path      string          true  "Chat id"
// @Param        messageId  path      string          true  "Message id"
// @Param        body       body      messageRequest  true  "New text"
// @Success      200        {object}  response{data=domain.Message}
// @Failure      400        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /v1/chats/{chatId}/messages/{messageId} [patch]
func (h *ChatHandler) UpdateMessage(c echo.Context) error {
	var req messageRequest
	if err := c.Bind(&req); err != nil {
		return domain.BadRequest("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	return h.message(c, func(ctx context.Context, r messageRef) (*domain.Message, error) {
		return h.chats.UpdateMessage(ctx, r.userID, r.chatID, r.id, req.Text)
	}, "Message updated successfully")
}

// DeleteMessage handles DELETE /v1/chats/:chatId/messages/:messageId. The
// message is kept and flagged as deleted.
//
// @Summary      Delete a message
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        chatId     path      string  true  "Chat id"
// @Param        messageId  path      string  true  "Message id"
// @Success      200        {object}  response{data=domain.Message}
// @Failure      404        {object}  errorResponse
// @Router       /v1/chats/{chatId}/messages/{messageId} [delete]
func (h *ChatHandler) DeleteMessage(c echo.Context) error {
	return h.message(c, func(ctx context.Context, r messageRef) (*domain.Message, error) {
		return h.chats.SetMessageDeleted(ctx, r.userID, r.chatID, r.id, true)
	}, "Message deleted successfully")
}

// RestoreMessage handles POST /v1/chats/:chatId/messages/:messageId/restore.
//
// @Summary      Restore a deleted message
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        chatId     path      string  true  "Chat id"
// @Param        messageId  path      string  true  "Message id"
// @Success      200        {object}  response{data=domain.Message}
// @Failure      404        {object}  errorResponse
// @Router       /v1/chats/{chatId}/messages/{messageId}/restore [post]
func (h *ChatHandler) RestoreMessage(c echo.Context) error {
	return h.message(c, func(ctx context.Context, r messageRef) (*domain.Message, error) {
		return h.chats.SetMessageDeleted(ctx, r.userID, r.chatID, r.id, false)
	}, "Message restored successfully")
}

// ReadMessage handles POST /v1/chats/:chatId/messages/:messageId/read.
//
// @Summary      Mark a message as read
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        chatId     path      string  true  "Chat id"
// @Param        messageId  path      string  true  "Message id"
// @Success      200        {object}  response{data=domain.Message}
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /v1/chats/{chatId}/messages/{messageId}/read [post]
func (h *ChatHandler) ReadMessage(c echo.Context) error {
	return h.message(c, func(ctx context.Context, r messageRef) (*domain.Message, error) {
		return h.chats.MarkMessageRead(ctx, r.userID, r.chatID, r.id)
	}, "Message marked as read")
}

// messageRef identifies a message from the path and the token.
type messageRef struct {
	userID primitive.ObjectID
	chatID primitive.ObjectID
	id     primitive.ObjectID
}

func (h *ChatHandler) message(c echo.Context, do func(context.Context, messageRef) (*domain.Message, error), message string) error {
	var (
		r   messageRef
		err error
	)
	if r.userID, err = ctxUserID(c); err != nil {
		return err
	}
	if r.chatID, err = idParam(c, "chatId"); err != nil {
		return err
	}
	if r.id, err = idParam(c, "messageId"); err != nil {
		return err
	}

	msg, err := do(c.Request().Context(), r)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, message, msg.Redacted())
}
