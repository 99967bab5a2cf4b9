package domain

import (
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const MaxMessageLength = 2000

type MessageMeta struct {
	Chat   primitive.ObjectID   `json:"chat" bson:"chat"`
	From   primitive.ObjectID   `json:"from" bson:"from"`
	ReadBy []primitive.ObjectID `json:"readBy" bson:"readBy"`
}

type Message struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Text      string             `json:"text" bson:"text"`
	Meta      MessageMeta        `json:"meta" bson:"meta"`
	IsDeleted bool               `json:"isDeleted" bson:"isDeleted"`
	IsEdited  bool               `json:"isEdited" bson:"isEdited"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func ValidateMessageText(text string) error {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return BadRequest("message text is required")
	}
	if n > MaxMessageLength {
		return BadRequest("message text must be at most %d characters", MaxMessageLength)
	}
	return nil
}

// Redacted hides the text of a soft-deleted message.
func (m Message) Redacted() Message {
	if m.IsDeleted {
		m.Text = ""
	}
	return m
}
