package domain

import (
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ChatType string

const (
	ChatPrivate ChatType = "PRIVATE"
	ChatGroup   ChatType = "GROUP"
)

func ParseChatType(s string) (ChatType, error) {
	switch t := ChatType(s); t {
	case ChatPrivate, ChatGroup:
		return t, nil
	}
	return "", BadRequest("invalid chat type %q", s)
}

type ChatMeta struct {
	Users     []primitive.ObjectID `json:"users" bson:"users"`
	CreatedBy primitive.ObjectID   `json:"createdBy" bson:"createdBy"`
}

type Chat struct {
	ID                primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Type              ChatType           `json:"type" bson:"type"`
	Name              string             `json:"name,omitempty" bson:"name,omitempty"`
	PictureURL        string             `json:"pictureUrl,omitempty" bson:"pictureUrl,omitempty"`
	Meta              ChatMeta           `json:"meta" bson:"meta"`
	NumMessages       int                `json:"numMessages" bson:"numMessages"`
	LastMessageSentAt *time.Time         `json:"lastMessageSentAt,omitempty" bson:"lastMessageSentAt,omitempty"`
	PrivateChatKey    string             `json:"privateChatKey,omitempty" bson:"privateChatKey,omitempty"`
	CreatedAt         time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (c *Chat) HasUser(id primitive.ObjectID) bool {
	return containsID(c.Meta.Users, id)
}

// PrivateChatKey identifies the private chat between a set of users
// independent of the order they are given in.
func PrivateChatKey(users []primitive.ObjectID) string {
	hexes := make([]string, 0, len(users))
	for _, id := range users {
		hexes = append(hexes, id.Hex())
	}
	sort.Strings(hexes)
	return strings.Join(hexes, "_")
}
