package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MailingListSubscriber struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email     string             `json:"email" bson:"email"`
	Affiliate string             `json:"affiliate,omitempty" bson:"affiliate,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}
