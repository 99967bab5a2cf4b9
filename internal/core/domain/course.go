package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VerificationStatus string

const (
	VerificationPending   VerificationStatus = "PENDING_VERIFICATION"
	VerificationVerified  VerificationStatus = "VERIFIED"
	VerificationDismissed VerificationStatus = "DISMISSED"
)

func ParseVerificationStatus(s string) (VerificationStatus, error) {
	switch v := VerificationStatus(s); v {
	case VerificationPending, VerificationVerified, VerificationDismissed:
		return v, nil
	}
	return "", BadRequest("invalid verification status %q", s)
}

type CourseMeta struct {
	Instructors []primitive.ObjectID `json:"instructors" bson:"instructors"`
	Students    []primitive.ObjectID `json:"students" bson:"students"`
	School      primitive.ObjectID   `json:"school" bson:"school"`
}

type Course struct {
	ID                 primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title              string             `json:"title" bson:"title"`
	ShortDescription   string             `json:"shortDescription" bson:"shortDescription"`
	LongDescription    string             `json:"longDescription,omitempty" bson:"longDescription,omitempty"`
	VerificationStatus VerificationStatus `json:"verificationStatus" bson:"verificationStatus"`
	Meta               CourseMeta         `json:"meta" bson:"meta"`
	CreatedAt          time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (c *Course) HasInstructor(id primitive.ObjectID) bool {
	return containsID(c.Meta.Instructors, id)
}

func (c *Course) HasStudent(id primitive.ObjectID) bool {
	return containsID(c.Meta.Students, id)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// UniqueIDs returns ids without duplicates, keeping first occurrences.
func UniqueIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// InstructorInvitation asks instructor To to teach Course alongside From.
// It travels as a signed token; whoever presents it must be To.
type InstructorInvitation struct {
	Course primitive.ObjectID `json:"courseId"`
	School primitive.ObjectID `json:"schoolId"`
	From   primitive.ObjectID `json:"from"`
	To     primitive.ObjectID `json:"to"`
}
