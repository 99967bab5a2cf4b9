package handler

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
)

// userMetaView only carries the arrays the user's role owns. Owned arrays
// render as [] when empty.
type userMetaView struct {
	School  *primitive.ObjectID   `json:"school,omitempty"`
	Courses *[]primitive.ObjectID `json:"courses,omitempty"`
	Chats   *[]primitive.ObjectID `json:"chats,omitempty"`
}

// userView is the JSON shape of a user of any role. Hash is only filled in
// for the account owner's auth responses.
type userView struct {
	ID                primitive.ObjectID `json:"_id"`
	Role              domain.Role        `json:"role"`
	FirstName         string             `json:"firstName"`
	LastName          string             `json:"lastName"`
	Email             string             `json:"email"`
	Hash              string             `json:"hash,omitempty"`
	ShortDescription  string             `json:"shortDescription"`
	LongDescription   string             `json:"longDescription,omitempty"`
	ProfilePictureURL string             `json:"profilePictureUrl"`
	Location          domain.Location    `json:"location"`

	Interests         *[]string `json:"interests,omitempty"`
	InitialGradeLevel *int      `json:"initialGradeLevel,omitempty"`
	InitialSchoolYear *string   `json:"initialSchoolYear,omitempty"`
	Specialties       *[]string `json:"specialties,omitempty"`
	Position          *string   `json:"position,omitempty"`

	Meta      userMetaView     `json:"meta"`
	Distance  *domain.Distance `json:"distance,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

func newUserView(u *domain.User) userView {
	v := userView{
		ID:                u.ID,
		Role:              u.Role,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Email:             u.Email,
		ShortDescription:  u.ShortDescription,
		LongDescription:   u.LongDescription,
		ProfilePictureURL: u.ProfilePictureURL,
		Location:          u.Location,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
	if u.Distance != nil {
		v.Distance = &domain.Distance{Calculated: *u.Distance}
	}

	domain.MatchProfile(u.Profile,
		func(p *domain.StudentProfile) struct{} {
			v.Interests = stringList(p.Interests)
			v.InitialGradeLevel = &p.InitialGradeLevel
			v.InitialSchoolYear = &p.InitialSchoolYear
			v.Meta = userMetaView{School: schoolRef(p.Meta.School), Courses: idList(p.Meta.Courses), Chats: idList(p.Meta.Chats)}
			return struct{}{}
		},
		func(p *domain.InstructorProfile) struct{} {
			v.Specialties = stringList(p.Specialties)
			v.Meta = userMetaView{Courses: idList(p.Meta.Courses), Chats: idList(p.Meta.Chats)}
			return struct{}{}
		},
		func(p *domain.SchoolOfficialProfile) struct{} {
			v.Position = &p.Position
			v.Meta = userMetaView{School: schoolRef(p.Meta.School), Chats: idList(p.Meta.Chats)}
			return struct{}{}
		},
	)
	return v
}

func newUserViews(users []*domain.User) []userView {
	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, newUserView(u))
	}
	return views
}

func idList(v []primitive.ObjectID) *[]primitive.ObjectID {
	if v == nil {
		v = []primitive.ObjectID{}
	}
	return &v
}

func stringList(v []string) *[]string {
	if v == nil {
		v = []string{}
	}
	return &v
}

func schoolRef(id primitive.ObjectID) *primitive.ObjectID {
	if id.IsZero() {
		return nil
	}
	return &id
}

func newMessageViews(messages []*domain.Message) []domain.Message {
	views := make([]domain.Message, 0, len(messages))
	for _, m := range messages {
		views = append(views, m.Redacted())
	}
	return views
}

type authView struct {
	User        userView `json:"user"`
	AccessToken string   `json:"accessToken"`
}

func newAuthView(u *domain.User, token string) authView {
	v := newUserView(u)
	v.Hash = u.Hash
	return authView{User: v, AccessToken: token}
}

type invitationView struct {
	Invited         userView `json:"invited"`
	InvitationToken string   `json:"invitationToken,omitempty"`
}
