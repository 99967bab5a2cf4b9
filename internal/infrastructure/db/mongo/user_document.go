package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
)

// userMetaDocument covers the metadata of every role. Nil fields are left
// out, so a stored document only carries the arrays its role owns.
type userMetaDocument struct {
	School  *primitive.ObjectID   `bson:"school,omitempty"`
	Courses *[]primitive.ObjectID `bson:"courses,omitempty"`
	Chats   *[]primitive.ObjectID `bson:"chats,omitempty"`
}

// userDocument is the stored form of every user. All roles share the users
// collection; role is the discriminator.
type userDocument struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Role              domain.Role        `bson:"role"`
	FirstName         string             `bson:"firstName"`
	LastName          string             `bson:"lastName"`
	Email             string             `bson:"email"`
	Hash              string             `bson:"hash"`
	ShortDescription  string             `bson:"shortDescription"`
	LongDescription   string             `bson:"longDescription,omitempty"`
	ProfilePictureURL string             `bson:"profilePictureUrl"`
	Location          domain.Location    `bson:"location"`

	Interests         []string `bson:"interests,omitempty"`
	InitialGradeLevel int      `bson:"initialGradeLevel,omitempty"`
	InitialSchoolYear string   `bson:"initialSchoolYear,omitempty"`
	Specialties       []string `bson:"specialties,omitempty"`
	Position          string   `bson:"position,omitempty"`

	Meta      userMetaDocument `bson:"meta"`
	Distance  *domain.Distance `bson:"distance,omitempty"`
	CreatedAt time.Time        `bson:"createdAt"`
	UpdatedAt time.Time        `bson:"updatedAt"`
}

func toUserDocument(u *domain.User) userDocument {
	doc := userDocument{
		ID:                u.ID,
		Role:              u.Role,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Email:             u.Email,
		Hash:              u.Hash,
		ShortDescription:  u.ShortDescription,
		LongDescription:   u.LongDescription,
		ProfilePictureURL: u.ProfilePictureURL,
		Location:          u.Location,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}

	domain.MatchProfile(u.Profile,
		func(p *domain.StudentProfile) struct{} {
			doc.Interests = p.Interests
			doc.InitialGradeLevel = p.InitialGradeLevel
			doc.InitialSchoolYear = p.InitialSchoolYear
			doc.Meta = userMetaDocument{
				School:  optionalID(p.Meta.School),
				Courses: idArray(p.Meta.Courses),
				Chats:   idArray(p.Meta.Chats),
			}
			return struct{}{}
		},
		func(p *domain.InstructorProfile) struct{} {
			doc.Specialties = p.Specialties
			doc.Meta = userMetaDocument{
				Courses: idArray(p.Meta.Courses),
				Chats:   idArray(p.Meta.Chats),
			}
			return struct{}{}
		},
		func(p *domain.SchoolOfficialProfile) struct{} {
			doc.Position = p.Position
			doc.Meta = userMetaDocument{
				School: optionalID(p.Meta.School),
				Chats:  idArray(p.Meta.Chats),
			}
			return struct{}{}
		},
	)
	return doc
}

// toDomain rebuilds the role variant. Fields of other roles present in the
// stored document are ignored.
func (d *userDocument) toDomain() (*domain.User, error) {
	profile, err := domain.NewProfile(d.Role)
	if err != nil {
		return nil, err
	}

	domain.MatchProfile(profile,
		func(p *domain.StudentProfile) struct{} {
			p.Interests = nonNilStrings(d.Interests)
			p.InitialGradeLevel = d.InitialGradeLevel
			p.InitialSchoolYear = d.InitialSchoolYear
			p.Meta.School = derefID(d.Meta.School)
			p.Meta.Courses = derefIDs(d.Meta.Courses)
			p.Meta.Chats = derefIDs(d.Meta.Chats)
			return struct{}{}
		},
		func(p *domain.InstructorProfile) struct{} {
			p.Specialties = nonNilStrings(d.Specialties)
			p.Meta.Courses = derefIDs(d.Meta.Courses)
			p.Meta.Chats = derefIDs(d.Meta.Chats)
			return struct{}{}
		},
		func(p *domain.SchoolOfficialProfile) struct{} {
			p.Position = d.Position
			p.Meta.School = derefID(d.Meta.School)
			p.Meta.Chats = derefIDs(d.Meta.Chats)
			return struct{}{}
		},
	)

	u := &domain.User{
		ID:                d.ID,
		Role:              d.Role,
		FirstName:         d.FirstName,
		LastName:          d.LastName,
		Email:             d.Email,
		Hash:              d.Hash,
		ShortDescription:  d.ShortDescription,
		LongDescription:   d.LongDescription,
		ProfilePictureURL: d.ProfilePictureURL,
		Location:          d.Location,
		Profile:           profile,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
	if d.Distance != nil {
		dist := d.Distance.Calculated
		u.Distance = &dist
	}
	return u, nil
}

func optionalID(id primitive.ObjectID) *primitive.ObjectID {
	if id.IsZero() {
		return nil
	}
	return &id
}

func idArray(ids []primitive.ObjectID) *[]primitive.ObjectID {
	if ids == nil {
		ids = []primitive.ObjectID{}
	}
	return &ids
}

func derefID(id *primitive.ObjectID) primitive.ObjectID {
	if id == nil {
		return primitive.NilObjectID
	}
	return *id
}

func derefIDs(ids *[]primitive.ObjectID) []primitive.ObjectID {
	if ids == nil || *ids == nil {
		return []primitive.ObjectID{}
	}
	return *ids
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
