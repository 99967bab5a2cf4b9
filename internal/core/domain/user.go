package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role selects the shape of a user's profile and metadata.
type Role string

const (
	RoleStudent        Role = "STUDENT"
	RoleInstructor     Role = "INSTRUCTOR"
	RoleSchoolOfficial Role = "SCHOOL_OFFICIAL"
	// RoleAdmin only ever appears in access tokens; no user document carries it.
	RoleAdmin Role = "ADMIN"
)

// UserRoles lists the roles a stored user may have.
var UserRoles = []Role{RoleStudent, RoleInstructor, RoleSchoolOfficial}

// ParseUserRole validates s as one of the stored user roles.
func ParseUserRole(s string) (Role, error) {
	for _, r := range UserRoles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", ErrInvalidRole
}

// GeoPoint is a GeoJSON point; coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

func NewPoint(lng, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// Location is the coarse place a user is associated with.
type Location struct {
	Zip     string   `json:"zip" bson:"zip"`
	City    string   `json:"city" bson:"city"`
	State   string   `json:"state" bson:"state"`
	GeoJSON GeoPoint `json:"geoJSON" bson:"geoJSON"`
}

// User is the role-agnostic part of an account. Profile holds the variant
// selected by Role and never changes kind after creation.
type User struct {
	ID                primitive.ObjectID
	Role              Role
	FirstName         string
	LastName          string
	Email             string
	Hash              string
	ShortDescription  string
	LongDescription   string
	ProfilePictureURL string
	Location          Location
	// Distance is set only on results of a nearest-neighbour query, in meters.
	Distance  *float64
	Profile   Profile
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile is implemented only by the three role variants below.
type Profile interface {
	role() Role
}

type StudentMeta struct {
	School  primitive.ObjectID
	Courses []primitive.ObjectID
	Chats   []primitive.ObjectID
}

type StudentProfile struct {
	Interests         []string
	InitialGradeLevel int
	InitialSchoolYear string
	Meta              StudentMeta
}

type InstructorMeta struct {
	Courses []primitive.ObjectID
	Chats   []primitive.ObjectID
}

type InstructorProfile struct {
	Specialties []string
	Meta        InstructorMeta
}

type SchoolOfficialMeta struct {
	School primitive.ObjectID
	Chats  []primitive.ObjectID
}

type SchoolOfficialProfile struct {
	Position string
	Meta     SchoolOfficialMeta
}

func (*StudentProfile) role() Role        { return RoleStudent }
func (*InstructorProfile) role() Role     { return RoleInstructor }
func (*SchoolOfficialProfile) role() Role { return RoleSchoolOfficial }

// NewProfile returns an empty profile for role with every metadata array
// initialised to a non-nil empty slice.
func NewProfile(role Role) (Profile, error) {
	switch role {
	case RoleStudent:
		return &StudentProfile{
			Interests: []string{},
			Meta:      StudentMeta{Courses: []primitive.ObjectID{}, Chats: []primitive.ObjectID{}},
		}, nil
	case RoleInstructor:
		return &InstructorProfile{
			Specialties: []string{},
			Meta:        InstructorMeta{Courses: []primitive.ObjectID{}, Chats: []primitive.ObjectID{}},
		}, nil
	case RoleSchoolOfficial:
		return &SchoolOfficialProfile{
			Meta: SchoolOfficialMeta{Chats: []primitive.ObjectID{}},
		}, nil
	}
	return nil, ErrInvalidRole
}

// MatchProfile dispatches on the profile variant. Every caller has to supply
// a branch for each role, so adding a role breaks the build at each call site
// instead of falling through a default case.
func MatchProfile[T any](
	p Profile,
	student func(*StudentProfile) T,
	instructor func(*InstructorProfile) T,
	official func(*SchoolOfficialProfile) T,
) T {
	switch v := p.(type) {
	case *StudentProfile:
		return student(v)
	case *InstructorProfile:
		return instructor(v)
	case *SchoolOfficialProfile:
		return official(v)
	}
	var zero T
	return zero
}

// Courses returns the ids of courses the user takes or teaches.
func (u *User) Courses() []primitive.ObjectID {
	return MatchProfile(u.Profile,
		func(p *StudentProfile) []primitive.ObjectID { return p.Meta.Courses },
		func(p *InstructorProfile) []primitive.ObjectID { return p.Meta.Courses },
		func(*SchoolOfficialProfile) []primitive.ObjectID { return nil },
	)
}

func (u *User) Chats() []primitive.ObjectID {
	return MatchProfile(u.Profile,
		func(p *StudentProfile) []primitive.ObjectID { return p.Meta.Chats },
		func(p *InstructorProfile) []primitive.ObjectID { return p.Meta.Chats },
		func(p *SchoolOfficialProfile) []primitive.ObjectID { return p.Meta.Chats },
	)
}

// School returns the user's school and whether the role has one.
func (u *User) School() (primitive.ObjectID, bool) {
	type school struct {
		id primitive.ObjectID
		ok bool
	}
	s := MatchProfile(u.Profile,
		func(p *StudentProfile) school { return school{p.Meta.School, !p.Meta.School.IsZero()} },
		func(*InstructorProfile) school { return school{} },
		func(p *SchoolOfficialProfile) school { return school{p.Meta.School, !p.Meta.School.IsZero()} },
	)
	return s.id, s.ok
}

// TokenUser is the identity carried inside an access token.
type TokenUser struct {
	ID   string `json:"_id"`
	Role Role   `json:"role"`
}

// TokenPayload is a verified access token.
type TokenPayload struct {
	User      TokenUser
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (p *TokenPayload) IsAdmin() bool {
	return p.User.Role == RoleAdmin
}

// NewTokenUser builds the token identity for a stored user.
func NewTokenUser(u *User) TokenUser {
	return TokenUser{ID: u.ID.Hex(), Role: u.Role}
}
