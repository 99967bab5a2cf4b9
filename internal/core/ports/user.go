package ports

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
)

// UserFilter narrows a user list. Zero values are ignored.
type UserFilter struct {
	Role       domain.Role
	IDs        []primitive.ObjectID
	ExcludeIDs []primitive.ObjectID
	Text       string
}

type UserQuery struct {
	Filter UserFilter
	Page   Page
	Near   *Near
}

// CreateUserInput carries sign-up data. Password is plaintext and is only
// ever passed to a PasswordHasher.
type CreateUserInput struct {
	Role              string
	FirstName         string
	LastName          string
	Email             string
	Password          string
	ShortDescription  string
	LongDescription   string
	ProfilePictureURL string
	Zip               string
	School            primitive.ObjectID

	Interests         []string
	InitialGradeLevel int
	InitialSchoolYear string
	Specialties       []string
	Position          string
}

// UserUpdate holds the mutable user fields. Nil means unchanged. The
// role-specific fields are only accepted for users of that role.
type UserUpdate struct {
	FirstName         *string
	LastName          *string
	ShortDescription  *string
	LongDescription   *string
	ProfilePictureURL *string

	Interests         *[]string
	InitialGradeLevel *int
	InitialSchoolYear *string
	Specialties       *[]string
	Position          *string
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Find(ctx context.Context, filter UserFilter, page Page) ([]*domain.User, error)
	FindNear(ctx context.Context, near Near, filter UserFilter, page Page) ([]*domain.User, error)
	Update(ctx context.Context, id primitive.ObjectID, update UserUpdate) (*domain.User, error)
	UpdateLocation(ctx context.Context, id primitive.ObjectID, loc domain.Location) (*domain.User, error)
	// Delete removes the user and returns the document as it was.
	Delete(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

type UserService interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)
	FindUsers(ctx context.Context, query UserQuery) ([]*domain.User, error)
	FindUsersByIDs(ctx context.Context, ids []primitive.ObjectID, page Page) ([]*domain.User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, update UserUpdate) (*domain.User, error)
	UpdateUserLocationByZip(ctx context.Context, id primitive.ObjectID, zip string) (*domain.User, error)
	DeleteUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}
