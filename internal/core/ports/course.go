package ports

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
)

type CourseFilter struct {
	IDs                []primitive.ObjectID
	School             primitive.ObjectID
	Instructor         primitive.ObjectID
	Student            primitive.ObjectID
	VerificationStatus domain.VerificationStatus
	Text               string
}

type CreateCourseInput struct {
	Title            string
	ShortDescription string
	LongDescription  string
	Instructors      []primitive.ObjectID
	School           primitive.ObjectID
}

type CourseUpdate struct {
	Title            *string
	ShortDescription *string
	LongDescription  *string
}

// InvitationResult is the outcome of inviting an instructor. Token is empty
// when the user already teaches the course.
type InvitationResult struct {
	Invited           *domain.User
	Token             string
	AlreadyInstructor bool
}

type CourseRepository interface {
	Create(ctx context.Context, c *domain.Course) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Course, error)
	Find(ctx context.Context, filter CourseFilter, page Page) ([]*domain.Course, error)
	Update(ctx context.Context, id primitive.ObjectID, update CourseUpdate) (*domain.Course, error)
	UpdateVerificationStatus(ctx context.Context, id primitive.ObjectID, status domain.VerificationStatus) (*domain.Course, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*domain.Course, error)
}

// CourseService methods that mutate take the verified token identity of the
// caller; ownership rules are checked against it.
type CourseService interface {
	CreateCourse(ctx context.Context, requester domain.TokenUser, input CreateCourseInput) (*domain.Course, error)
	FindCourses(ctx context.Context, filter CourseFilter, page Page) ([]*domain.Course, error)
	FindCourseByID(ctx context.Context, id primitive.ObjectID) (*domain.Course, error)
	FindCourseInstructors(ctx context.Context, id primitive.ObjectID, page Page) ([]*domain.User, error)
	FindCourseStudents(ctx context.Context, id primitive.ObjectID, page Page) ([]*domain.User, error)
	FindCourseSchool(ctx context.Context, id primitive.ObjectID) (*domain.School, error)
	UpdateCourse(ctx context.Context, requester domain.TokenUser, id primitive.ObjectID, update CourseUpdate) (*domain.Course, error)
	DeleteCourse(ctx context.Context, requester domain.TokenUser, id primitive.ObjectID) (*domain.Course, error)
	Enroll(ctx context.Context, requester domain.TokenUser, id primitive.ObjectID) error
	Drop(ctx context.Context, requester domain.TokenUser, id primitive.ObjectID) error
	UpdateVerificationStatus(ctx context.Context, requester domain.TokenUser, id primitive.ObjectID, status domain.VerificationStatus) (*domain.Course, error)
	InviteInstructor(ctx context.Context, requester domain.TokenUser, id, invitedID primitive.ObjectID) (*InvitationResult, error)
	AcceptInstructorInvitation(ctx context.Context, requester domain.TokenUser, id primitive.ObjectID, token string) (*domain.Course, error)
}
