package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
	"github.com/omerdemirkan/stem-bound-api/internal/core/ports"
)

type CourseService struct {
	courses     ports.CourseRepository
	users       ports.UserService
	schools     ports.SchoolRepository
	metadata    ports.MetadataService
	invitations ports.InvitationIssuer
	limits      ports.PageLimits
	metrics     ports.Recorder
	logger      zerolog.Logger
}

func NewCourseService(
	courses ports.CourseRepository,
	users ports.UserService,
	schools ports.SchoolRepository,
	metadata ports.MetadataService,
	invitations ports.InvitationIssuer,
	limits ports.PageLimits,
	recorder ports.Recorder,
	logger zerolog.Logger,
) *CourseService {
	return &CourseService{
		courses:     courses,
		users:       users,
		schools:     schools,
		metadata:    metadata,
		invitations: invitations,
		limits:      limits,
		metrics:     recorder,
		logger:      logger,
	}
}

// CreateCourse requires the requester to be one of the listed instructors,
// and every listed instructor to be a stored INSTRUCTOR. New courses start
// pending verification with no students.
func (s *CourseService) CreateCourse(ctx context.Context, requester domain.TokenUser, in ports.CreateCourseInput) (*domain.Course, error) {
	requesterID, err := requesterObjectID(requester)
	if err != nil {
		return nil, err
	}

	instructors := domain.UniqueIDs(in.Instructors)
	course := &domain.Course{Meta: domain.CourseMeta{Instructors: instructors}}
	if !course.HasInstructor(requesterID) {
		return nil, domain.Forbidden("you must be listed as an instructor of the course")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, domain.BadRequest("course title is required")
	}
	if in.School.IsZero() {
		return nil, domain.BadRequest("course school is required")
	}
	if _, err := s.schools.FindByID(ctx, in.School); err != nil {
		return nil, err
	}
	if err := requireUsers(ctx, s.users, instructors, s.limits.Max, domain.RoleInstructor); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	course.Title = in.Title
	course.ShortDescription = in.ShortDescription
	course.LongDescription = in.LongDescription
	course.VerificationStatus = domain.VerificationPending
	course.Meta.Students = []primitive.ObjectID{}
	course.Meta.School = in.School
	course.CreatedAt = now
	course.UpdatedAt = now

	if err := s.courses.Create(ctx, course); err != nil {
		return nil, err
	}
	s.logger.Info().Str("course_id", course.ID.Hex()).Str("school_id", in.School.Hex()).Msg("course created")

	if err := s.metadata.OnCourseCreated(ctx, course); err != nil {
		return nil, fmt.Errorf("course %s created: %w", course.ID.Hex(), err)
	}
	return course, nil
}

func (s *CourseService) FindCourses(ctx context.Context, filter ports.CourseFilter, page ports.Page) ([]*domain.Course, error) {
	return s.courses.Find(ctx, filter, s.limits.Clamp(page, false))
}

func (s *CourseService) FindCourseByID(ctx context.Context, id primitive.ObjectID) (*domain.Course, error) {
	return s.courses.FindByID(ctx, id)
}

func (s *CourseService) FindCourseInstructors(ctx context.Context, id primitive.ObjectID, page ports.Page) ([]*domain.User, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.users.FindUsersByIDs(ctx, course.Meta.Instructors, page)
}

func (s *CourseService) FindCourseStudents(ctx context.Context, id primitive.ObjectID, page ports.Page) ([]*domain.User, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.users.FindUsersByIDs(ctx, course.Meta.Students, page)
}

func (s *CourseService) FindCourseSchool(ctx context.Context, id primitive.ObjectID) (*domain.School, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.schools.FindByID(ctx, course.Meta.School)
}

func (s *CourseService) UpdateCourse(ctx context.Context, requester domain.TokenUser, id primitive.ObjectID, update ports.CourseUpdate) (*domain.Course, error) {
	if _, err := s.taughtBy(ctx, requester, id); err != nil {
		return nil, err
	}
	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		return nil, domain.BadRequest("course title cannot be empty")
	}
	return s.courses.Update(ctx, id, update)
}

// DeleteCourse removes the course and then its references. A cascade
// failure is returned after the delete has been committed.
func (s *CourseService) DeleteCourse(ctx context.Context, requester domain.TokenUser, id primitive.ObjectID) (*domain.Course, error) {
	if _, err := s.taughtBy(ctx, requester, id); err != nil {
		return nil, err
	}

	deleted, err := s.courses.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("course_id", id.Hex()).Msg("course deleted")

	if err := s.metadata.OnCourseDeleted(ctx, deleted); err != nil {
		return nil, fmt.Errorf("course %s deleted: %w", id.Hex(), err)
	}
	return deleted, nil
}

// Enroll is idempotent: enrolling twice leaves a single reference on each side.
func (s *CourseService) Enroll(ctx context.Context, requester domain.TokenUser, id primitive.ObjectID) error {
	studentID, err := requesterObjectID(requester)
	if err != nil {
		return err
	}
	if _, err := s.courses.FindByID(ctx, id); err != nil {
		return err
	}
	// The token may outlive the account.
	student, err := s.users.FindUserByID(ctx, studentID)
	if err != nil {
		return err
	}
	if student.Role != domain.RoleStudent {
		return domain.Forbidden("only students can enroll in courses")
	}

	s.metrics.Enrollment("enroll")
	return s.metadata.OnCourseEnroll(ctx, id, studentID)
}

func (s *CourseService) Drop(ctx context.Context, requester domain.TokenUser, id primitive.ObjectID) error {
	studentID, err := requesterObjectID(requester)
	if err != nil {
		return err
	}
	if _, err := s.courses.FindByID(ctx, id); err != nil {
		return err
	}

	s.metrics.Enrollment("drop")
	return s.metadata.OnCourseDrop(ctx, id, studentID)
}

// UpdateVerificationStatus lets an official of the course's school verify or
// dismiss a course, and lets one of its instructors resubmit it for
// verification.
func (s *CourseService) UpdateVerificationStatus(ctx context.Context, requester domain.TokenUser, id primitive.ObjectID, status domain.VerificationStatus) (*domain.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch requester.Role {
	case domain.RoleInstructor:
		requesterID, err := requesterObjectID(requester)
		if err != nil {
			return nil, err
		}
		if !course.HasInstructor(requesterID) {
			return nil, domain.Forbidden("you must be an instructor of this course")
		}
		if status != domain.VerificationPending {
			return nil, domain.Forbidden("instructors can only request verification")
		}
	case domain.RoleSchoolOfficial:
		requesterID, err := requesterObjectID(requester)
		if err != nil {
			return nil, err
		}
		official, err := s.users.FindUserByID(ctx, requesterID)
		if err != nil {
			return nil, err
		}
		school, ok := official.School()
		if !ok || school != course.Meta.School {
			return nil, domain.Forbidden("you must be an official of the course's school")
		}
		if status == domain.VerificationPending {
			return nil, domain.BadRequest("school officials can only verify or dismiss a course")
		}
	case domain.RoleAdmin:
	default:
		return nil, domain.Forbidden("role %s cannot change verification status", requester.Role)
	}

	return s.courses.UpdateVerificationStatus(ctx, id, status)
}

// InviteInstructor lets an instructor of the course invite another
// instructor. The returned token is what the invitee presents to
// AcceptInstructorInvitation.
func (s *CourseService) InviteInstructor(ctx context.Context, requester domain.TokenUser, id, invitedID primitive.ObjectID) (*ports.InvitationResult, error) {
	inviterID, err := requesterObjectID(requester)
	if err != nil {
		return nil, err
	}
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !course.HasInstructor(inviterID) {
		return nil, domain.Forbidden("you must be an instructor of %s to invite instructors", course.Title)
	}
	invited, err := s.users.FindUserByID(ctx, invitedID)
	if err != nil {
		return nil, err
	}
	if invited.Role != domain.RoleInstructor {
		return nil, domain.BadRequest("the invited user is not an instructor")
	}
	if course.HasInstructor(invitedID) {
		return &ports.InvitationResult{Invited: invited, AlreadyInstructor: true}, nil
	}

	token, err := s.invitations.SignInvitation(domain.InstructorInvitation{
		Course: course.ID,
		School: course.Meta.School,
		From:   inviterID,
		To:     invitedID,
	})
	if err != nil {
		return nil, fmt.Errorf("sign invitation: %w", err)
	}
	s.logger.Info().
		Str("course_id", course.ID.Hex()).
		Str("from", inviterID.Hex()).
		Str("to", invitedID.Hex()).
		Msg("instructor invited")
	return &ports.InvitationResult{Invited: invited, Token: token}, nil
}

// AcceptInstructorInvitation adds the requester to the course's instructors.
// The invitation must name both the requester and the course.
func (s *CourseService) AcceptInstructorInvitation(ctx context.Context, requester domain.TokenUser, id primitive.ObjectID, token string) (*domain.Course, error) {
	instructorID, err := requesterObjectID(requester)
	if err != nil {
		return nil, err
	}
	inv, err := s.invitations.ParseInvitation(token)
	if err != nil {
		return nil, err
	}
	if inv.To != instructorID {
		return nil, domain.Forbidden("the invitation was issued to another user")
	}
	if inv.Course != id {
		return nil, domain.Forbidden("the invitation is for another course")
	}
	if _, err := s.courses.FindByID(ctx, id); err != nil {
		return nil, err
	}
	instructor, err := s.users.FindUserByID(ctx, instructorID)
	if err != nil {
		return nil, err
	}
	if instructor.Role != domain.RoleInstructor {
		return nil, domain.Forbidden("only instructors can accept an invitation")
	}

	if err := s.metadata.Link(ctx, domain.Teaching, idList(instructorID), idList(id)); err != nil {
		return nil, fmt.Errorf("course %s invitation: %w", id.Hex(), err)
	}
	s.logger.Info().Str("course_id", id.Hex()).Str("instructor_id", instructorID.Hex()).Msg("instructor joined course")
	return s.courses.FindByID(ctx, id)
}

// taughtBy loads the course and checks the requester teaches it. Admins
// pass regardless.
func (s *CourseService) taughtBy(ctx context.Context, requester domain.TokenUser, id primitive.ObjectID) (*domain.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if requester.Role == domain.RoleAdmin {
		return course, nil
	}
	requesterID, err := requesterObjectID(requester)
	if err != nil {
		return nil, err
	}
	if !course.HasInstructor(requesterID) {
		return nil, domain.Forbidden("you must be an instructor of this course")
	}
	return course, nil
}

func requesterObjectID(requester domain.TokenUser) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(requester.ID)
	if err != nil {
		return primitive.NilObjectID, domain.ErrInvalidToken
	}
	return id, nil
}
