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

type UserService struct {
	users     ports.UserRepository
	schools   ports.SchoolRepository
	locations ports.LocationService
	metadata  ports.MetadataService
	hasher    ports.PasswordHasher
	limits    ports.PageLimits
	metrics   ports.Recorder
	logger    zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	schools ports.SchoolRepository,
	locations ports.LocationService,
	metadata ports.MetadataService,
	hasher ports.PasswordHasher,
	limits ports.PageLimits,
	recorder ports.Recorder,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		schools:   schools,
		locations: locations,
		metadata:  metadata,
		hasher:    hasher,
		limits:    limits,
		metrics:   recorder,
		logger:    logger,
	}
}

// CreateUser validates the role, replaces the plaintext password with a
// hash, resolves the location and persists the user. The school's member
// list is updated afterwards; if that fails the user stays created.
func (s *UserService) CreateUser(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	role, err := domain.ParseUserRole(in.Role)
	if err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, domain.ErrPasswordRequired
	}

	profile, err := domain.NewProfile(role)
	if err != nil {
		return nil, err
	}
	if err := fillProfile(profile, in); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Role:              role,
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		Email:             strings.ToLower(strings.TrimSpace(in.Email)),
		Hash:              hash,
		ShortDescription:  in.ShortDescription,
		LongDescription:   in.LongDescription,
		ProfilePictureURL: in.ProfilePictureURL,
		Profile:           profile,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	user.Location, err = s.resolveLocation(ctx, in.Zip, user)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.metrics.UserCreated(role)
	s.logger.Info().Str("user_id", user.ID.Hex()).Str("role", string(role)).Msg("user created")

	if err := s.metadata.OnUserCreated(ctx, user); err != nil {
		return nil, fmt.Errorf("user %s created: %w", user.ID.Hex(), err)
	}
	return user, nil
}

// fillProfile copies the role-specific sign-up fields into p and rejects
// fields that belong to another role.
func fillProfile(p domain.Profile, in ports.CreateUserInput) error {
	return domain.MatchProfile(p,
		func(sp *domain.StudentProfile) error {
			if len(in.Specialties) > 0 || in.Position != "" {
				return domain.BadRequest("students cannot have specialties or a position")
			}
			if in.School.IsZero() {
				return domain.BadRequest("students must belong to a school")
			}
			if in.Interests != nil {
				sp.Interests = in.Interests
			}
			sp.InitialGradeLevel = in.InitialGradeLevel
			sp.InitialSchoolYear = in.InitialSchoolYear
			sp.Meta.School = in.School
			return nil
		},
		func(ip *domain.InstructorProfile) error {
			if len(in.Interests) > 0 || in.InitialGradeLevel != 0 || in.InitialSchoolYear != "" || in.Position != "" {
				return domain.BadRequest("instructors can only set specialties")
			}
			if !in.School.IsZero() {
				return domain.BadRequest("instructors do not belong to a school")
			}
			if in.Specialties != nil {
				ip.Specialties = in.Specialties
			}
			return nil
		},
		func(op *domain.SchoolOfficialProfile) error {
			if len(in.Interests) > 0 || len(in.Specialties) > 0 || in.InitialGradeLevel != 0 || in.InitialSchoolYear != "" {
				return domain.BadRequest("school officials can only set a position")
			}
			if in.School.IsZero() {
				return domain.BadRequest("school officials must belong to a school")
			}
			op.Position = in.Position
			op.Meta.School = in.School
			return nil
		},
	)
}

// resolveLocation prefers an explicit zip and falls back to the user's school.
func (s *UserService) resolveLocation(ctx context.Context, zip string, u *domain.User) (domain.Location, error) {
	if zip != "" {
		loc, err := s.locations.FindLocationByZip(ctx, zip)
		if err != nil {
			return domain.Location{}, err
		}
		return loc.UserLocation(), nil
	}

	schoolID, ok := u.School()
	if !ok {
		return domain.Location{}, domain.BadRequest("zip is required")
	}
	school, err := s.schools.FindByID(ctx, schoolID)
	if err != nil {
		return domain.Location{}, err
	}
	return school.Location.UserLocation(), nil
}

func (s *UserService) FindUsers(ctx context.Context, q ports.UserQuery) ([]*domain.User, error) {
	if q.Near != nil {
		if q.Filter.Text != "" {
			return nil, domain.BadRequest("text search cannot be combined with coordinates")
		}
		return s.users.FindNear(ctx, *q.Near, q.Filter, s.limits.Clamp(q.Page, true))
	}
	return s.users.Find(ctx, q.Filter, s.limits.Clamp(q.Page, false))
}

func (s *UserService) FindUsersByIDs(ctx context.Context, ids []primitive.ObjectID, page ports.Page) ([]*domain.User, error) {
	if len(ids) == 0 {
		return []*domain.User{}, nil
	}
	return s.users.Find(ctx, ports.UserFilter{IDs: ids}, s.limits.Clamp(page, false))
}

func (s *UserService) FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// UpdateUser applies update after checking that every role-specific field
// in it belongs to the user's role. The role itself never changes.
func (s *UserService) UpdateUser(ctx context.Context, id primitive.ObjectID, update ports.UserUpdate) (*domain.User, error) {
	current, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	err = domain.MatchProfile(current.Profile,
		func(*domain.StudentProfile) error {
			if update.Specialties != nil || update.Position != nil {
				return domain.BadRequest("students cannot have specialties or a position")
			}
			return nil
		},
		func(*domain.InstructorProfile) error {
			if update.Interests != nil || update.InitialGradeLevel != nil || update.InitialSchoolYear != nil || update.Position != nil {
				return domain.BadRequest("instructors can only update specialties")
			}
			return nil
		},
		func(*domain.SchoolOfficialProfile) error {
			if update.Interests != nil || update.InitialGradeLevel != nil || update.InitialSchoolYear != nil || update.Specialties != nil {
				return domain.BadRequest("school officials can only update their position")
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	return s.users.Update(ctx, id, update)
}

func (s *UserService) UpdateUserLocationByZip(ctx context.Context, id primitive.ObjectID, zip string) (*domain.User, error) {
	loc, err := s.locations.FindLocationByZip(ctx, zip)
	if err != nil {
		return nil, err
	}
	return s.users.UpdateLocation(ctx, id, loc.UserLocation())
}

// DeleteUser removes the user, then cascades the removal through metadata.
// A cascade failure is returned after the delete has been committed.
func (s *UserService) DeleteUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", id.Hex()).Str("role", string(deleted.Role)).Msg("user deleted")

	if err := s.metadata.OnUserDeleted(ctx, deleted); err != nil {
		return nil, fmt.Errorf("user %s deleted: %w", id.Hex(), err)
	}
	return deleted, nil
}
