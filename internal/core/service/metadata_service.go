package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
	"github.com/omerdemirkan/stem-bound-api/internal/core/ports"
)

// metadataUpdate is one bulk write: add or remove values on target.Field of
// every document in docIDs.
type metadataUpdate struct {
	target domain.MetadataTarget
	docIDs []primitive.ObjectID
	values []primitive.ObjectID
	remove bool
}

func (u metadataUpdate) empty() bool {
	return len(u.docIDs) == 0 || len(u.values) == 0
}

// MetadataService keeps both sides of every denormalized relationship in
// sync. Updates of one operation run concurrently and are not transactional:
// a failure leaves already applied targets in place and is reported through
// *domain.MetadataUpdateError.
type MetadataService struct {
	store   ports.MetadataStore
	metrics ports.Recorder
	logger  zerolog.Logger
}

func NewMetadataService(store ports.MetadataStore, recorder ports.Recorder, logger zerolog.Logger) *MetadataService {
	return &MetadataService{store: store, metrics: recorder, logger: logger}
}

// Link adds the edge left<->right to both sides of rel.
func (s *MetadataService) Link(ctx context.Context, rel domain.Relation, left, right []primitive.ObjectID) error {
	return s.apply(ctx, rel.Name+"_link",
		metadataUpdate{target: rel.Left, docIDs: left, values: right},
		metadataUpdate{target: rel.Right, docIDs: right, values: left},
	)
}

// Unlink removes the edge left<->right from both sides of rel.
func (s *MetadataService) Unlink(ctx context.Context, rel domain.Relation, left, right []primitive.ObjectID) error {
	return s.apply(ctx, rel.Name+"_unlink",
		metadataUpdate{target: rel.Left, docIDs: left, values: right, remove: true},
		metadataUpdate{target: rel.Right, docIDs: right, values: left, remove: true},
	)
}

// OnUserCreated registers a student or school official with their school.
func (s *MetadataService) OnUserCreated(ctx context.Context, u *domain.User) error {
	school, ok := u.School()
	if !ok {
		return nil
	}
	target := domain.MatchProfile(u.Profile,
		func(*domain.StudentProfile) domain.MetadataTarget { return domain.SchoolStudents },
		func(*domain.InstructorProfile) domain.MetadataTarget { return domain.MetadataTarget{} },
		func(*domain.SchoolOfficialProfile) domain.MetadataTarget { return domain.SchoolOfficialMembers },
	)
	return s.apply(ctx, "user_created", metadataUpdate{
		target: target,
		docIDs: []primitive.ObjectID{school},
		values: []primitive.ObjectID{u.ID},
	})
}

// OnUserDeleted removes the user from every chat, course and school that
// still references it.
func (s *MetadataService) OnUserDeleted(ctx context.Context, u *domain.User) error {
	self := []primitive.ObjectID{u.ID}
	updates := []metadataUpdate{
		{target: domain.ChatUsers, docIDs: u.Chats(), values: self, remove: true},
	}

	updates = append(updates, domain.MatchProfile(u.Profile,
		func(p *domain.StudentProfile) []metadataUpdate {
			return []metadataUpdate{
				{target: domain.CourseStudents, docIDs: p.Meta.Courses, values: self, remove: true},
				{target: domain.SchoolStudents, docIDs: idList(p.Meta.School), values: self, remove: true},
			}
		},
		func(p *domain.InstructorProfile) []metadataUpdate {
			return []metadataUpdate{
				{target: domain.CourseInstructors, docIDs: p.Meta.Courses, values: self, remove: true},
			}
		},
		func(p *domain.SchoolOfficialProfile) []metadataUpdate {
			return []metadataUpdate{
				{target: domain.SchoolOfficialMembers, docIDs: idList(p.Meta.School), values: self, remove: true},
			}
		},
	)...)

	return s.apply(ctx, "user_deleted", updates...)
}

// OnCourseCreated adds the course to its instructors and its school.
func (s *MetadataService) OnCourseCreated(ctx context.Context, c *domain.Course) error {
	self := []primitive.ObjectID{c.ID}
	return s.apply(ctx, "course_created",
		metadataUpdate{target: domain.InstructorCourses, docIDs: c.Meta.Instructors, values: self},
		metadataUpdate{target: domain.SchoolCourses, docIDs: idList(c.Meta.School), values: self},
	)
}

// OnCourseDeleted removes the course from its instructors, students and school.
func (s *MetadataService) OnCourseDeleted(ctx context.Context, c *domain.Course) error {
	self := []primitive.ObjectID{c.ID}
	return s.apply(ctx, "course_deleted",
		metadataUpdate{target: domain.InstructorCourses, docIDs: c.Meta.Instructors, values: self, remove: true},
		metadataUpdate{target: domain.StudentCourses, docIDs: c.Meta.Students, values: self, remove: true},
		metadataUpdate{target: domain.SchoolCourses, docIDs: idList(c.Meta.School), values: self, remove: true},
	)
}

func (s *MetadataService) OnCourseEnroll(ctx context.Context, courseID, studentID primitive.ObjectID) error {
	return s.Link(ctx, domain.Enrollment, idList(studentID), idList(courseID))
}

func (s *MetadataService) OnCourseDrop(ctx context.Context, courseID, studentID primitive.ObjectID) error {
	return s.Unlink(ctx, domain.Enrollment, idList(studentID), idList(courseID))
}

// OnChatCreated adds the chat to each member. The chat document already
// lists its members.
func (s *MetadataService) OnChatCreated(ctx context.Context, c *domain.Chat) error {
	return s.apply(ctx, "chat_created",
		metadataUpdate{target: domain.UserChats, docIDs: c.Meta.Users, values: idList(c.ID)},
	)
}

func (s *MetadataService) OnChatDeleted(ctx context.Context, c *domain.Chat) error {
	return s.apply(ctx, "chat_deleted",
		metadataUpdate{target: domain.UserChats, docIDs: c.Meta.Users, values: idList(c.ID), remove: true},
	)
}

// apply runs every non-empty update concurrently and waits for all of them.
// A failing update does not cancel the others.
func (s *MetadataService) apply(ctx context.Context, operation string, updates ...metadataUpdate) error {
	start := time.Now()

	var (
		g       errgroup.Group
		mu      sync.Mutex
		applied []string
		failed  = make(map[string]error)
	)

	for _, u := range updates {
		if u.empty() || u.target.Field == "" {
			continue
		}
		g.Go(func() error {
			var err error
			if u.remove {
				err = s.store.PullAll(ctx, u.target, u.docIDs, u.values)
			} else {
				err = s.store.AddToSet(ctx, u.target, u.docIDs, u.values)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[u.target.Name] = fmt.Errorf("%s: %w", u.target.Field, err)
				return err
			}
			applied = append(applied, u.target.Name)
			return nil
		})
	}
	_ = g.Wait()

	elapsed := time.Since(start)

	if len(failed) == 0 {
		s.metrics.MetadataUpdate(operation, "ok", elapsed)
		s.logger.Debug().Str("operation", operation).Strs("targets", applied).Msg("metadata updated")
		return nil
	}

	result := &domain.MetadataUpdateError{Operation: operation, Applied: applied, Failed: failed}
	outcome := "failed"
	if result.Partial() {
		outcome = "partial"
	}
	s.metrics.MetadataUpdate(operation, outcome, elapsed)

	s.logger.Error().
		Err(result).
		Str("operation", operation).
		Strs("applied", applied).
		Msg("metadata update incomplete")

	return result
}

func idList(id primitive.ObjectID) []primitive.ObjectID {
	if id.IsZero() {
		return nil
	}
	return []primitive.ObjectID{id}
}
