package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
	"github.com/omerdemirkan/stem-bound-api/internal/core/ports"
)

func TestCreateCourse(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	school := h.w.addSchool("Lincoln High")
	author := h.w.addUser(domain.RoleInstructor, primitive.NilObjectID)
	coTeacher := h.w.addUser(domain.RoleInstructor, primitive.NilObjectID)

	t.Run("requester must be listed", func(t *testing.T) {
		_, err := h.courses.CreateCourse(ctx, tokenUser(author), ports.CreateCourseInput{
			Title:       "Robotics",
			Instructors: []primitive.ObjectID{coTeacher.ID},
			School:      school.ID,
		})
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("unknown school", func(t *testing.T) {
		_, err := h.courses.CreateCourse(ctx, tokenUser(author), ports.CreateCourseInput{
			Title:       "Robotics",
			Instructors: []primitive.ObjectID{author.ID},
			School:      primitive.NewObjectID(),
		})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("co-instructor must be an instructor", func(t *testing.T) {
		student := h.w.addUser(domain.RoleStudent, school.ID)
		_, err := h.courses.CreateCourse(ctx, tokenUser(author), ports.CreateCourseInput{
			Title:       "Robotics",
			Instructors: []primitive.ObjectID{author.ID, student.ID},
			School:      school.ID,
		})
		require.ErrorIs(t, err, domain.ErrBadRequest)
		require.Empty(t, student.Courses())
		require.Empty(t, author.Courses())
	})

	t.Run("co-instructor must exist", func(t *testing.T) {
		_, err := h.courses.CreateCourse(ctx, tokenUser(author), ports.CreateCourseInput{
			Title:       "Robotics",
			Instructors: []primitive.ObjectID{author.ID, primitive.NewObjectID()},
			School:      school.ID,
		})
		require.ErrorIs(t, err, domain.ErrBadRequest)
		require.Empty(t, school.Meta.Courses)
	})

	t.Run("created pending and linked", func(t *testing.T) {
		course, err := h.courses.CreateCourse(ctx, tokenUser(author), ports.CreateCourseInput{
			Title:       "Robotics",
			Instructors: []primitive.ObjectID{author.ID, coTeacher.ID, author.ID},
			School:      school.ID,
		})
		require.NoError(t, err)
		require.Equal(t, domain.VerificationPending, course.VerificationStatus)
		require.Equal(t, []primitive.ObjectID{author.ID, coTeacher.ID}, course.Meta.Instructors)
		require.NotNil(t, course.Meta.Students)
		require.Empty(t, course.Meta.Students)

		require.Equal(t, []primitive.ObjectID{course.ID}, author.Courses())
		require.Equal(t, []primitive.ObjectID{course.ID}, coTeacher.Courses())
		require.Equal(t, []primitive.ObjectID{course.ID}, school.Meta.Courses)
	})
}

func TestUpdateVerificationStatus(t *testing.T) {
	school := primitive.NewObjectID()
	otherSchool := primitive.NewObjectID()

	tests := []struct {
		name    string
		who     func(h *harness, course *domain.Course) domain.TokenUser
		status  domain.VerificationStatus
		wantErr error
	}{
		{
			name: "instructor resubmits",
			who: func(h *harness, c *domain.Course) domain.TokenUser {
				return tokenUser(h.w.users[c.Meta.Instructors[0]])
			},
			status: domain.VerificationPending,
		},
		{
			name: "instructor cannot verify",
			who: func(h *harness, c *domain.Course) domain.TokenUser {
				return tokenUser(h.w.users[c.Meta.Instructors[0]])
			},
			status:  domain.VerificationVerified,
			wantErr: domain.ErrForbidden,
		},
		{
			name: "unrelated instructor",
			who: func(h *harness, _ *domain.Course) domain.TokenUser {
				return tokenUser(h.w.addUser(domain.RoleInstructor, primitive.NilObjectID))
			},
			status:  domain.VerificationPending,
			wantErr: domain.ErrForbidden,
		},
		{
			name: "official verifies",
			who: func(h *harness, _ *domain.Course) domain.TokenUser {
				return tokenUser(h.w.addUser(domain.RoleSchoolOfficial, school))
			},
			status: domain.VerificationVerified,
		},
		{
			name: "official cannot reset to pending",
			who: func(h *harness, _ *domain.Course) domain.TokenUser {
				return tokenUser(h.w.addUser(domain.RoleSchoolOfficial, school))
			},
			status:  domain.VerificationPending,
			wantErr: domain.ErrBadRequest,
		},
		{
			name: "official of another school",
			who: func(h *harness, _ *domain.Course) domain.TokenUser {
				return tokenUser(h.w.addUser(domain.RoleSchoolOfficial, otherSchool))
			},
			status:  domain.VerificationDismissed,
			wantErr: domain.ErrForbidden,
		},
		{
			name: "student",
			who: func(h *harness, _ *domain.Course) domain.TokenUser {
				return tokenUser(h.w.addUser(domain.RoleStudent, school))
			},
			status:  domain.VerificationVerified,
			wantErr: domain.ErrForbidden,
		},
		{
			name: "admin",
			who: func(*harness, *domain.Course) domain.TokenUser {
				return domain.TokenUser{ID: "admin", Role: domain.RoleAdmin}
			},
			status: domain.VerificationDismissed,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness()
			instructor := h.w.addUser(domain.RoleInstructor, primitive.NilObjectID)
			course := h.w.addCourse(school, instructor.ID)
			course.VerificationStatus = domain.VerificationDismissed

			got, err := h.courses.UpdateVerificationStatus(context.Background(), tc.who(h, course), course.ID, tc.status)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				require.Equal(t, domain.VerificationDismissed, course.VerificationStatus)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.status, got.VerificationStatus)
		})
	}
}

func TestUpdateAndDeleteCourse_RequireInstructor(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	school := h.w.addSchool("Lincoln High")
	instructor := h.w.addUser(domain.RoleInstructor, primitive.NilObjectID)
	outsider := h.w.addUser(domain.RoleInstructor, primitive.NilObjectID)
	student := h.w.addUser(domain.RoleStudent, school.ID)

	course, err := h.courses.CreateCourse(ctx, tokenUser(instructor), ports.CreateCourseInput{
		Title: "Robotics", Instructors: []primitive.ObjectID{instructor.ID}, School: school.ID,
	})
	require.NoError(t, err)
	require.NoError(t, h.courses.Enroll(ctx, tokenUser(student), course.ID))

	title := "Advanced Robotics"
	_, err = h.courses.UpdateCourse(ctx, tokenUser(outsider), course.ID, ports.CourseUpdate{Title: &title})
	require.ErrorIs(t, err, domain.ErrForbidden)

	blank := "  "
	_, err = h.courses.UpdateCourse(ctx, tokenUser(instructor), course.ID, ports.CourseUpdate{Title: &blank})
	require.ErrorIs(t, err, domain.ErrBadRequest)

	updated, err := h.courses.UpdateCourse(ctx, tokenUser(instructor), course.ID, ports.CourseUpdate{Title: &title})
	require.NoError(t, err)
	require.Equal(t, title, updated.Title)

	_, err = h.courses.DeleteCourse(ctx, tokenUser(outsider), course.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = h.courses.DeleteCourse(ctx, tokenUser(instructor), course.ID)
	require.NoError(t, err)
	require.Empty(t, instructor.Courses())
	require.Empty(t, student.Courses())
	require.Empty(t, school.Meta.Courses)
}

func TestDeleteCourse_Admin(t *testing.T) {
	h := newHarness()
	school := h.w.addSchool("Lincoln High")
	instructor := h.w.addUser(domain.RoleInstructor, primitive.NilObjectID)
	course := h.w.addCourse(school.ID, instructor.ID)

	admin := domain.TokenUser{ID: "admin", Role: domain.RoleAdmin}
	_, err := h.courses.DeleteCourse(context.Background(), admin, course.ID)
	require.NoError(t, err)

	_, err = h.courses.FindCourseByID(context.Background(), course.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEnroll_UnknownCourse(t *testing.T) {
	h := newHarness()
	student := h.w.addUser(domain.RoleStudent, primitive.NewObjectID())

	err := h.courses.Enroll(context.Background(), tokenUser(student), primitive.NewObjectID())
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.Zero(t, h.w.metadataCalls)
}

func TestFindCourseStudents(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	school := h.w.addSchool("Lincoln High")
	instructor := h.w.addUser(domain.RoleInstructor, primitive.NilObjectID)
	student := h.w.addUser(domain.RoleStudent, school.ID)
	course := h.w.addCourse(school.ID, instructor.ID)

	students, err := h.courses.FindCourseStudents(ctx, course.ID, ports.Page{})
	require.NoError(t, err)
	require.Empty(t, students)

	require.NoError(t, h.courses.Enroll(ctx, tokenUser(student), course.ID))
	students, err = h.courses.FindCourseStudents(ctx, course.ID, ports.Page{})
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.Equal(t, student.ID, students[0].ID)

	got, err := h.courses.FindCourseSchool(ctx, course.ID)
	require.NoError(t, err)
	require.Equal(t, school.ID, got.ID)

	if _, err := h.courses.FindCourseInstructors(ctx, primitive.NewObjectID(), ports.Page{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateCourse_ManyInstructorsAreResolved(t *testing.T) {
	h := newHarness()
	school := h.w.addSchool("Lincoln High")

	// More instructors than one page of users holds.
	var ids []primitive.ObjectID
	for i := 0; i < ports.DefaultPageLimits().Max+5; i++ {
		ids = append(ids, h.w.addUser(domain.RoleInstructor, primitive.NilObjectID).ID)
	}

	course, err := h.courses.CreateCourse(context.Background(), domain.TokenUser{ID: ids[0].Hex(), Role: domain.RoleInstructor}, ports.CreateCourseInput{
		Title: "Robotics", Instructors: ids, School: school.ID,
	})
	require.NoError(t, err)
	require.Len(t, course.Meta.Instructors, len(ids))
}

func TestEnroll_DeletedStudent(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	school := h.w.addSchool("Lincoln High")
	instructor := h.w.addUser(domain.RoleInstructor, primitive.NilObjectID)
	student := h.w.addUser(domain.RoleStudent, school.ID)
	course := h.w.addCourse(school.ID, instructor.ID)

	stale := tokenUser(student)
	_, err := h.users.DeleteUser(ctx, student.ID)
	require.NoError(t, err)
	calls := h.w.metadataCalls

	err = h.courses.Enroll(ctx, stale, course.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.Empty(t, course.Meta.Students)
	require.Equal(t, calls, h.w.metadataCalls)
}

func TestInstructorInvitation(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	school := h.w.addSchool("Lincoln High")
	inviter := h.w.addUser(domain.RoleInstructor, primitive.NilObjectID)
	invitee := h.w.addUser(domain.RoleInstructor, primitive.NilObjectID)
	stranger := h.w.addUser(domain.RoleInstructor, primitive.NilObjectID)
	student := h.w.addUser(domain.RoleStudent, school.ID)
	course := h.w.addCourse(school.ID, inviter.ID)
	other := h.w.addCourse(school.ID, inviter.ID)
	require.NoError(t, h.metadata.OnCourseCreated(ctx, course))

	t.Run("inviter must teach the course", func(t *testing.T) {
		_, err := h.courses.InviteInstructor(ctx, tokenUser(stranger), course.ID, invitee.ID)
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("invitee must be an instructor", func(t *testing.T) {
		_, err := h.courses.InviteInstructor(ctx, tokenUser(inviter), course.ID, student.ID)
		require.ErrorIs(t, err, domain.ErrBadRequest)
	})

	t.Run("existing instructor gets no token", func(t *testing.T) {
		res, err := h.courses.InviteInstructor(ctx, tokenUser(inviter), course.ID, inviter.ID)
		require.NoError(t, err)
		require.True(t, res.AlreadyInstructor)
		require.Empty(t, res.Token)
	})

	res, err := h.courses.InviteInstructor(ctx, tokenUser(inviter), course.ID, invitee.ID)
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.Equal(t, invitee.ID, res.Invited.ID)

	t.Run("only the invitee can accept", func(t *testing.T) {
		_, err := h.courses.AcceptInstructorInvitation(ctx, tokenUser(stranger), course.ID, res.Token)
		require.ErrorIs(t, err, domain.ErrForbidden)
		require.NotContains(t, course.Meta.Instructors, stranger.ID)
	})

	t.Run("invitation is bound to its course", func(t *testing.T) {
		_, err := h.courses.AcceptInstructorInvitation(ctx, tokenUser(invitee), other.ID, res.Token)
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := h.courses.AcceptInstructorInvitation(ctx, tokenUser(invitee), course.ID, "not-a-token")
		require.ErrorIs(t, err, domain.ErrInvalidInvitation)
	})

	accepted, err := h.courses.AcceptInstructorInvitation(ctx, tokenUser(invitee), course.ID, res.Token)
	require.NoError(t, err)
	require.Equal(t, []primitive.ObjectID{inviter.ID, invitee.ID}, accepted.Meta.Instructors)
	require.Equal(t, []primitive.ObjectID{course.ID}, invitee.Courses())

	// Accepting twice keeps a single reference on each side.
	_, err = h.courses.AcceptInstructorInvitation(ctx, tokenUser(invitee), course.ID, res.Token)
	require.NoError(t, err)
	require.Len(t, course.Meta.Instructors, 2)
	require.Len(t, invitee.Courses(), 1)
}
