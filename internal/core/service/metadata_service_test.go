package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
	"github.com/omerdemirkan/stem-bound-api/internal/core/ports"
)

var errStoreDown = errors.New("store down")

func TestEnrollThenDrop_LeavesNoReference(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	school := h.w.addSchool("Lincoln High")
	instructor := h.w.addUser(domain.RoleInstructor, primitive.NilObjectID)
	student := h.w.addUser(domain.RoleStudent, school.ID)
	course := h.w.addCourse(school.ID, instructor.ID)

	require.NoError(t, h.courses.Enroll(ctx, tokenUser(student), course.ID))
	require.NoError(t, h.courses.Enroll(ctx, tokenUser(student), course.ID))

	require.Equal(t, []primitive.ObjectID{student.ID}, course.Meta.Students)
	require.Equal(t, []primitive.ObjectID{course.ID}, student.Courses())

	require.NoError(t, h.courses.Drop(ctx, tokenUser(student), course.ID))

	require.Empty(t, course.Meta.Students)
	require.Empty(t, student.Courses())
}

func TestConcurrentEnrollAndDrop_LeavesNoReference(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	school := h.w.addSchool("Lincoln High")
	instructor := h.w.addUser(domain.RoleInstructor, primitive.NilObjectID)
	course := h.w.addCourse(school.ID, instructor.ID)

	const students = 8
	const repeats = 3
	var enrolled []*domain.User
	for i := 0; i < students; i++ {
		enrolled = append(enrolled, h.w.addUser(domain.RoleStudent, school.ID))
	}

	// Every student enrolls several times while also dropping, in no
	// particular order.
	var wg sync.WaitGroup
	errs := make(chan error, students*repeats*2)
	for _, student := range enrolled {
		for r := 0; r < repeats; r++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				errs <- h.courses.Enroll(ctx, tokenUser(student), course.ID)
			}()
			go func() {
				defer wg.Done()
				errs <- h.courses.Drop(ctx, tokenUser(student), course.ID)
			}()
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	h.w.mu.Lock()
	for _, student := range enrolled {
		require.LessOrEqual(t, countID(student.Courses(), course.ID), 1)
		require.LessOrEqual(t, countID(course.Meta.Students, student.ID), 1)
	}
	h.w.mu.Unlock()

	drops := make(chan error, students)
	wg.Add(students)
	for _, student := range enrolled {
		go func() {
			defer wg.Done()
			drops <- h.courses.Drop(ctx, tokenUser(student), course.ID)
		}()
	}
	wg.Wait()
	close(drops)
	for err := range drops {
		require.NoError(t, err)
	}

	require.Empty(t, course.Meta.Students)
	for _, student := range enrolled {
		require.Empty(t, student.Courses())
	}
}

func countID(ids []primitive.ObjectID, id primitive.ObjectID) int {
	n := 0
	for _, v := range ids {
		if v == id {
			n++
		}
	}
	return n
}

func TestDeleteUser_RemovesEveryReference(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	school := h.w.addSchool("Lincoln High")
	instructor := h.w.addUser(domain.RoleInstructor, primitive.NilObjectID)
	student := h.w.addUser(domain.RoleStudent, school.ID)
	course := h.w.addCourse(school.ID, instructor.ID)

	c1, err := h.chats.CreateChat(ctx, instructor.ID, chatInput(domain.ChatPrivate, instructor.ID, student.ID))
	require.NoError(t, err)
	official := h.w.addUser(domain.RoleSchoolOfficial, school.ID)
	c2, err := h.chats.CreateChat(ctx, student.ID, chatInput(domain.ChatGroup, student.ID, instructor.ID, official.ID))
	require.NoError(t, err)
	require.NoError(t, h.courses.Enroll(ctx, tokenUser(student), course.ID))
	school.Meta.Students = []primitive.ObjectID{student.ID}

	require.ElementsMatch(t, []primitive.ObjectID{c1.ID, c2.ID}, student.Chats())

	_, err = h.users.DeleteUser(ctx, student.ID)
	require.NoError(t, err)

	require.NotContains(t, c1.Meta.Users, student.ID)
	require.NotContains(t, c2.Meta.Users, student.ID)
	require.Contains(t, c1.Meta.Users, instructor.ID)
	require.Empty(t, course.Meta.Students)
	require.Empty(t, school.Meta.Students)

	_, err = h.users.FindUserByID(ctx, student.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteUser_PartialCascadeIsReported(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	school := h.w.addSchool("Lincoln High")
	instructor := h.w.addUser(domain.RoleInstructor, primitive.NilObjectID)
	student := h.w.addUser(domain.RoleStudent, school.ID)
	course := h.w.addCourse(school.ID, instructor.ID)
	require.NoError(t, h.courses.Enroll(ctx, tokenUser(student), course.ID))
	school.Meta.Students = []primitive.ObjectID{student.ID}

	h.w.fail[domain.SchoolStudents.Name] = errStoreDown

	_, err := h.users.DeleteUser(ctx, student.ID)
	require.Error(t, err)
	require.ErrorIs(t, err, errStoreDown)

	var mue *domain.MetadataUpdateError
	require.ErrorAs(t, err, &mue)
	require.Equal(t, "user_deleted", mue.Operation)
	require.True(t, mue.Partial())
	require.Contains(t, mue.Applied, domain.CourseStudents.Name)
	require.Contains(t, mue.Failed, domain.SchoolStudents.Name)
	require.Equal(t, 1, h.rec.metadata["user_deleted:partial"])

	// The primary delete and the applied targets are not rolled back.
	require.Empty(t, course.Meta.Students)
	require.Equal(t, []primitive.ObjectID{student.ID}, school.Meta.Students)
	_, err = h.users.FindUserByID(ctx, student.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLink_AllTargetsFailing_IsNotPartial(t *testing.T) {
	h := newHarness()
	h.w.fail[domain.StudentCourses.Name] = errStoreDown
	h.w.fail[domain.CourseStudents.Name] = errStoreDown

	err := h.metadata.Link(context.Background(), domain.Enrollment,
		[]primitive.ObjectID{primitive.NewObjectID()}, []primitive.ObjectID{primitive.NewObjectID()})

	var mue *domain.MetadataUpdateError
	require.ErrorAs(t, err, &mue)
	require.False(t, mue.Partial())
	require.Len(t, mue.Failed, 2)
	require.Equal(t, 1, h.rec.metadata["enrollment_link:failed"])
}

func TestOnCourseCreated_UpdatesInstructorsAndSchool(t *testing.T) {
	h := newHarness()

	school := h.w.addSchool("Lincoln High")
	a := h.w.addUser(domain.RoleInstructor, primitive.NilObjectID)
	b := h.w.addUser(domain.RoleInstructor, primitive.NilObjectID)
	course := h.w.addCourse(school.ID, a.ID, b.ID)

	require.NoError(t, h.metadata.OnCourseCreated(context.Background(), course))

	require.Equal(t, []primitive.ObjectID{course.ID}, a.Courses())
	require.Equal(t, []primitive.ObjectID{course.ID}, b.Courses())
	require.Equal(t, []primitive.ObjectID{course.ID}, school.Meta.Courses)
}

func TestOnUserCreated_InstructorTouchesNothing(t *testing.T) {
	h := newHarness()
	instructor := h.w.addUser(domain.RoleInstructor, primitive.NilObjectID)

	require.NoError(t, h.metadata.OnUserCreated(context.Background(), instructor))
	require.Zero(t, h.w.metadataCalls)
}

func TestOnUserCreated_OfficialJoinsSchool(t *testing.T) {
	h := newHarness()
	school := h.w.addSchool("Lincoln High")
	official := h.w.addUser(domain.RoleSchoolOfficial, school.ID)

	require.NoError(t, h.metadata.OnUserCreated(context.Background(), official))
	require.Equal(t, []primitive.ObjectID{official.ID}, school.Meta.SchoolOfficials)
	require.Empty(t, school.Meta.Students)
}

func TestChatCreatedThenDeleted_UpdatesMembers(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	a := h.w.addUser(domain.RoleInstructor, primitive.NilObjectID)
	b := h.w.addUser(domain.RoleInstructor, primitive.NilObjectID)

	chat, err := h.chats.CreateChat(ctx, a.ID, chatInput(domain.ChatGroup, a.ID, b.ID))
	require.NoError(t, err)
	require.Equal(t, []primitive.ObjectID{chat.ID}, a.Chats())
	require.Equal(t, []primitive.ObjectID{chat.ID}, b.Chats())

	_, err = h.chats.DeleteChat(ctx, a.ID, chat.ID)
	require.NoError(t, err)
	require.Empty(t, a.Chats())
	require.Empty(t, b.Chats())
}

func TestEmptyUpdates_AreSkipped(t *testing.T) {
	h := newHarness()

	err := h.metadata.Link(context.Background(), domain.Enrollment, nil, []primitive.ObjectID{primitive.NewObjectID()})
	require.NoError(t, err)
	require.Zero(t, h.w.metadataCalls)
}

func chatInput(typ domain.ChatType, users ...primitive.ObjectID) ports.CreateChatInput {
	return ports.CreateChatInput{Type: string(typ), Users: users}
}
