package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
	"github.com/omerdemirkan/stem-bound-api/internal/core/ports"
)

type CourseHandler struct {
	courses ports.CourseService
}

func NewCourseHandler(courses ports.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

type courseMetaRequest struct {
	Instructors []string `json:"instructors" validate:"required,min=1,dive,objectid"`
	School      string   `json:"school" validate:"required,objectid"`
}

// createCourseRequest is the only course body allowed to carry meta; it
// names the initial instructors and the school.
type createCourseRequest struct {
	Title            string            `json:"title" validate:"required,max=100"`
	ShortDescription string            `json:"shortDescription" validate:"max=300"`
	LongDescription  string            `json:"longDescription" validate:"max=2000"`
	Meta             courseMetaRequest `json:"meta"`
}

type updateCourseRequest struct {
	Title            *string `json:"title" validate:"omitempty,min=1,max=100"`
	ShortDescription *string `json:"shortDescription" validate:"omitempty,max=300"`
	LongDescription  *string `json:"longDescription" validate:"omitempty,max=2000"`
}

type verificationStatusRequest struct {
	VerificationStatus string `json:"verificationStatus" validate:"required"`
}

// List handles GET /v1/courses.
//
// @Summary      List courses
// @Tags         courses
// @Produce      json
// @Param        school              query     string  false  "School id"
// @Param        instructor          query     string  false  "Instructor id"
// @Param        student             query     string  false  "Student id"
// @Param        verificationStatus  query     string  false  "PENDING_VERIFICATION, VERIFIED or DISMISSED"
// @Param        text                query     string  false  "Full text search"
// @Param        skip                query     int     false  "Documents to skip"
// @Param        limit               query     int     false  "Page size"
// @Param        sort                query     string  false  "e.g. -createdAt"
// @Success      200                 {object}  response{data=[]domain.Course}
// @Failure      400                 {object}  errorResponse
// @Router       /v1/courses [get]
func (h *CourseHandler) List(c echo.Context) error {
	var (
		f   ports.CourseFilter
		err error
	)
	if f.School, err = idQuery(c, "school"); err != nil {
		return err
	}
	if f.Instructor, err = idQuery(c, "instructor"); err != nil {
		return err
	}
	if f.Student, err = idQuery(c, "student"); err != nil {
		return err
	}
	if raw := c.QueryParam("verificationStatus"); raw != "" {
		if f.VerificationStatus, err = domain.ParseVerificationStatus(raw); err != nil {
			return err
		}
	}
	f.Text = c.QueryParam("text")
	page, err := parsePage(c, courseSortFields)
	if err != nil {
		return err
	}

	courses, err := h.courses.FindCourses(c.Request().Context(), f, page)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Courses fetched successfully", courses)
}

// Get handles GET /v1/courses/:id.
//
// @Summary      Get a course
// @Tags         courses
// @Produce      json
// @Param        id   path      string  true  "Course id"
// @Success      200  {object}  response{data=domain.Course}
// @Failure      404  {object}  errorResponse
// @Router       /v1/courses/{id} [get]
func (h *CourseHandler) Get(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	course, err := h.courses.FindCourseByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Course fetched successfully", course)
}

// Instructors handles GET /v1/courses/:id/instructors.
//
// @Summary      Instructors of a course
// @Tags         courses
// @Produce      json
// @Param        id   path      string  true  "Course id"
// @Success      200  {object}  response{data=[]userView}
// @Failure      404  {object}  errorResponse
// @Router       /v1/courses/{id}/instructors [get]
func (h *CourseHandler) Instructors(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	page, err := parsePage(c, userSortFields)
	if err != nil {
		return err
	}
	users, err := h.courses.FindCourseInstructors(c.Request().Context(), id, page)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Instructors fetched successfully", newUserViews(users))
}

// Students handles GET /v1/courses/:id/students.
//
// @Summary      Students of a course
// @Tags         courses
// @Produce      json
// @Param        id   path      string  true  "Course id"
// @Success      200  {object}  response{data=[]userView}
// @Failure      404  {object}  errorResponse
// @Router       /v1/courses/{id}/students [get]
func (h *CourseHandler) Students(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	page, err := parsePage(c, userSortFields)
	if err != nil {
		return err
	}
	users, err := h.courses.FindCourseStudents(c.Request().Context(), id, page)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Students fetched successfully", newUserViews(users))
}

// School handles GET /v1/courses/:id/school.
//
// @Summary      School of a course
// @Tags         courses
// @Produce      json
// @Param        id   path      string  true  "Course id"
// @Success      200  {object}  response{data=domain.School}
// @Failure      404  {object}  errorResponse
// @Router       /v1/courses/{id}/school [get]
func (h *CourseHandler) School(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	school, err := h.courses.FindCourseSchool(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "School fetched successfully", school)
}

// Create handles POST /v1/courses.
//
// @Summary      Create a course
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createCourseRequest  true  "New course"
// @Success      201   {object}  response{data=domain.Course}
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/courses [post]
func (h *CourseHandler) Create(c echo.Context) error {
	payload, err := ctxPayload(c)
	if err != nil {
		return err
	}
	var req createCourseRequest
	if err := c.Bind(&req); err != nil {
		return domain.BadRequest("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	instructors, err := parseIDs(req.Meta.Instructors, "meta.instructors")
	if err != nil {
		return err
	}
	school, err := parseIDs([]string{req.Meta.School}, "meta.school")
	if err != nil {
		return err
	}

	course, err := h.courses.CreateCourse(c.Request().Context(), payload.User, ports.CreateCourseInput{
		Title:            req.Title,
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		Instructors:      instructors,
		School:           school[0],
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Course created successfully", course)
}

// Update handles PATCH /v1/courses/:id.
//
// @Summary      Update a course
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Course id"
// @Param        body  body      updateCourseRequest  true  "Fields to change"
// @Success      200   {object}  response{data=domain.Course}
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/courses/{id} [patch]
func (h *CourseHandler) Update(c echo.Context) error {
	payload, err := ctxPayload(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req updateCourseRequest
	if err := c.Bind(&req); err != nil {
		return domain.BadRequest("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	course, err := h.courses.UpdateCourse(c.Request().Context(), payload.User, id, ports.CourseUpdate{
		Title:            req.Title,
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Course updated successfully", course)
}

// Delete handles DELETE /v1/courses/:id.
//
// @Summary      Delete a course
// @Tags         courses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Course id"
// @Success      200  {object}  response{data=domain.Course}
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/courses/{id} [delete]
func (h *CourseHandler) Delete(c echo.Context) error {
	payload, err := ctxPayload(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	course, err := h.courses.DeleteCourse(c.Request().Context(), payload.User, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Course deleted successfully", course)
}

// Enroll handles POST /v1/courses/:id/enroll.
//
// @Summary      Enroll in a course
// @Tags         courses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Course id"
// @Success      200  {object}  response{data=domain.Course}
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/courses/{id}/enroll [post]
func (h *CourseHandler) Enroll(c echo.Context) error {
	return h.pairing(c, h.courses.Enroll, "Enrolled successfully")
}

// Drop handles POST /v1/courses/:id/drop.
//
// @Summary      Drop a course
// @Tags         courses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Course id"
// @Success      200  {object}  response{data=domain.Course}
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/courses/{id}/drop [post]
func (h *CourseHandler) Drop(c echo.Context) error {
	return h.pairing(c, h.courses.Drop, "Dropped successfully")
}

type pairingFunc func(ctx context.Context, requester domain.TokenUser, id primitive.ObjectID) error

func (h *CourseHandler) pairing(c echo.Context, apply pairingFunc, message string) error {
	payload, err := ctxPayload(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := apply(ctx, payload.User, id); err != nil {
		return err
	}
	course, err := h.courses.FindCourseByID(ctx, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, message, course)
}

// UpdateVerificationStatus handles PATCH /v1/courses/:id/verification-status.
//
// @Summary      Verify, dismiss or resubmit a course
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                     true  "Course id"
// @Param        body  body      verificationStatusRequest  true  "New status"
// @Success      200   {object}  response{data=domain.Course}
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/courses/{id}/verification-status [patch]
func (h *CourseHandler) UpdateVerificationStatus(c echo.Context) error {
	payload, err := ctxPayload(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req verificationStatusRequest
	if err := c.Bind(&req); err != nil {
		return domain.BadRequest("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	status, err := domain.ParseVerificationStatus(req.VerificationStatus)
	if err != nil {
		return err
	}

	course, err := h.courses.UpdateVerificationStatus(c.Request().Context(), payload.User, id, status)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Verification status updated successfully", course)
}

type inviteInstructorRequest struct {
	InvitedUserID string `json:"invitedUserId" validate:"required,objectid"`
}

type acceptInvitationRequest struct {
	InvitationToken string `json:"invitationToken" validate:"required"`
}

// Invite handles POST /v1/courses/:id/invitations. The invitation token is
// returned to the inviter, who forwards it to the invitee.
//
// @Summary      Invite an instructor to a course
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                   true  "Course id"
// @Param        body  body      inviteInstructorRequest  true  "Invited instructor"
// @Success      200   {object}  response{data=invitationView}
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/courses/{id}/invitations [post]
func (h *CourseHandler) Invite(c echo.Context) error {
	payload, err := ctxPayload(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req inviteInstructorRequest
	if err := c.Bind(&req); err != nil {
		return domain.BadRequest("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	invited, err := parseIDs([]string{req.InvitedUserID}, "invitedUserId")
	if err != nil {
		return err
	}

	res, err := h.courses.InviteInstructor(c.Request().Context(), payload.User, id, invited[0])
	if err != nil {
		return err
	}
	view := invitationView{Invited: newUserView(res.Invited), InvitationToken: res.Token}
	if res.AlreadyInstructor {
		return respond(c, http.StatusOK, res.Invited.FirstName+" is already an instructor", view)
	}
	return respond(c, http.StatusOK, res.Invited.FirstName+" was successfully invited as an instructor", view)
}

// AcceptInvitation handles POST /v1/courses/:id/invitations/accept.
//
// @Summary      Accept an instructor invitation
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                   true  "Course id"
// @Param        body  body      acceptInvitationRequest  true  "Invitation token"
// @Success      200   {object}  response{data=domain.Course}
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/courses/{id}/invitations/accept [post]
func (h *CourseHandler) AcceptInvitation(c echo.Context) error {
	payload, err := ctxPayload(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req acceptInvitationRequest
	if err := c.Bind(&req); err != nil {
		return domain.BadRequest("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	course, err := h.courses.AcceptInstructorInvitation(c.Request().Context(), payload.User, id, req.InvitationToken)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Instructor successfully added", course)
}
