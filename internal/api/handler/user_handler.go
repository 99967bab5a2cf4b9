package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
	"github.com/omerdemirkan/stem-bound-api/internal/core/ports"
)

// UserHandler serves /v1/users and the relationships hanging off a user.
type UserHandler struct {
	users   ports.UserService
	courses ports.CourseService
	schools ports.SchoolService
	chats   ports.ChatService
}

func NewUserHandler(users ports.UserService, courses ports.CourseService, schools ports.SchoolService, chats ports.ChatService) *UserHandler {
	return &UserHandler{users: users, courses: courses, schools: schools, chats: chats}
}

type updateUserRequest struct {
	FirstName         *string `json:"firstName" validate:"omitempty,min=1,max=50"`
	LastName          *string `json:"lastName" validate:"omitempty,min=1,max=50"`
	ShortDescription  *string `json:"shortDescription" validate:"omitempty,max=300"`
	LongDescription   *string `json:"longDescription" validate:"omitempty,max=2000"`
	ProfilePictureURL *string `json:"profilePictureUrl" validate:"omitempty,url"`

	Interests         *[]string `json:"interests"`
	InitialGradeLevel *int      `json:"initialGradeLevel" validate:"omitempty,min=1,max=12"`
	InitialSchoolYear *string   `json:"initialSchoolYear"`
	Specialties       *[]string `json:"specialties"`
	Position          *string   `json:"position"`
}

type updateLocationRequest struct {
	Zip string `json:"zip" validate:"required"`
}

// List handles GET /v1/users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        role     query     string  false  "STUDENT, INSTRUCTOR or SCHOOL_OFFICIAL"
// @Param        text     query     string  false  "Full text search"
// @Param        ids      query     string  false  "Comma separated ids to include"
// @Param        exclude  query     string  false  "Comma separated ids to exclude"
// @Param        lat      query     number  false  "Latitude; with lng orders by distance"
// @Param        lng      query     number  false  "Longitude"
// @Param        skip     query     int     false  "Documents to skip"
// @Param        limit    query     int     false  "Page size"
// @Param        sort     query     string  false  "e.g. -createdAt,firstName"
// @Success      200      {object}  response{data=[]userView}
// @Failure      400      {object}  errorResponse
// @Router       /v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	var (
		q   ports.UserQuery
		err error
	)
	if raw := c.QueryParam("role"); raw != "" {
		if q.Filter.Role, err = domain.ParseUserRole(raw); err != nil {
			return err
		}
	}
	if q.Filter.IDs, err = idsQuery(c, "ids"); err != nil {
		return err
	}
	if q.Filter.ExcludeIDs, err = idsQuery(c, "exclude"); err != nil {
		return err
	}
	q.Filter.Text = c.QueryParam("text")
	if q.Page, err = parsePage(c, userSortFields); err != nil {
		return err
	}
	if q.Near, err = parseNear(c); err != nil {
		return err
	}

	users, err := h.users.FindUsers(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Users fetched successfully", newUserViews(users))
}

// Get handles GET /v1/users/:id.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  response{data=userView}
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	user, err := h.users.FindUserByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User fetched successfully", newUserView(user))
}

// Update handles PATCH /v1/users/:id. Metadata is rejected before this runs.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  response{data=userView}
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/users/{id} [patch]
func (h *UserHandler) Update(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return domain.BadRequest("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.users.UpdateUser(c.Request().Context(), id, ports.UserUpdate{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		ShortDescription:  req.ShortDescription,
		LongDescription:   req.LongDescription,
		ProfilePictureURL: req.ProfilePictureURL,
		Interests:         req.Interests,
		InitialGradeLevel: req.InitialGradeLevel,
		InitialSchoolYear: req.InitialSchoolYear,
		Specialties:       req.Specialties,
		Position:          req.Position,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User updated successfully", newUserView(user))
}

// Delete handles DELETE /v1/users/:id.
//
// @Summary      Delete a user
// @Description  Removes the user, then its id from every chat, course and school referencing it.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  response{data=userView}
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	user, err := h.users.DeleteUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User deleted successfully", newUserView(user))
}

// UpdateLocation handles PUT /v1/users/:id/location.
//
// @Summary      Set a user's location by zip code
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "User id"
// @Param        body  body      updateLocationRequest  true  "Zip code"
// @Success      200   {object}  response{data=userView}
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/users/{id}/location [put]
func (h *UserHandler) UpdateLocation(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req updateLocationRequest
	if err := c.Bind(&req); err != nil {
		return domain.BadRequest("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.users.UpdateUserLocationByZip(c.Request().Context(), id, req.Zip)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User location updated successfully", newUserView(user))
}

// Courses handles GET /v1/users/:id/courses.
//
// @Summary      Courses a user takes or teaches
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  response{data=[]domain.Course}
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id}/courses [get]
func (h *UserHandler) Courses(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	page, err := parsePage(c, courseSortFields)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.users.FindUserByID(ctx, id)
	if err != nil {
		return err
	}
	ids := user.Courses()
	if len(ids) == 0 {
		return respond(c, http.StatusOK, "Courses fetched successfully", []*domain.Course{})
	}

	courses, err := h.courses.FindCourses(ctx, ports.CourseFilter{IDs: ids}, page)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Courses fetched successfully", courses)
}

// School handles GET /v1/users/:id/school.
//
// @Summary      A user's school
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  response{data=domain.School}
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id}/school [get]
func (h *UserHandler) School(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.users.FindUserByID(ctx, id)
	if err != nil {
		return err
	}
	schoolID, ok := user.School()
	if !ok {
		return domain.NotFound("user has no school")
	}

	school, err := h.schools.FindSchoolByID(ctx, schoolID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "School fetched successfully", school)
}

// Chats handles GET /v1/users/:id/chats. user_ids narrows the result to chats
// shared with those users; exact excludes chats with anyone else.
//
// @Summary      A user's chats
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      string  true   "User id"
// @Param        user_ids  query     string  false  "Comma separated ids of other members"
// @Param        exact     query     bool    false  "Only chats with exactly these members"
// @Param        skip      query     int     false  "Documents to skip"
// @Param        limit     query     int     false  "Page size"
// @Success      200       {object}  response{data=[]domain.Chat}
// @Failure      403       {object}  errorResponse
// @Router       /v1/users/{id}/chats [get]
func (h *UserHandler) Chats(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	others, err := idsQuery(c, "user_ids")
	if err != nil {
		return err
	}
	exact, err := boolQuery(c, "exact")
	if err != nil {
		return err
	}
	page, err := parsePage(c, chatSortFields)
	if err != nil {
		return err
	}

	members := domain.UniqueIDs(append([]primitive.ObjectID{id}, others...))
	chats, err := h.chats.FindChats(c.Request().Context(), ports.ChatFilter{Users: members, Exact: exact}, page)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Chats fetched successfully", chats)
}
