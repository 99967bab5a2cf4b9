package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
	"github.com/omerdemirkan/stem-bound-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type signUpMeta struct {
	School string `json:"school" validate:"omitempty,objectid"`
}

type signUpRequest struct {
	Role              string `json:"role"`
	FirstName         string `json:"firstName" validate:"required,max=50"`
	LastName          string `json:"lastName" validate:"required,max=50"`
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password" validate:"required"`
	ShortDescription  string `json:"shortDescription" validate:"max=300"`
	LongDescription   string `json:"longDescription" validate:"max=2000"`
	ProfilePictureURL string `json:"profilePictureUrl" validate:"omitempty,url"`
	Zip               string `json:"zip"`
	School            string `json:"school" validate:"omitempty,objectid"`
	// Meta is accepted on sign-up only to name the user's school.
	Meta *signUpMeta `json:"meta"`

	Interests         []string `json:"interests"`
	InitialGradeLevel int      `json:"initialGradeLevel" validate:"omitempty,min=1,max=12"`
	InitialSchoolYear string   `json:"initialSchoolYear"`
	Specialties       []string `json:"specialties"`
	Position          string   `json:"position"`
}

func (r signUpRequest) schoolID() primitive.ObjectID {
	hex := r.School
	if hex == "" && r.Meta != nil {
		hex = r.Meta.School
	}
	id, _ := primitive.ObjectIDFromHex(hex)
	return id
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignUp creates a user of the requested role and signs them in.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        role  query     string         false  "STUDENT, INSTRUCTOR or SCHOOL_OFFICIAL; may be given in the body instead"
// @Param        body  body      signUpRequest  true   "New user"
// @Success      201   {object}  response{data=authView}
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return domain.BadRequest("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	role := c.QueryParam("role")
	if role == "" {
		role = req.Role
	}

	result, err := h.authService.SignUp(c.Request().Context(), ports.CreateUserInput{
		Role:              role,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		Password:          req.Password,
		ShortDescription:  req.ShortDescription,
		LongDescription:   req.LongDescription,
		ProfilePictureURL: req.ProfilePictureURL,
		Zip:               req.Zip,
		School:            req.schoolID(),
		Interests:         req.Interests,
		InitialGradeLevel: req.InitialGradeLevel,
		InitialSchoolYear: req.InitialSchoolYear,
		Specialties:       req.Specialties,
		Position:          req.Position,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "Sign up successful", newAuthView(result.User, result.AccessToken))
}

// Login exchanges credentials for an access token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  response{data=authView}
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return domain.BadRequest("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Login successful", newAuthView(result.User, result.AccessToken))
}

// Me returns the signed-in user with a refreshed token.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response{data=authView}
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	payload, err := ctxPayload(c)
	if err != nil {
		return err
	}

	result, err := h.authService.Me(c.Request().Context(), payload)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "User fetched successfully", newAuthView(result.User, result.AccessToken))
}
