package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/omerdemirkan/stem-bound-api/docs"
	"github.com/omerdemirkan/stem-bound-api/internal/api/handler"
	"github.com/omerdemirkan/stem-bound-api/internal/api/middleware"
	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
	"github.com/omerdemirkan/stem-bound-api/internal/core/ports"
)

// Dependencies is everything the router needs, assembled by the composition
// root. Redis is nil when the location cache is disabled.
type Dependencies struct {
	Logger       zerolog.Logger
	ClientOrigin string

	Tokens      middleware.TokenParser
	Auth        ports.AuthService
	Users       ports.UserService
	Courses     ports.CourseService
	Chats       ports.ChatService
	Schools     ports.SchoolService
	Locations   ports.LocationService
	MailingList ports.MailingListService

	Mongo handler.MongoPinger
	Redis handler.RedisPinger

	// Metrics receives the HTTP collectors. Nil means the default registry.
	Metrics prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(deps.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{deps.ClientOrigin},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "stembound",
		Registerer: deps.Metrics,
	}))

	// --- Operational endpoints (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	token := middleware.ExtractTokenPayload(deps.Tokens)
	self := middleware.MatchParamIDToPayloadUserID("id")
	noMeta := middleware.BlockRequestBodyMetadata

	// --- Auth ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	auth := e.Group("/auth")
	auth.POST("/signup", authHandler.SignUp)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authHandler.Me, token)

	v1 := e.Group("/v1")

	// --- Users ---
	userHandler := handler.NewUserHandler(deps.Users, deps.Courses, deps.Schools, deps.Chats)
	users := v1.Group("/users")
	users.GET("", userHandler.List)
	users.GET("/:id", userHandler.Get)
	users.PATCH("/:id", userHandler.Update, token, self, noMeta)
	users.DELETE("/:id", userHandler.Delete, token, self)
	users.PUT("/:id/location", userHandler.UpdateLocation, token, self, noMeta)
	users.GET("/:id/courses", userHandler.Courses)
	users.GET("/:id/school", userHandler.School)
	users.GET("/:id/chats", userHandler.Chats, token, self)

	// --- Courses ---
	courseHandler := handler.NewCourseHandler(deps.Courses)
	instructor := middleware.AllowedRoles(domain.RoleInstructor, domain.RoleAdmin)
	courses := v1.Group("/courses")
	courses.GET("", courseHandler.List)
	courses.GET("/:id", courseHandler.Get)
	courses.GET("/:id/instructors", courseHandler.Instructors)
	courses.GET("/:id/students", courseHandler.Students)
	courses.GET("/:id/school", courseHandler.School)
	courses.POST("", courseHandler.Create, token, middleware.AllowedRoles(domain.RoleInstructor))
	courses.PATCH("/:id", courseHandler.Update, token, instructor, noMeta)
	courses.DELETE("/:id", courseHandler.Delete, token, instructor)
	courses.POST("/:id/enroll", courseHandler.Enroll, token, middleware.AllowedRoles(domain.RoleStudent))
	courses.POST("/:id/drop", courseHandler.Drop, token, middleware.AllowedRoles(domain.RoleStudent))
	courses.PATCH("/:id/verification-status", courseHandler.UpdateVerificationStatus, token,
		middleware.AllowedRoles(domain.RoleInstructor, domain.RoleSchoolOfficial, domain.RoleAdmin), noMeta)
	courses.POST("/:id/invitations", courseHandler.Invite, token, middleware.AllowedRoles(domain.RoleInstructor), noMeta)
	courses.POST("/:id/invitations/accept", courseHandler.AcceptInvitation, token, middleware.AllowedRoles(domain.RoleInstructor), noMeta)

	// --- Chats & messages ---
	chatHandler := handler.NewChatHandler(deps.Chats)
	chats := v1.Group("/chats", token, middleware.AllowedRoles(domain.UserRoles...))
	chats.GET("", chatHandler.List)
	chats.POST("", chatHandler.Create)
	chats.GET("/:chatId", chatHandler.Get)
	chats.DELETE("/:chatId", chatHandler.Delete)
	chats.GET("/:chatId/messages", chatHandler.ListMessages)
	chats.POST("/:chatId/messages", chatHandler.CreateMessage, noMeta)
	chats.GET("/:chatId/messages/:messageId", chatHandler.GetMessage)
	chats.PATCH("/:chatId/messages/:messageId", chatHandler.UpdateMessage, noMeta)
	chats.DELETE("/:chatId/messages/:messageId", chatHandler.DeleteMessage)
	chats.POST("/:chatId/messages/:messageId/restore", chatHandler.RestoreMessage)
	chats.POST("/:chatId/messages/:messageId/read", chatHandler.ReadMessage)

	// --- Reference data ---
	schoolHandler := handler.NewSchoolHandler(deps.Schools)
	v1.GET("/schools", schoolHandler.List)
	v1.GET("/schools/:id", schoolHandler.Get)

	locationHandler := handler.NewLocationHandler(deps.Locations)
	v1.GET("/locations", locationHandler.Search)
	v1.GET("/locations/:zip", locationHandler.GetByZip)

	mailingListHandler := handler.NewMailingListHandler(deps.MailingList)
	v1.POST("/mailing-list", mailingListHandler.Subscribe)
	v1.GET("/mailing-list", mailingListHandler.List, token, middleware.AllowedRoles(domain.RoleAdmin))

	e.RouteNotFound("/*", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "Route not found")
	})

	return e
}

// requestLogger writes one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
