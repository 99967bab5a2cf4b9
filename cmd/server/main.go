// @title                       STEM-bound API
// @version                     1.0
// @description                 Accounts, courses, chats and school lookup for the STEM-bound education platform.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/omerdemirkan/stem-bound-api/internal/api"
	"github.com/omerdemirkan/stem-bound-api/internal/auth"
	"github.com/omerdemirkan/stem-bound-api/internal/core/ports"
	"github.com/omerdemirkan/stem-bound-api/internal/core/service"
	"github.com/omerdemirkan/stem-bound-api/internal/infrastructure/config"
	mongodb "github.com/omerdemirkan/stem-bound-api/internal/infrastructure/db/mongo"
	redisdb "github.com/omerdemirkan/stem-bound-api/internal/infrastructure/db/redis"
	"github.com/omerdemirkan/stem-bound-api/internal/infrastructure/metrics"
	"github.com/omerdemirkan/stem-bound-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{})
		l.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.IsDevelopment(), Service: "stem-bound-api"})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, AppName: "stem-bound-api"})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	users := mongodb.NewUserRepository(db)
	courses := mongodb.NewCourseRepository(db)
	schools := mongodb.NewSchoolRepository(db)
	chats := mongodb.NewChatRepository(db)
	messages := mongodb.NewMessageRepository(db)
	locations := mongodb.NewLocationRepository(db)
	subscribers := mongodb.NewMailingListRepository(db)

	if err := mongodb.EnsureIndexes(ctx, users, courses, schools, chats, messages, locations, subscribers); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	deps := api.Dependencies{
		Logger:       logger.Component("http"),
		ClientOrigin: cfg.ClientOrigin,
		Mongo:        client,
	}

	var cache ports.LocationCache
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer rdb.Close()
		cache = redisdb.NewLocationCache(rdb, cfg.Redis.LocationTTL)
		deps.Redis = rdb
	} else {
		log.Info().Msg("REDIS_ADDR not set, location cache disabled")
	}

	limits := ports.PageLimits{
		Default: cfg.Pagination.DefaultLimit,
		Max:     cfg.Pagination.MaxLimit,
		GeoMax:  cfg.Pagination.GeoMaxLimit,
	}
	tokens := auth.NewIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	hasher := service.NewBcryptHasher(cfg.Auth.SaltRounds)
	recorder := metrics.Prometheus{}
	metadata := service.NewMetadataService(mongodb.NewMetadataStore(db), recorder, logger.Component("metadata"))
	locationService := service.NewLocationService(locations, cache, recorder, logger.Component("locations"))
	userService := service.NewUserService(users, schools, locationService, metadata, hasher, limits, recorder, logger.Component("users"))

	deps.Tokens = tokens
	deps.Auth = service.NewAuthService(userService, tokens, hasher, logger.Component("auth"))
	deps.Users = userService
	deps.Courses = service.NewCourseService(courses, userService, schools, metadata, tokens, limits, recorder, logger.Component("courses"))
	deps.Chats = service.NewChatService(chats, messages, userService, metadata, limits, recorder, logger.Component("chats"))
	deps.Schools = service.NewSchoolService(schools, limits)
	deps.Locations = locationService
	deps.MailingList = service.NewMailingListService(subscribers, logger.Component("mailing_list"))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
