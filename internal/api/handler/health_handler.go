package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// HealthHandler handles GET /health, the liveness probe.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Liveness
//
// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// MongoPinger is satisfied by *mongo.Client.
type MongoPinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// RedisPinger is satisfied by *redis.Client.
type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// HealthDependenciesHandler handles GET /health/ready. Redis is only checked
// when the location cache is configured.
type HealthDependenciesHandler struct {
	mongo MongoPinger
	redis RedisPinger
}

func NewHealthDependenciesHandler(mongo MongoPinger, redis RedisPinger) *HealthDependenciesHandler {
	return &HealthDependenciesHandler{
		mongo: mongo,
		redis: redis,
	}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Readiness
//
// @Summary      Readiness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  readinessResponse
// @Failure      503  {object}  readinessResponse
// @Router       /health/ready [get]
func (h *HealthDependenciesHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus)
	healthy := true

	if err := h.mongo.Ping(ctx, readpref.Primary()); err != nil {
		deps["mongodb"] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
		healthy = false
	} else {
		deps["mongodb"] = dependencyStatus{Status: "ok"}
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			deps["redis"] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
		} else {
			deps["redis"] = dependencyStatus{Status: "ok"}
		}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
