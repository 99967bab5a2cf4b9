package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/omerdemirkan/stem-bound-api/internal/api/middleware"
	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
)

// ctxPayload returns the verified token payload. The route must be guarded by
// middleware.ExtractTokenPayload.
func ctxPayload(c echo.Context) (*domain.TokenPayload, error) {
	payload, ok := middleware.PayloadFromContext(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Valid token not found.")
	}
	return payload, nil
}

// ctxUserID is the requester's id. Admin tokens minted for operators carry no
// user document id and are rejected here.
func ctxUserID(c echo.Context) (primitive.ObjectID, error) {
	payload, err := ctxPayload(c)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, err := primitive.ObjectIDFromHex(payload.User.ID)
	if err != nil {
		return primitive.NilObjectID, domain.ErrInvalidToken
	}
	return id, nil
}
