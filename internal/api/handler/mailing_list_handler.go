package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
	"github.com/omerdemirkan/stem-bound-api/internal/core/ports"
)

type MailingListHandler struct {
	subscribers ports.MailingListService
}

func NewMailingListHandler(subscribers ports.MailingListService) *MailingListHandler {
	return &MailingListHandler{subscribers: subscribers}
}

type subscribeRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Affiliate string `json:"affiliate" validate:"max=100"`
}

// Subscribe handles POST /v1/mailing-list. The affiliate may also be passed
// as the "a" query parameter of a referral link.
//
// @Summary      Join the mailing list
// @Tags         mailing-list
// @Accept       json
// @Produce      json
// @Param        a     query     string            false  "Affiliate"
// @Param        body  body      subscribeRequest  true   "Subscriber"
// @Success      201   {object}  response{data=domain.MailingListSubscriber}
// @Failure      400   {object}  errorResponse
// @Router       /v1/mailing-list [post]
func (h *MailingListHandler) Subscribe(c echo.Context) error {
	var req subscribeRequest
	if err := c.Bind(&req); err != nil {
		return domain.BadRequest("invalid payload")
	}
	if req.Affiliate == "" {
		req.Affiliate = c.QueryParam("a")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	sub, err := h.subscribers.Subscribe(c.Request().Context(), req.Email, req.Affiliate)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Subscribed successfully", sub)
}

// List handles GET /v1/mailing-list.
//
// @Summary      Mailing list subscribers
// @Tags         mailing-list
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response{data=[]domain.MailingListSubscriber}
// @Failure      403  {object}  errorResponse
// @Router       /v1/mailing-list [get]
func (h *MailingListHandler) List(c echo.Context) error {
	subs, err := h.subscribers.FindSubscribers(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Subscribers fetched successfully", subs)
}
