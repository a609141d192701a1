package handler

import (
	"net/http"
	"saas-billing/internal/dto"
	"saas-billing/internal/service"

	"github.com/labstack/echo/v4"
)

type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

// Subscribe switches the caller to a free plan.
//
// @Summary Switch to a free plan
// @Tags subscription
// @Accept json
// @Produce json
// @Param body body dto.SubscribeRequest true "plan"
// @Success 200 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Security bearerAuth
// @Router /api/v1/subscription/subscribe [post]
func (h *SubscriptionHandler) Subscribe(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.SubscribeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	sub, err := h.subscriptionService.Subscribe(ctx, user.ID, req.PlanID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.SubscribeResponse{
		Success:      true,
		Subscription: sub,
	})
}

// @Summary Get the caller's subscription
// @Tags subscription
// @Produce json
// @Success 200 {object} dto.Response
// @Security bearerAuth
// @Router /api/v1/subscription [get]
func (h *SubscriptionHandler) Current(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	sub, err := h.subscriptionService.Current(ctx, user.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.SubscribeResponse{
		Success:      true,
		Subscription: sub,
	})
}
