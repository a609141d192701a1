package handler

import (
	"saas-billing/internal/dto"
	"saas-billing/internal/service"

	"github.com/labstack/echo/v4"
)

type CreditHandler struct {
	creditService service.CreditService
}

func NewCreditHandler(creditService service.CreditService) *CreditHandler {
	return &CreditHandler{
		creditService: creditService,
	}
}

// @Summary Get the caller's credit balance
// @Tags credits
// @Produce json
// @Success 200 {object} dto.Response
// @Security bearerAuth
// @Router /api/v1/credits/balance [get]
func (h *CreditHandler) Balance(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	balance, err := h.creditService.Balance(ctx, user.ID)
	if err != nil {
		return err
	}

	return respondOK(c, &dto.BalanceResponse{Balance: balance})
}

// @Summary Spend one credit on the demo
// @Tags credits
// @Accept json
// @Produce json
// @Param body body dto.DemoRunRequest true "input"
// @Success 200 {object} dto.Response
// @Failure 402 {object} dto.Response
// @Security bearerAuth
// @Router /api/v1/demo/run [post]
func (h *CreditHandler) RunDemo(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.DemoRunRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	usage, err := h.creditService.RunDemo(ctx, user.ID, req.Prompt)
	if err != nil {
		return err
	}

	return respondOK(c, usage)
}
