package handler

import (
	"net/http"
	"saas-billing/internal/client"
	"saas-billing/internal/dto"
	"saas-billing/internal/locale"
	"saas-billing/internal/middleware"
	"saas-billing/internal/service"

	"github.com/labstack/echo/v4"
)

const idempotencyHeader = "Idempotency-Key"

type PaymentHandler struct {
	orderService service.OrderService
	resolver     *locale.Resolver
}

func NewPaymentHandler(orderService service.OrderService, resolver *locale.Resolver) *PaymentHandler {
	return &PaymentHandler{
		orderService: orderService,
		resolver:     resolver,
	}
}

// CreateCreditOrder issues a provider order for a credit product and returns the
// provider handle as is.
//
// @Summary Create a credit order
// @Tags payments
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "client retry key"
// @Param body body dto.CreateCreditOrderRequest true "product"
// @Success 200 {object} client.OrderHandle
// @Failure 409 {object} dto.Response
// @Security bearerAuth
// @Router /api/v1/credits/create-order [post]
func (h *PaymentHandler) CreateCreditOrder(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.CreateCreditOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	handle, err := h.orderService.CreateCreditOrder(ctx, user, &service.IssueRequest{
		ItemID:         req.ProductID,
		Provider:       req.Provider,
		PayCurrency:    req.PayCurrency,
		IdempotencyKey: c.Request().Header.Get(idempotencyHeader),
		Locale:         middleware.LocaleFrom(c, h.resolver),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, handle)
}

// CreatePaypalOrder issues a PayPal order for a subscription plan.
//
// @Summary Create a PayPal plan order
// @Tags payments
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "client retry key"
// @Param body body dto.CreatePlanOrderRequest true "plan"
// @Success 200 {object} client.OrderHandle
// @Security bearerAuth
// @Router /api/v1/paypal/create-order [post]
func (h *PaymentHandler) CreatePaypalOrder(c echo.Context) error {
	var req dto.CreatePlanOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	req.Provider = client.ProviderPaypal
	return h.createPlanOrder(c, &req)
}

// CreatePlanOrder issues a plan order with the provider named in the body.
//
// @Summary Create a plan order
// @Tags payments
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "client retry key"
// @Param body body dto.CreatePlanOrderRequest true "plan and provider"
// @Success 200 {object} client.OrderHandle
// @Security bearerAuth
// @Router /api/v1/subscription/create-order [post]
func (h *PaymentHandler) CreatePlanOrder(c echo.Context) error {
	var req dto.CreatePlanOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.createPlanOrder(c, &req)
}

func (h *PaymentHandler) createPlanOrder(c echo.Context, req *dto.CreatePlanOrderRequest) error {
	ctx := c.Request().Context()

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	handle, err := h.orderService.CreatePlanOrder(ctx, user, &service.IssueRequest{
		ItemID:         req.PlanID,
		Provider:       req.Provider,
		PayCurrency:    req.PayCurrency,
		IdempotencyKey: c.Request().Header.Get(idempotencyHeader),
		Locale:         middleware.LocaleFrom(c, h.resolver),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, handle)
}

// @Summary Get one of the caller's orders
// @Tags payments
// @Produce json
// @Param id path string true "order id"
// @Success 200 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Security bearerAuth
// @Router /api/v1/payments/orders/{id} [get]
func (h *PaymentHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	order, err := h.orderService.GetOrder(ctx, user.ID, c.Param("id"))
	if err != nil {
		return err
	}

	return respondOK(c, order)
}

// @Summary List the caller's orders
// @Tags payments
// @Produce json
// @Success 200 {object} dto.Response
// @Security bearerAuth
// @Router /api/v1/payments/orders [get]
func (h *PaymentHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	orders, err := h.orderService.ListOrders(ctx, user.ID)
	if err != nil {
		return err
	}

	return respondOK(c, orders)
}

// @Summary Capture an approved order
// @Tags payments
// @Accept json
// @Produce json
// @Param id path string true "order id"
// @Success 200 {object} dto.Response
// @Failure 409 {object} dto.Response
// @Security bearerAuth
// @Router /api/v1/payments/orders/{id}/capture [post]
func (h *PaymentHandler) CaptureOrder(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.CaptureOrderRequest
	if c.Request().ContentLength != 0 {
		if err := bind(c, &req); err != nil {
			return err
		}
	}

	order, err := h.orderService.CaptureOrder(ctx, user.ID, c.Param("id"), req.Nonce)
	if err != nil {
		return err
	}

	return respondOK(c, order)
}
