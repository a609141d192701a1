package handler

import (
	"fmt"
	"io"
	"net/http"
	"saas-billing/internal/service"

	"github.com/labstack/echo/v4"
)

const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	fulfillmentService service.FulfillmentService
}

func NewWebhookHandler(fulfillmentService service.FulfillmentService) *WebhookHandler {
	return &WebhookHandler{
		fulfillmentService: fulfillmentService,
	}
}

// @Summary Receive a provider webhook
// @Tags webhooks
// @Param provider path string true "paypal, stripe, braintree or crypto"
// @Success 200 {object} dto.Response
// @Router /api/v1/webhooks/{provider} [post]
func (h *WebhookHandler) Receive(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	err = h.fulfillmentService.HandleWebhook(ctx, c.Param("provider"), c.Request().Header, body)
	if err != nil {
		return fmt.Errorf("handle %s webhook: %w", c.Param("provider"), err)
	}

	return c.JSON(http.StatusOK, map[string]bool{
		"received": true,
	})
}
