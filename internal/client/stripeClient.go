package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"saas-billing/internal/config"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	stripeclient "github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

const stripeMaxBodyBytes = 65536

type stripeClientImpl struct {
	api           *stripeclient.API
	webhookSecret string
}

func NewStripeClient(cfg *config.Stripe) PaymentProvider {
	return NewStripeClientWithBackends(cfg, nil)
}

// NewStripeClientWithBackends lets callers point the SDK at another API base URL.
func NewStripeClientWithBackends(cfg *config.Stripe, backends *stripe.Backends) PaymentProvider {
	return &stripeClientImpl{
		api:           stripeclient.New(cfg.SecretKey, backends),
		webhookSecret: cfg.WebhookSecret,
	}
}

func (c *stripeClientImpl) Name() string {
	return ProviderStripe
}

func (c *stripeClientImpl) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderHandle, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(req.Amount.Shift(2).IntPart()),
		Currency:    stripe.String(strings.ToLower(req.Currency)),
		Description: stripe.String(req.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.Email != "" {
		params.ReceiptEmail = stripe.String(req.Email)
	}
	params.Context = ctx
	params.AddMetadata("order_id", req.Reference)
	params.AddMetadata("user_id", req.UserID)
	params.SetIdempotencyKey("create-" + req.Reference)

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	raw, _ := json.Marshal(pi)
	return &OrderHandle{
		Provider:     ProviderStripe,
		ID:           pi.ID,
		Status:       string(pi.Status),
		ClientSecret: pi.ClientSecret,
		Raw:          raw,
	}, nil
}

func (c *stripeClientImpl) GetOrder(ctx context.Context, paymentIntentID string) (*ProviderOrder, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := c.api.PaymentIntents.Get(paymentIntentID, params)
	if err != nil {
		return nil, fmt.Errorf("get payment intent: %w", err)
	}
	return stripeProviderOrder(pi), nil
}

// CaptureOrder refreshes the intent: confirmation happens in the browser with Stripe.js
// and the intent captures automatically once confirmed.
func (c *stripeClientImpl) CaptureOrder(ctx context.Context, paymentIntentID string, _ *CaptureOptions) (*ProviderOrder, error) {
	return c.GetOrder(ctx, paymentIntentID)
}

func (c *stripeClientImpl) ParseWebhook(_ context.Context, headers http.Header, body []byte) (*WebhookEvent, error) {
	if c.webhookSecret == "" {
		return nil, fmt.Errorf("stripe webhook secret missing")
	}
	if len(body) > stripeMaxBodyBytes {
		return nil, fmt.Errorf("stripe webhook payload too large")
	}

	event, err := webhook.ConstructEventWithOptions(
		body,
		headers.Get("Stripe-Signature"),
		c.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("signature verification failed: %w", err)
	}

	out := &WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed", "payment_intent.canceled":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		out.ProviderRef = pi.ID
		out.Reference = pi.Metadata["order_id"]
		// A failed attempt returns the intent to requires_payment_method and the
		// buyer may retry it, so the order stays pending.
		out.Status = normalizeStripeStatus(pi.Status)
	default:
		// Intentionally ignore unhandled events.
	}

	return out, nil
}

func stripeProviderOrder(pi *stripe.PaymentIntent) *ProviderOrder {
	return &ProviderOrder{
		ID:        pi.ID,
		RawStatus: string(pi.Status),
		Status:    normalizeStripeStatus(pi.Status),
		Amount:    decimal.NewFromInt(pi.Amount).Shift(-2),
		Currency:  strings.ToUpper(string(pi.Currency)),
		Reference: pi.Metadata["order_id"],
	}
}

func normalizeStripeStatus(status stripe.PaymentIntentStatus) string {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return StatusPaid
	case stripe.PaymentIntentStatusProcessing, stripe.PaymentIntentStatusRequiresCapture:
		return StatusApproved
	case stripe.PaymentIntentStatusCanceled:
		return StatusCancelled
	default:
		return StatusCreated
	}
}
