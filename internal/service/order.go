package service

import (
	"context"
	"errors"
	"fmt"
	"saas-billing/internal/apperr"
	"saas-billing/internal/auth"
	"saas-billing/internal/client"
	"saas-billing/internal/model"
	"saas-billing/internal/repository"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	orderListLimit      = 50
	// idempotencyClaimTTL bounds how long a crashed request can hold its key.
	idempotencyClaimTTL = time.Minute
)

// IssueRequest asks for a provider order for one catalog item.
type IssueRequest struct {
	ItemID         string
	Provider       string
	PayCurrency    string
	IdempotencyKey string
	Locale         string
}

type OrderOptions struct {
	BaseURL        string
	PlanProvider   string
	CreditProvider string
	PayCurrency    string
	IdempotencyTTL time.Duration
	// WebhookPaths overrides the notify path per provider. The default is
	// /api/v1/webhooks/{provider}.
	WebhookPaths map[string]string
}

type OrderService interface {
	CreatePlanOrder(ctx context.Context, user *auth.User, req *IssueRequest) (*client.OrderHandle, error)
	CreateCreditOrder(ctx context.Context, user *auth.User, req *IssueRequest) (*client.OrderHandle, error)
	GetOrder(ctx context.Context, userID, orderID string) (*model.Order, error)
	ListOrders(ctx context.Context, userID string) ([]*model.Order, error)
	CaptureOrder(ctx context.Context, userID, orderID, nonce string) (*model.Order, error)
}

type orderServiceImpl struct {
	providers       client.Providers
	catalog         CatalogService
	orderRepo       repository.OrderRepository
	idempotencyRepo repository.IdempotencyRepository
	fulfillment     FulfillmentService
	opts            OrderOptions
}

func NewOrderService(
	providers client.Providers,
	catalog CatalogService,
	orderRepo repository.OrderRepository,
	idempotencyRepo repository.IdempotencyRepository,
	fulfillment FulfillmentService,
	opts OrderOptions,
) OrderService {
	return &orderServiceImpl{
		providers:       providers,
		catalog:         catalog,
		orderRepo:       orderRepo,
		idempotencyRepo: idempotencyRepo,
		fulfillment:     fulfillment,
		opts:            opts,
	}
}

// orderLine is the priced item an order is issued for.
type orderLine struct {
	kind        model.OrderType
	itemID      string
	amountCents int64
	currency    string
	description string
}

func (s *orderServiceImpl) CreatePlanOrder(ctx context.Context, user *auth.User, req *IssueRequest) (handle *client.OrderHandle, err error) {
	ctx, end := startSpan(ctx, "OrderService.CreatePlanOrder", trace.WithAttributes(
		attribute.String("plan.id", req.ItemID),
		attribute.String("payment.provider", req.Provider),
	))
	defer end(&err)

	if user == nil || user.ID == "" {
		return nil, apperr.Unauthorized("authentication required")
	}

	plan, err := s.catalog.Plan(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if plan.PriceCents <= 0 {
		return nil, apperr.Validation("plan does not require payment")
	}

	return s.issue(ctx, user, req, s.opts.PlanProvider, &orderLine{
		kind:        model.OrderTypeSubscription,
		itemID:      plan.ID,
		amountCents: plan.PriceCents,
		currency:    plan.Currency,
		description: fmt.Sprintf("%s subscription (%s)", plan.Name, plan.Interval),
	})
}

func (s *orderServiceImpl) CreateCreditOrder(ctx context.Context, user *auth.User, req *IssueRequest) (handle *client.OrderHandle, err error) {
	ctx, end := startSpan(ctx, "OrderService.CreateCreditOrder", trace.WithAttributes(
		attribute.String("product.id", req.ItemID),
		attribute.String("payment.provider", req.Provider),
	))
	defer end(&err)

	if user == nil || user.ID == "" {
		return nil, apperr.Unauthorized("authentication required")
	}

	product, err := s.catalog.Product(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if product.PriceCents <= 0 {
		return nil, apperr.Validation("product does not require payment")
	}

	return s.issue(ctx, user, req, s.opts.CreditProvider, &orderLine{
		kind:        model.OrderTypeCredits,
		itemID:      product.ID,
		amountCents: product.PriceCents,
		currency:    product.Currency,
		description: product.Name,
	})
}

func (s *orderServiceImpl) issue(ctx context.Context, user *auth.User, req *IssueRequest, defaultProvider string, line *orderLine) (*client.OrderHandle, error) {
	providerName := strings.ToLower(strings.TrimSpace(req.Provider))
	if providerName == "" {
		providerName = defaultProvider
	}
	provider, err := s.providers.Get(providerName)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}

	var idemKey string
	if req.IdempotencyKey != "" && s.idempotencyRepo != nil {
		key := user.ID + ":" + req.IdempotencyKey
		claimed, err := s.idempotencyRepo.Claim(ctx, key, idempotencyClaimTTL)
		switch {
		case err != nil:
			log.Warnf("idempotency claim failed, issuing without a key: %v", err)
		case !claimed:
			return s.replay(ctx, key)
		default:
			idemKey = key
		}
	}
	// Once the provider has issued an order the claim is kept, even if the
	// handle cannot be stored, so a retry cannot issue a second one.
	issued := false
	defer func() {
		if idemKey != "" && !issued {
			if err := s.idempotencyRepo.Release(context.WithoutCancel(ctx), idemKey); err != nil {
				log.Warnf("release idempotency key: %v", err)
			}
		}
	}()

	payCurrency := ""
	if providerName == client.ProviderCrypto {
		payCurrency = req.PayCurrency
		if payCurrency == "" {
			payCurrency = s.opts.PayCurrency
		}
		if _, err := s.catalog.Currency(ctx, payCurrency); err != nil {
			if apperr.IsNotFound(err) {
				return nil, apperr.Validation(fmt.Sprintf("pay currency %q is not supported", payCurrency))
			}
			return nil, err
		}
	}

	order := &model.Order{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		Type:           line.kind,
		ItemID:         line.itemID,
		AmountCents:    line.amountCents,
		Currency:       line.currency,
		Provider:       providerName,
		Status:         model.OrderStatusCreated,
		IdempotencyKey: req.IdempotencyKey,
	}
	if err := s.orderRepo.Create(ctx, nil, order); err != nil {
		return nil, fmt.Errorf("store order in db: %w", err)
	}

	locale := req.Locale
	if locale == "" {
		locale = "en"
	}
	baseURL := strings.TrimRight(s.opts.BaseURL, "/")

	handle, err := provider.CreateOrder(ctx, &client.CreateOrderRequest{
		Reference:   order.ID,
		UserID:      user.ID,
		Email:       user.Email,
		Amount:      decimal.New(line.amountCents, -2),
		Currency:    line.currency,
		PayCurrency: payCurrency,
		Description: line.description,
		ReturnURL:   fmt.Sprintf("%s/%s/orders?order=%s", baseURL, locale, order.ID),
		CancelURL:   fmt.Sprintf("%s/%s/pricing", baseURL, locale),
		NotifyURL:   baseURL + s.webhookPath(providerName),
	})
	if err != nil {
		if _, markErr := s.orderRepo.MarkStatus(ctx, nil, order.ID, model.OrderStatusFailed, "create_failed"); markErr != nil {
			log.Errorf("mark order %s failed: %v", order.ID, markErr)
		}
		return nil, apperr.Upstream(providerName+" create order failed", err)
	}
	issued = true

	if err := s.orderRepo.SetProviderRef(ctx, nil, order.ID, handle.ID, handle.Status); err != nil {
		return nil, fmt.Errorf("store provider reference: %w", err)
	}

	if idemKey != "" {
		if err := s.idempotencyRepo.Put(ctx, idemKey, handle, s.opts.IdempotencyTTL); err != nil {
			log.Warnf("store idempotency key for order %s: %v", order.ID, err)
		}
	}

	log.Infof("issued %s order %s for user %s via %s", line.kind, order.ID, user.ID, providerName)
	return handle, nil
}

func (s *orderServiceImpl) webhookPath(providerName string) string {
	if path := s.opts.WebhookPaths[providerName]; path != "" {
		return "/" + strings.TrimLeft(path, "/")
	}
	return "/api/v1/webhooks/" + providerName
}

// replay answers a request whose idempotency key is already taken.
func (s *orderServiceImpl) replay(ctx context.Context, key string) (*client.OrderHandle, error) {
	previous, err := s.idempotencyRepo.Get(ctx, key)
	switch {
	case errors.Is(err, repository.ErrIdempotencyPending), err == nil && previous == nil:
		return nil, apperr.New(apperr.KindConflict, "a request with this idempotency key is in progress")
	case err != nil:
		return nil, apperr.Upstream("idempotency store unavailable", err)
	}
	return previous, nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, userID, orderID string) (*model.Order, error) {
	if userID == "" {
		return nil, apperr.Unauthorized("authentication required")
	}
	order, err := s.orderRepo.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		return nil, notFound(err, "order not found")
	}
	return order, nil
}

func (s *orderServiceImpl) ListOrders(ctx context.Context, userID string) ([]*model.Order, error) {
	if userID == "" {
		return nil, apperr.Unauthorized("authentication required")
	}
	orders, err := s.orderRepo.ListByUser(ctx, userID, orderListLimit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// CaptureOrder asks the provider to settle the order and applies the result.
// Capturing a paid order again returns it unchanged.
func (s *orderServiceImpl) CaptureOrder(ctx context.Context, userID, orderID, nonce string) (order *model.Order, err error) {
	ctx, end := startSpan(ctx, "OrderService.CaptureOrder", trace.WithAttributes(
		attribute.String("order.id", orderID),
	))
	defer end(&err)

	order, err = s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	switch order.Status {
	case model.OrderStatusPaid:
		return order, nil
	case model.OrderStatusFailed, model.OrderStatusCancelled:
		return nil, apperr.New(apperr.KindConflict, "order can no longer be paid")
	}

	provider, err := s.providers.Get(order.Provider)
	if err != nil {
		return nil, fmt.Errorf("capture order %s: %w", order.ID, err)
	}

	result, err := provider.CaptureOrder(ctx, order.ProviderRef, &client.CaptureOptions{
		Nonce:  nonce,
		Amount: decimal.New(order.AmountCents, -2),
	})
	if err != nil {
		return nil, apperr.Upstream(order.Provider+" capture failed", err)
	}

	if result.ID != "" && result.ID != order.ProviderRef {
		if err := s.orderRepo.SetProviderRef(ctx, nil, order.ID, result.ID, result.RawStatus); err != nil {
			return nil, fmt.Errorf("store provider reference: %w", err)
		}
	}

	if _, err := s.fulfillment.Settle(ctx, &SettleRequest{
		OrderID:   order.ID,
		Status:    result.Status,
		RawStatus: result.RawStatus,
	}); err != nil {
		return nil, err
	}

	order, err = s.orderRepo.FindByIDForUser(ctx, order.ID, userID)
	if err != nil {
		return nil, notFound(err, "order not found")
	}
	return order, nil
}
