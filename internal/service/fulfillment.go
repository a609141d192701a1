package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"saas-billing/internal/apperr"
	"saas-billing/internal/client"
	"saas-billing/internal/model"
	"saas-billing/internal/repository"
	"time"

	"github.com/labstack/gommon/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// SettleRequest carries a normalized provider status for one local order.
// EventID is set when the status arrived through a webhook.
type SettleRequest struct {
	OrderID   string
	Status    string
	RawStatus string
	EventID   string
	EventType string
}

type FulfillmentService interface {
	Settle(ctx context.Context, req *SettleRequest) (bool, error)
	HandleWebhook(ctx context.Context, providerName string, headers http.Header, body []byte) error
	Reconcile(ctx context.Context, staleAge time.Duration, limit int) (int, error)
}

type fulfillmentServiceImpl struct {
	db               *gorm.DB
	providers        client.Providers
	catalogRepo      repository.CatalogRepository
	orderRepo        repository.OrderRepository
	subRepo          repository.SubscriptionRepository
	creditRepo       repository.CreditRepository
	webhookEventRepo repository.WebhookEventRepository
	clock            func() time.Time
}

func NewFulfillmentService(
	db *gorm.DB,
	providers client.Providers,
	catalogRepo repository.CatalogRepository,
	orderRepo repository.OrderRepository,
	subRepo repository.SubscriptionRepository,
	creditRepo repository.CreditRepository,
	webhookEventRepo repository.WebhookEventRepository,
) FulfillmentService {
	return &fulfillmentServiceImpl{
		db:               db,
		providers:        providers,
		catalogRepo:      catalogRepo,
		orderRepo:        orderRepo,
		subRepo:          subRepo,
		creditRepo:       creditRepo,
		webhookEventRepo: webhookEventRepo,
		clock:            time.Now,
	}
}

// Settle moves the order according to req.Status and, on the first transition to
// PAID, applies the subscription or credit mutation in the same transaction. It
// reports whether this call changed the order.
func (s *fulfillmentServiceImpl) Settle(ctx context.Context, req *SettleRequest) (changed bool, err error) {
	ctx, end := startSpan(ctx, "FulfillmentService.Settle", trace.WithAttributes(
		attribute.String("order.id", req.OrderID),
		attribute.String("order.status", req.Status),
	))
	defer end(&err)

	order, err := s.orderRepo.FindByID(ctx, nil, req.OrderID)
	if err != nil {
		return false, notFound(err, "order not found")
	}

	var (
		plan    *model.Plan
		product *model.CreditProduct
	)
	if req.Status == model.OrderStatusPaid {
		switch order.Type {
		case model.OrderTypeSubscription:
			if plan, err = s.catalogRepo.FindPlan(ctx, order.ItemID); err != nil {
				return false, fmt.Errorf("load plan %s for order %s: %w", order.ItemID, order.ID, err)
			}
		case model.OrderTypeCredits:
			if product, err = s.catalogRepo.FindProduct(ctx, order.ItemID); err != nil {
				return false, fmt.Errorf("load product %s for order %s: %w", order.ItemID, order.ID, err)
			}
		default:
			return false, fmt.Errorf("order %s has unknown type %q", order.ID, order.Type)
		}
	}

	now := s.clock()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.EventID != "" {
			fresh, err := s.webhookEventRepo.MarkProcessed(ctx, tx, order.Provider, req.EventID, req.EventType)
			if err != nil {
				return fmt.Errorf("record webhook event: %w", err)
			}
			if !fresh {
				log.Infof("webhook event %s already processed", req.EventID)
				return nil
			}
		}

		switch req.Status {
		case model.OrderStatusPaid:
			won, err := s.orderRepo.MarkPaid(ctx, tx, order.ID, req.RawStatus, now)
			if err != nil {
				return fmt.Errorf("mark order paid: %w", err)
			}
			if !won {
				return nil
			}
			changed = true
			return s.fulfill(ctx, tx, order, plan, product, now)
		case model.OrderStatusApproved, model.OrderStatusFailed, model.OrderStatusCancelled:
			moved, err := s.orderRepo.MarkStatus(ctx, tx, order.ID, req.Status, req.RawStatus)
			if err != nil {
				return fmt.Errorf("mark order %s: %w", req.Status, err)
			}
			changed = moved
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if changed {
		log.Infof("order %s moved to %s", order.ID, req.Status)
	}
	return changed, nil
}

func (s *fulfillmentServiceImpl) fulfill(ctx context.Context, tx *gorm.DB, order *model.Order, plan *model.Plan, product *model.CreditProduct, now time.Time) error {
	orderID := order.ID

	switch order.Type {
	case model.OrderTypeSubscription:
		if err := s.subRepo.Replace(ctx, tx, newSubscription(order.UserID, plan, order.ID, now)); err != nil {
			return fmt.Errorf("replace subscription: %w", err)
		}
		if plan.CreditsPerPeriod > 0 {
			if _, err := s.creditRepo.Grant(ctx, tx, order.UserID, plan.CreditsPerPeriod, "subscription", &orderID); err != nil {
				return fmt.Errorf("grant subscription credits: %w", err)
			}
		}
	case model.OrderTypeCredits:
		if _, err := s.creditRepo.Grant(ctx, tx, order.UserID, product.Credits, "purchase", &orderID); err != nil {
			return fmt.Errorf("grant purchased credits: %w", err)
		}
	}
	return nil
}

func (s *fulfillmentServiceImpl) HandleWebhook(ctx context.Context, providerName string, headers http.Header, body []byte) (err error) {
	ctx, end := startSpan(ctx, "FulfillmentService.HandleWebhook", trace.WithAttributes(
		attribute.String("payment.provider", providerName),
	))
	defer end(&err)

	provider, err := s.providers.Get(providerName)
	if err != nil {
		return apperr.NotFound("unknown payment provider")
	}
	verifier, ok := provider.(client.WebhookVerifier)
	if !ok {
		return apperr.NotFound(providerName + " does not send webhooks")
	}

	event, err := verifier.ParseWebhook(ctx, headers, body)
	if err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid webhook", err)
	}
	if event.Status == "" {
		log.Debugf("ignoring %s webhook %s (%s)", providerName, event.ID, event.Type)
		return nil
	}

	eventID := providerName + ":" + event.ID
	exists, err := s.webhookEventRepo.Exists(ctx, eventID)
	if err != nil {
		return fmt.Errorf("check webhook event: %w", err)
	}
	if exists {
		return nil
	}

	order, err := s.findWebhookOrder(ctx, providerName, event)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warnf("%s webhook %s references unknown order (ref=%s provider_ref=%s)", providerName, event.ID, event.Reference, event.ProviderRef)
		return nil
	}
	if err != nil {
		return err
	}

	_, err = s.Settle(ctx, &SettleRequest{
		OrderID:   order.ID,
		Status:    event.Status,
		RawStatus: event.Type,
		EventID:   eventID,
		EventType: event.Type,
	})
	return err
}

func (s *fulfillmentServiceImpl) findWebhookOrder(ctx context.Context, providerName string, event *client.WebhookEvent) (*model.Order, error) {
	if event.Reference != "" {
		order, err := s.orderRepo.FindByID(ctx, nil, event.Reference)
		if err == nil && order.Provider == providerName {
			return order, nil
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if event.ProviderRef == "" {
		return nil, gorm.ErrRecordNotFound
	}
	return s.orderRepo.FindByProviderRef(ctx, providerName, event.ProviderRef)
}

// Reconcile polls providers for pending orders older than staleAge and settles
// them. It returns how many orders changed.
func (s *fulfillmentServiceImpl) Reconcile(ctx context.Context, staleAge time.Duration, limit int) (int, error) {
	orders, err := s.orderRepo.ListStale(ctx, s.clock().Add(-staleAge), limit)
	if err != nil {
		return 0, fmt.Errorf("list stale orders: %w", err)
	}

	settled := 0
	for _, order := range orders {
		provider, err := s.providers.Get(order.Provider)
		if err != nil {
			log.Warnf("reconcile order %s: %v", order.ID, err)
			continue
		}

		result, err := provider.GetOrder(ctx, order.ProviderRef)
		if err != nil {
			log.Warnf("reconcile order %s: fetch from %s: %v", order.ID, order.Provider, err)
			continue
		}
		if result.Status == "" || result.Status == order.Status {
			continue
		}

		changed, err := s.Settle(ctx, &SettleRequest{
			OrderID:   order.ID,
			Status:    result.Status,
			RawStatus: result.RawStatus,
		})
		if err != nil {
			log.Errorf("reconcile order %s: %v", order.ID, err)
			continue
		}
		if changed {
			settled++
		}
	}
	return settled, nil
}
