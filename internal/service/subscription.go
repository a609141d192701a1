package service

import (
	"context"
	"errors"
	"fmt"
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

type SubscriptionService interface {
	Subscribe(ctx context.Context, userID, planID string) (*model.Subscription, error)
	Current(ctx context.Context, userID string) (*model.Subscription, error)
}

type subscriptionServiceImpl struct {
	locker  client.Locker
	catalog CatalogService
	subRepo repository.SubscriptionRepository
	clock   func() time.Time
}

func NewSubscriptionService(
	locker client.Locker,
	catalog CatalogService,
	subRepo repository.SubscriptionRepository,
) SubscriptionService {
	return &subscriptionServiceImpl{
		locker:  locker,
		catalog: catalog,
		subRepo: subRepo,
		clock:   time.Now,
	}
}

func (s *subscriptionServiceImpl) Subscribe(ctx context.Context, userID, planID string) (sub *model.Subscription, err error) {
	ctx, end := startSpan(ctx, "SubscriptionService.Subscribe", trace.WithAttributes(
		attribute.String("plan.id", planID),
	))
	defer end(&err)

	if userID == "" {
		return nil, apperr.Unauthorized("authentication required")
	}
	if planID == "" {
		return nil, apperr.Validation("planId is required")
	}

	plan, err := s.catalog.Plan(ctx, planID)
	if err != nil {
		return nil, err
	}
	// Paid plans are granted only by a settled order.
	if plan.PriceCents > 0 {
		return nil, apperr.Validation("plan requires payment, create an order instead")
	}

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, "subscription:"+userID)
		if errors.Is(err, client.ErrLockHeld) {
			return nil, apperr.Wrap(apperr.KindConflict, "subscription change already in progress", err)
		}
		if err != nil {
			return nil, apperr.Upstream("subscription lock unavailable", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				log.Warnf("release subscription lock for %s: %v", userID, err)
			}
		}()
	}

	sub = newSubscription(userID, plan, "", s.clock())
	if err := s.subRepo.Replace(ctx, nil, sub); err != nil {
		return nil, fmt.Errorf("replace subscription: %w", err)
	}
	return sub, nil
}

// Current returns nil, nil when the user never subscribed.
func (s *subscriptionServiceImpl) Current(ctx context.Context, userID string) (*model.Subscription, error) {
	sub, err := s.subRepo.GetByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return sub, nil
}

// newSubscription builds the replacement row for plan starting at now. Free
// plans carry no period end.
func newSubscription(userID string, plan *model.Plan, orderID string, now time.Time) *model.Subscription {
	sub := &model.Subscription{
		UserID:             userID,
		PlanID:             plan.ID,
		Tier:               plan.Tier,
		Status:             model.SubscriptionStatusActive,
		OrderID:            orderID,
		CurrentPeriodStart: now,
	}
	if plan.PriceCents > 0 {
		end := periodEnd(plan.Interval, now)
		sub.CurrentPeriodEnd = &end
	}
	return sub
}

func periodEnd(interval string, start time.Time) time.Time {
	if interval == "year" {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}
