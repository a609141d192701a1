package repository

import (
	"context"
	"saas-billing/internal/model"
	"time"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	FindByID(ctx context.Context, tx *gorm.DB, orderID string) (*model.Order, error)
	FindByIDForUser(ctx context.Context, orderID, userID string) (*model.Order, error)
	FindByProviderRef(ctx context.Context, provider, providerRef string) (*model.Order, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*model.Order, error)
	ListStale(ctx context.Context, createdBefore time.Time, limit int) ([]*model.Order, error)
	SetProviderRef(ctx context.Context, tx *gorm.DB, orderID, providerRef, providerStatus string) error
	MarkPaid(ctx context.Context, tx *gorm.DB, orderID, providerStatus string, paidAt time.Time) (bool, error)
	MarkStatus(ctx context.Context, tx *gorm.DB, orderID, status, providerStatus string) (bool, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return conn(r.db, tx).WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, orderID string) (*model.Order, error) {
	var order model.Order
	err := conn(r.db, tx).WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// FindByIDForUser never distinguishes a foreign order from a missing one.
func (r *orderRepoImpl) FindByIDForUser(ctx context.Context, orderID, userID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByProviderRef(ctx context.Context, provider, providerRef string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_ref = ?", provider, providerRef).
		First(&order).Error
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) ListByUser(ctx context.Context, userID string, limit int) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	return orders, nil
}

// ListStale returns pending orders the provider can be asked about. Orders whose
// provider reference is still the local id (Braintree before checkout) have
// nothing to look up.
func (r *orderRepoImpl) ListStale(ctx context.Context, createdBefore time.Time, limit int) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where("status IN ? AND created_at < ? AND provider_ref <> '' AND provider_ref <> id", model.PendingOrderStatuses, createdBefore).
		Order("created_at").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) SetProviderRef(ctx context.Context, tx *gorm.DB, orderID, providerRef, providerStatus string) error {
	result := conn(r.db, tx).WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"provider_ref":    providerRef,
			"provider_status": providerStatus,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// MarkPaid moves a pending or failed order to PAID. It reports false when the
// order was already paid or cancelled, so exactly one caller wins the transition.
func (r *orderRepoImpl) MarkPaid(ctx context.Context, tx *gorm.DB, orderID, providerStatus string, paidAt time.Time) (bool, error) {
	result := conn(r.db, tx).WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status IN ?", orderID, model.PayableOrderStatuses).
		Updates(map[string]interface{}{
			"status":          model.OrderStatusPaid,
			"provider_status": providerStatus,
			"paid_at":         paidAt,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// MarkStatus records a non-paid transition for a pending order.
func (r *orderRepoImpl) MarkStatus(ctx context.Context, tx *gorm.DB, orderID, status, providerStatus string) (bool, error) {
	result := conn(r.db, tx).WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status IN ? AND status <> ?", orderID, model.PendingOrderStatuses, status).
		Updates(map[string]interface{}{
			"status":          status,
			"provider_status": providerStatus,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}
