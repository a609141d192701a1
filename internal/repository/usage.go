package repository

import (
	"context"
	"saas-billing/internal/model"

	"gorm.io/gorm"
)

type UsageRepository interface {
	Create(ctx context.Context, tx *gorm.DB, usage *model.DemoUsage) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*model.DemoUsage, error)
}

type usageRepoImpl struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepoImpl{
		db: db,
	}
}

func (r *usageRepoImpl) Create(ctx context.Context, tx *gorm.DB, usage *model.DemoUsage) error {
	return conn(r.db, tx).WithContext(ctx).Create(usage).Error
}

func (r *usageRepoImpl) ListByUser(ctx context.Context, userID string, limit int) ([]*model.DemoUsage, error) {
	var usages []*model.DemoUsage
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&usages).Error
	if err != nil {
		return nil, err
	}

	return usages, nil
}
