package repository

import (
	"context"
	"saas-billing/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionRepository interface {
	Replace(ctx context.Context, tx *gorm.DB, sub *model.Subscription) error
	GetByUserID(ctx context.Context, userID string) (*model.Subscription, error)
}

type subscriptionRepoImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepoImpl{
		db: db,
	}
}

// Replace overwrites the user's subscription row wholesale.
func (r *subscriptionRepoImpl) Replace(ctx context.Context, tx *gorm.DB, sub *model.Subscription) error {
	return conn(r.db, tx).WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(sub).Error
}

func (r *subscriptionRepoImpl) GetByUserID(ctx context.Context, userID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&sub).
		Error
	if err != nil {
		return nil, err
	}

	return &sub, nil
}
