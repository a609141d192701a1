package repository

import (
	"context"
	"saas-billing/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FavoriteRepository interface {
	List(ctx context.Context, userID string) ([]*model.Favorite, error)
	Add(ctx context.Context, favorite *model.Favorite) error
	Remove(ctx context.Context, userID, itemID string) (bool, error)
}

type favoriteRepoImpl struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepoImpl{
		db: db,
	}
}

func (r *favoriteRepoImpl) List(ctx context.Context, userID string) ([]*model.Favorite, error) {
	var favorites []*model.Favorite
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, err
	}

	return favorites, nil
}

func (r *favoriteRepoImpl) Add(ctx context.Context, favorite *model.Favorite) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(favorite).Error
}

func (r *favoriteRepoImpl) Remove(ctx context.Context, userID, itemID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Delete(&model.Favorite{})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
