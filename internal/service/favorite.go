package service

import (
	"context"
	"fmt"
	"saas-billing/internal/apperr"
	"saas-billing/internal/model"
	"saas-billing/internal/repository"
)

const (
	FavoritePlan    = "plan"
	FavoriteProduct = "product"
)

type FavoriteService interface {
	List(ctx context.Context, userID string) ([]*model.Favorite, error)
	Add(ctx context.Context, userID, itemID, itemType string) (*model.Favorite, error)
	Remove(ctx context.Context, userID, itemID string) error
}

type favoriteServiceImpl struct {
	catalog      CatalogService
	favoriteRepo repository.FavoriteRepository
}

func NewFavoriteService(catalog CatalogService, favoriteRepo repository.FavoriteRepository) FavoriteService {
	return &favoriteServiceImpl{
		catalog:      catalog,
		favoriteRepo: favoriteRepo,
	}
}

func (s *favoriteServiceImpl) List(ctx context.Context, userID string) ([]*model.Favorite, error) {
	favorites, err := s.favoriteRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return favorites, nil
}

func (s *favoriteServiceImpl) Add(ctx context.Context, userID, itemID, itemType string) (*model.Favorite, error) {
	if itemID == "" {
		return nil, apperr.Validation("itemId is required")
	}

	var err error
	switch itemType {
	case FavoritePlan:
		_, err = s.catalog.Plan(ctx, itemID)
	case FavoriteProduct:
		_, err = s.catalog.Product(ctx, itemID)
	default:
		return nil, apperr.Validation("itemType must be plan or product")
	}
	if err != nil {
		return nil, err
	}

	favorite := &model.Favorite{
		UserID:   userID,
		ItemID:   itemID,
		ItemType: itemType,
	}
	if err := s.favoriteRepo.Add(ctx, favorite); err != nil {
		return nil, fmt.Errorf("add favorite: %w", err)
	}
	return favorite, nil
}

func (s *favoriteServiceImpl) Remove(ctx context.Context, userID, itemID string) error {
	removed, err := s.favoriteRepo.Remove(ctx, userID, itemID)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	if !removed {
		return apperr.NotFound("favorite not found")
	}
	return nil
}
