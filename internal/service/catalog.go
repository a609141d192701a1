package service

import (
	"context"
	"fmt"
	"saas-billing/internal/model"
	"saas-billing/internal/repository"
)

type CatalogService interface {
	Plan(ctx context.Context, planID string) (*model.Plan, error)
	Product(ctx context.Context, productID string) (*model.CreditProduct, error)
	Plans(ctx context.Context) ([]*model.Plan, error)
	Products(ctx context.Context) ([]*model.CreditProduct, error)
	Currencies(ctx context.Context) ([]*model.PaymentCurrency, error)
	Currency(ctx context.Context, code string) (*model.PaymentCurrency, error)
}

type catalogServiceImpl struct {
	catalogRepo repository.CatalogRepository
}

func NewCatalogService(catalogRepo repository.CatalogRepository) CatalogService {
	return &catalogServiceImpl{
		catalogRepo: catalogRepo,
	}
}

func (s *catalogServiceImpl) Plan(ctx context.Context, planID string) (*model.Plan, error) {
	plan, err := s.catalogRepo.FindPlan(ctx, planID)
	if err != nil {
		return nil, notFound(err, "plan not found")
	}
	return plan, nil
}

func (s *catalogServiceImpl) Product(ctx context.Context, productID string) (*model.CreditProduct, error) {
	product, err := s.catalogRepo.FindProduct(ctx, productID)
	if err != nil {
		return nil, notFound(err, "product not found")
	}
	return product, nil
}

func (s *catalogServiceImpl) Plans(ctx context.Context) ([]*model.Plan, error) {
	plans, err := s.catalogRepo.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

func (s *catalogServiceImpl) Products(ctx context.Context) ([]*model.CreditProduct, error) {
	products, err := s.catalogRepo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *catalogServiceImpl) Currencies(ctx context.Context) ([]*model.PaymentCurrency, error) {
	currencies, err := s.catalogRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}
	return currencies, nil
}

func (s *catalogServiceImpl) Currency(ctx context.Context, code string) (*model.PaymentCurrency, error) {
	currency, err := s.catalogRepo.FindCurrency(ctx, code)
	if err != nil {
		return nil, notFound(err, "currency not supported")
	}
	return currency, nil
}
