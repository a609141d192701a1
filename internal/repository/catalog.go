package repository

import (
	"context"
	"saas-billing/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogRepository interface {
	Seed(ctx context.Context) error
	FindPlan(ctx context.Context, planID string) (*model.Plan, error)
	FindProduct(ctx context.Context, productID string) (*model.CreditProduct, error)
	ListPlans(ctx context.Context) ([]*model.Plan, error)
	ListProducts(ctx context.Context) ([]*model.CreditProduct, error)
	ListCurrencies(ctx context.Context) ([]*model.PaymentCurrency, error)
	FindCurrency(ctx context.Context, code string) (*model.PaymentCurrency, error)
}

type catalogRepoImpl struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepoImpl{
		db: db,
	}
}

func (r *catalogRepoImpl) Seed(ctx context.Context) error {
	plans := []model.Plan{
		{ID: "free", Name: "Free", Tier: model.TierFree, PriceCents: 0, Currency: "USD", Interval: "month", CreditsPerPeriod: 10, Active: true, SortOrder: 0},
		{ID: "basic_monthly", Name: "Basic", Tier: model.TierBasic, PriceCents: 900, Currency: "USD", Interval: "month", CreditsPerPeriod: 100, Active: true, SortOrder: 1},
		{ID: "pro_monthly", Name: "Pro", Tier: model.TierPro, PriceCents: 2900, Currency: "USD", Interval: "month", CreditsPerPeriod: 500, Active: true, SortOrder: 2},
		{ID: "pro_yearly", Name: "Pro (yearly)", Tier: model.TierPro, PriceCents: 29000, Currency: "USD", Interval: "year", CreditsPerPeriod: 6000, Active: true, SortOrder: 3},
		{ID: "enterprise_monthly", Name: "Enterprise", Tier: model.TierEnterprise, PriceCents: 9900, Currency: "USD", Interval: "month", CreditsPerPeriod: 2000, Active: true, SortOrder: 4},
	}
	products := []model.CreditProduct{
		{ID: "credits_100", Name: "100 credits", PriceCents: 500, Currency: "USD", Credits: 100, Active: true, SortOrder: 0},
		{ID: "credits_500", Name: "500 credits", PriceCents: 2000, Currency: "USD", Credits: 500, Active: true, SortOrder: 1},
		{ID: "credits_2000", Name: "2000 credits", PriceCents: 6000, Currency: "USD", Credits: 2000, Active: true, SortOrder: 2},
	}
	currencies := []model.PaymentCurrency{
		{Code: "usd", Symbol: "$", Name: "US Dollar", Decimals: 2, Crypto: false, Enabled: true},
		{Code: "usdttrc20", Symbol: "USDT", Network: "TRC20", Name: "Tether (Tron)", Decimals: 6, Crypto: true, Enabled: true},
		{Code: "usdterc20", Symbol: "USDT", Network: "ERC20", Name: "Tether (Ethereum)", Decimals: 6, Crypto: true, Enabled: true},
		{Code: "btc", Symbol: "BTC", Network: "BTC", Name: "Bitcoin", Decimals: 8, Crypto: true, Enabled: true},
		{Code: "eth", Symbol: "ETH", Network: "ERC20", Name: "Ether", Decimals: 18, Crypto: true, Enabled: true},
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&plans).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&products).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&currencies).Error
	})
}

func (r *catalogRepoImpl) FindPlan(ctx context.Context, planID string) (*model.Plan, error) {
	var plan model.Plan
	err := r.db.WithContext(ctx).
		Where("id = ? AND active = ?", planID, true).
		First(&plan).Error
	if err != nil {
		return nil, err
	}

	return &plan, nil
}

func (r *catalogRepoImpl) FindProduct(ctx context.Context, productID string) (*model.CreditProduct, error) {
	var product model.CreditProduct
	err := r.db.WithContext(ctx).
		Where("id = ? AND active = ?", productID, true).
		First(&product).Error
	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *catalogRepoImpl) ListPlans(ctx context.Context) ([]*model.Plan, error) {
	var plans []*model.Plan
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("sort_order, id").
		Find(&plans).
		Error
	if err != nil {
		return nil, err
	}

	return plans, nil
}

func (r *catalogRepoImpl) ListProducts(ctx context.Context) ([]*model.CreditProduct, error) {
	var products []*model.CreditProduct
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("sort_order, id").
		Find(&products).
		Error
	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *catalogRepoImpl) ListCurrencies(ctx context.Context) ([]*model.PaymentCurrency, error) {
	var currencies []*model.PaymentCurrency
	err := r.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("crypto, code").
		Find(&currencies).
		Error
	if err != nil {
		return nil, err
	}

	return currencies, nil
}

func (r *catalogRepoImpl) FindCurrency(ctx context.Context, code string) (*model.PaymentCurrency, error) {
	var currency model.PaymentCurrency
	err := r.db.WithContext(ctx).
		Where("code = ? AND enabled = ?", code, true).
		First(&currency).Error
	if err != nil {
		return nil, err
	}

	return &currency, nil
}
