package repository

import (
	"context"
	"errors"
	"saas-billing/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrInsufficientCredits = errors.New("insufficient credits")

type CreditRepository interface {
	Grant(ctx context.Context, tx *gorm.DB, userID string, amount int64, reason string, orderID *string) (bool, error)
	Spend(ctx context.Context, tx *gorm.DB, userID string, amount int64, reason string) error
	Balance(ctx context.Context, userID string) (int64, error)
}

type creditRepoImpl struct {
	db *gorm.DB
}

func NewCreditRepository(db *gorm.DB) CreditRepository {
	return &creditRepoImpl{
		db: db,
	}
}

// Grant adds credits and writes a ledger row. A ledger row already tied to
// orderID means the order was granted before; Grant then reports false and
// leaves the balance alone.
func (r *creditRepoImpl) Grant(ctx context.Context, tx *gorm.DB, userID string, amount int64, reason string, orderID *string) (bool, error) {
	db := conn(r.db, tx).WithContext(ctx)

	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.CreditLedger{
		UserID:  userID,
		Delta:   amount,
		Reason:  reason,
		OrderID: orderID,
	})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"balance":    gorm.Expr("credit_balances.balance + ?", amount),
			"updated_at": time.Now(),
		}),
	}).Create(&model.CreditBalance{
		UserID:  userID,
		Balance: amount,
	}).Error
	if err != nil {
		return false, err
	}

	return true, nil
}

func (r *creditRepoImpl) Spend(ctx context.Context, tx *gorm.DB, userID string, amount int64, reason string) error {
	db := conn(r.db, tx).WithContext(ctx)

	result := db.Model(&model.CreditBalance{}).
		Where("user_id = ? AND balance >= ?", userID, amount).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance - ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientCredits
	}

	return db.Create(&model.CreditLedger{
		UserID: userID,
		Delta:  -amount,
		Reason: reason,
	}).Error
}

func (r *creditRepoImpl) Balance(ctx context.Context, userID string) (int64, error) {
	var balance model.CreditBalance
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return balance.Balance, nil
}
