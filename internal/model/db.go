package model

import "time"

type Tier string

const (
	TierFree       Tier = "free"
	TierBasic      Tier = "basic"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

type OrderType string

const (
	OrderTypeSubscription OrderType = "subscription"
	OrderTypeCredits      OrderType = "credits"
)

// Order statuses. CREATED and APPROVED are pending. FAILED can still be paid
// by a retried attempt; PAID and CANCELLED are terminal.
const (
	OrderStatusCreated   = "CREATED"
	OrderStatusApproved  = "APPROVED"
	OrderStatusPaid      = "PAID"
	OrderStatusFailed    = "FAILED"
	OrderStatusCancelled = "CANCELLED"
)

// PendingOrderStatuses are still waiting on the provider.
var PendingOrderStatuses = []string{OrderStatusCreated, OrderStatusApproved}

// PayableOrderStatuses may still move to PAID when the provider confirms the
// money moved. A failed attempt can be followed by a successful retry.
var PayableOrderStatuses = []string{OrderStatusCreated, OrderStatusApproved, OrderStatusFailed}

const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
)

type User struct {
	ID           string `gorm:"primaryKey;size:64;not null"` // identity provider subject
	Email        string `gorm:"size:255;index"`
	Locale       string `gorm:"size:8"`
	LastSignInAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Plan struct {
	ID               string `gorm:"primaryKey;size:64;not null" json:"id"`
	Name             string `gorm:"size:128;not null" json:"name"`
	Tier             Tier   `gorm:"size:32;not null" json:"tier"`
	PriceCents       int64  `gorm:"not null" json:"price_cents"`
	Currency         string `gorm:"size:8;not null" json:"currency"`
	Interval         string `gorm:"size:16;not null" json:"interval"` // month, year
	CreditsPerPeriod int64  `gorm:"not null;default:0" json:"credits_per_period"`
	Active           bool   `gorm:"not null;default:true" json:"active"`
	SortOrder        int    `gorm:"not null;default:0" json:"sort_order"`
}

type CreditProduct struct {
	ID         string `gorm:"primaryKey;size:64;not null" json:"id"`
	Name       string `gorm:"size:128;not null" json:"name"`
	PriceCents int64  `gorm:"not null" json:"price_cents"`
	Currency   string `gorm:"size:8;not null" json:"currency"`
	Credits    int64  `gorm:"not null" json:"credits"`
	Active     bool   `gorm:"not null;default:true" json:"active"`
	SortOrder  int    `gorm:"not null;default:0" json:"sort_order"`
}

type PaymentCurrency struct {
	Code     string `gorm:"primaryKey;size:32;not null" json:"code"` // provider currency code, e.g. usdttrc20
	Symbol   string `gorm:"size:16;not null" json:"symbol"`
	Network  string `gorm:"size:32" json:"network"`
	Name     string `gorm:"size:64;not null" json:"name"`
	Decimals int32  `gorm:"not null" json:"decimals"`
	Crypto   bool   `gorm:"not null" json:"crypto"`
	Enabled  bool   `gorm:"not null;default:true" json:"enabled"`
}

type Order struct {
	ID             string     `gorm:"primaryKey;size:64;not null" json:"id"`
	UserID         string     `gorm:"size:64;index;not null" json:"user_id"`
	Type           OrderType  `gorm:"size:32;not null" json:"type"`
	ItemID         string     `gorm:"size:64;not null" json:"item_id"`
	AmountCents    int64      `gorm:"not null" json:"amount_cents"`
	Currency       string     `gorm:"size:8;not null" json:"currency"`
	Provider       string     `gorm:"size:32;not null" json:"provider"`
	ProviderRef    string     `gorm:"size:128;index" json:"provider_ref"`
	ProviderStatus string     `gorm:"size:32" json:"provider_status"`
	IdempotencyKey string     `gorm:"size:128" json:"-"`
	Status         string     `gorm:"size:32;index;not null" json:"status"` // CREATED, APPROVED, PAID, FAILED, CANCELLED
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type Subscription struct {
	UserID             string     `gorm:"primaryKey;size:64;not null" json:"user_id"`
	PlanID             string     `gorm:"size:64;not null" json:"plan_id"`
	Tier               Tier       `gorm:"size:32;not null" json:"tier"`
	Status             string     `gorm:"size:32;not null" json:"status"` // active, cancelled
	OrderID            string     `gorm:"size:64" json:"order_id,omitempty"`
	CurrentPeriodStart time.Time  `json:"current_period_start"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type CreditBalance struct {
	UserID    string `gorm:"primaryKey;size:64;not null"`
	Balance   int64  `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

type CreditLedger struct {
	ID        uint    `gorm:"primaryKey"`
	UserID    string  `gorm:"size:64;index;not null"`
	Delta     int64   `gorm:"not null"`
	Reason    string  `gorm:"size:32;not null"` // purchase, subscription, demo
	OrderID   *string `gorm:"size:64;uniqueIndex"`
	CreatedAt time.Time
}

type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	Provider    string `gorm:"size:32;index"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}

type Favorite struct {
	UserID    string    `gorm:"primaryKey;size:64;not null" json:"user_id"`
	ItemID    string    `gorm:"primaryKey;size:64;not null" json:"item_id"`
	ItemType  string    `gorm:"size:32;not null" json:"item_type"` // plan, product, demo
	CreatedAt time.Time `json:"created_at"`
}

type DemoUsage struct {
	ID           string    `gorm:"primaryKey;size:64;not null" json:"id"`
	UserID       string    `gorm:"size:64;index;not null" json:"user_id"`
	Prompt       string    `gorm:"size:1024;not null" json:"prompt"`
	Result       string    `gorm:"type:text" json:"result"`
	CreditsSpent int64     `gorm:"not null" json:"credits_spent"`
	CreatedAt    time.Time `json:"created_at"`
}

// Models lists every table for AutoMigrate.
func Models() []any {
	return []any{
		&User{},
		&Plan{},
		&CreditProduct{},
		&PaymentCurrency{},
		&Order{},
		&Subscription{},
		&CreditBalance{},
		&CreditLedger{},
		&WebhookEvent{},
		&Favorite{},
		&DemoUsage{},
	}
}
