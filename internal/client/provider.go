package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"saas-billing/internal/config"
	"sort"

	"github.com/shopspring/decimal"
)

const (
	ProviderPaypal    = "paypal"
	ProviderStripe    = "stripe"
	ProviderBraintree = "braintree"
	ProviderCrypto    = "crypto"
)

// Normalized provider statuses. They mirror the order statuses stored locally.
const (
	StatusCreated   = "CREATED"
	StatusApproved  = "APPROVED"
	StatusPaid      = "PAID"
	StatusFailed    = "FAILED"
	StatusCancelled = "CANCELLED"
)

type CreateOrderRequest struct {
	Reference   string // local order id
	UserID      string
	Email       string
	Amount      decimal.Decimal
	Currency    string
	PayCurrency string // crypto only
	Description string
	ReturnURL   string
	CancelURL   string
	NotifyURL   string
}

// OrderHandle is what the client needs to continue checkout with the provider.
type OrderHandle struct {
	Provider     string          `json:"provider"`
	ID           string          `json:"id"`
	Status       string          `json:"status"`
	ApproveURL   string          `json:"approve_url,omitempty"`
	ClientSecret string          `json:"client_secret,omitempty"`
	ClientToken  string          `json:"client_token,omitempty"`
	PayAddress   string          `json:"pay_address,omitempty"`
	PayAmount    string          `json:"pay_amount,omitempty"`
	PayCurrency  string          `json:"pay_currency,omitempty"`
	Raw          json.RawMessage `json:"raw,omitempty"`
}

type ProviderOrder struct {
	ID        string
	Status    string // normalized
	RawStatus string
	Amount    decimal.Decimal
	Currency  string
	PayerID   string
	Reference string
}

type CaptureOptions struct {
	Nonce  string
	Amount decimal.Decimal
}

type PaymentProvider interface {
	Name() string
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderHandle, error)
	GetOrder(ctx context.Context, providerRef string) (*ProviderOrder, error)
	CaptureOrder(ctx context.Context, providerRef string, opts *CaptureOptions) (*ProviderOrder, error)
}

type WebhookEvent struct {
	ID          string
	Type        string
	ProviderRef string
	Reference   string
	Status      string // normalized; empty when the event does not settle an order
}

// WebhookVerifier is implemented by providers that push payment notifications.
type WebhookVerifier interface {
	ParseWebhook(ctx context.Context, headers http.Header, body []byte) (*WebhookEvent, error)
}

// Providers holds the configured payment providers by name.
type Providers map[string]PaymentProvider

func NewProviders(providers ...PaymentProvider) Providers {
	out := make(Providers, len(providers))
	for _, p := range providers {
		if p != nil {
			out[p.Name()] = p
		}
	}
	return out
}

// ConfiguredProviders builds every provider that has credentials in cfg.
func ConfiguredProviders(cfg *config.Config) Providers {
	var list []PaymentProvider
	if cfg.Paypal.ClientID != "" {
		list = append(list, NewPaypalClient(&cfg.Paypal))
	}
	if cfg.Stripe.SecretKey != "" {
		list = append(list, NewStripeClient(&cfg.Stripe))
	}
	if cfg.BrainTree.MerchantID != "" {
		list = append(list, NewBraintreeClient(&cfg.BrainTree))
	}
	if cfg.Crypto.APIKey != "" {
		list = append(list, NewCryptoClient(&cfg.Crypto))
	}
	return NewProviders(list...)
}

func (p Providers) Get(name string) (PaymentProvider, error) {
	provider, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("payment provider %q is not configured", name)
	}
	return provider, nil
}

func (p Providers) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
