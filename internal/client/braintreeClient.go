package client

import (
	"context"
	"fmt"
	"saas-billing/internal/config"

	"github.com/braintree-go/braintree-go"
	"github.com/shopspring/decimal"
)

// braintreeClientImpl runs card checkout through Braintree Drop-in: CreateOrder hands the
// browser a client token, CaptureOrder turns the returned nonce into a settled sale.
type braintreeClientImpl struct {
	gateway *braintree.Braintree
}

// NewBraintreeClient initializes the Braintree SDK gateway
func NewBraintreeClient(cfg *config.Braintree) PaymentProvider {
	env := braintree.Sandbox
	if cfg.Environment == "production" {
		env = braintree.Production
	}

	gateway := braintree.New(
		env,
		cfg.MerchantID,
		cfg.PublicKey,
		cfg.PrivateKey,
	)

	return &braintreeClientImpl{
		gateway: gateway,
	}
}

func (c *braintreeClientImpl) Name() string {
	return ProviderBraintree
}

func (c *braintreeClientImpl) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderHandle, error) {
	token, err := c.gateway.ClientToken().Generate(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate client token: %w", err)
	}

	// Braintree has no order object before the sale, so our own reference stands in for it.
	return &OrderHandle{
		Provider:    ProviderBraintree,
		ID:          req.Reference,
		Status:      StatusCreated,
		ClientToken: token,
	}, nil
}

func (c *braintreeClientImpl) GetOrder(ctx context.Context, transactionID string) (*ProviderOrder, error) {
	tx, err := c.gateway.Transaction().Find(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return braintreeProviderOrder(tx), nil
}

func (c *braintreeClientImpl) CaptureOrder(ctx context.Context, reference string, opts *CaptureOptions) (*ProviderOrder, error) {
	if opts == nil || opts.Nonce == "" {
		return nil, fmt.Errorf("payment method nonce is required")
	}

	// Braintree expects NewDecimal(unscaled, scale). For 2 decimal places (like USD):
	// "50.00" * 100 = 5000 -> braintree.NewDecimal(5000, 2)
	cents := opts.Amount.Mul(decimal.NewFromInt(100)).IntPart()
	btAmount := braintree.NewDecimal(cents, 2)

	req := &braintree.TransactionRequest{
		Type:               "sale",
		Amount:             btAmount,
		PaymentMethodNonce: opts.Nonce,
		OrderId:            reference,
		Options: &braintree.TransactionOptions{
			SubmitForSettlement: true, // Captures the funds immediately
		},
	}

	tx, err := c.gateway.Transaction().Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("transaction creation failed: %w", err)
	}

	if tx.Status == braintree.TransactionStatusProcessorDeclined {
		return nil, fmt.Errorf("transaction declined by processor: %s", tx.ProcessorResponseText)
	}

	return braintreeProviderOrder(tx), nil
}

func braintreeProviderOrder(tx *braintree.Transaction) *ProviderOrder {
	order := &ProviderOrder{
		ID:        tx.Id,
		RawStatus: string(tx.Status),
		Status:    normalizeBraintreeStatus(tx.Status),
		Currency:  tx.CurrencyISOCode,
		Reference: tx.OrderId,
	}
	if tx.Amount != nil {
		if v, err := decimal.NewFromString(tx.Amount.String()); err == nil {
			order.Amount = v
		}
	}
	return order
}

func normalizeBraintreeStatus(status braintree.TransactionStatus) string {
	switch status {
	case braintree.TransactionStatusSubmittedForSettlement,
		braintree.TransactionStatusSettling,
		braintree.TransactionStatusSettled:
		return StatusPaid
	case braintree.TransactionStatusAuthorized, braintree.TransactionStatusAuthorizing:
		return StatusApproved
	case braintree.TransactionStatusVoided:
		return StatusCancelled
	case braintree.TransactionStatusProcessorDeclined,
		braintree.TransactionStatusGatewayRejected,
		braintree.TransactionStatusFailed,
		braintree.TransactionStatusSettlementDeclined:
		return StatusFailed
	default:
		return StatusCreated
	}
}
