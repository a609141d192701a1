package client

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"saas-billing/internal/config"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// cryptoClientImpl talks to a NOWPayments-style hosted crypto gateway: a payment is a
// deposit address plus an expected amount, settled by IPN callbacks.
type cryptoClientImpl struct {
	httpClient  *http.Client
	baseApiURL  string
	apiKey      string
	ipnSecret   string
	payCurrency string
}

type cryptoPayment struct {
	PaymentID     json.Number `json:"payment_id"`
	PaymentStatus string      `json:"payment_status"`
	PayAddress    string      `json:"pay_address"`
	PriceAmount   json.Number `json:"price_amount"`
	PriceCurrency string      `json:"price_currency"`
	PayAmount     json.Number `json:"pay_amount"`
	PayCurrency   string      `json:"pay_currency"`
	OrderID       string      `json:"order_id"`
}

func NewCryptoClient(cfg *config.Crypto) PaymentProvider {
	return &cryptoClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:  cfg.BaseApiURL,
		apiKey:      cfg.APIKey,
		ipnSecret:   cfg.IPNSecret,
		payCurrency: cfg.PayCurrency,
	}
}

func (c *cryptoClientImpl) Name() string {
	return ProviderCrypto
}

func (c *cryptoClientImpl) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal req payload: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseApiURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("crypto gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read crypto gateway response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("crypto gateway error %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

func (c *cryptoClientImpl) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderHandle, error) {
	payCurrency := req.PayCurrency
	if payCurrency == "" {
		payCurrency = c.payCurrency
	}

	payload := map[string]interface{}{
		"price_amount":      req.Amount.StringFixed(2),
		"price_currency":    strings.ToLower(req.Currency),
		"pay_currency":      payCurrency,
		"order_id":          req.Reference,
		"order_description": req.Description,
		"ipn_callback_url":  req.NotifyURL,
	}

	body, err := c.do(ctx, http.MethodPost, "/v1/payment", payload)
	if err != nil {
		return nil, fmt.Errorf("create crypto payment: %w", err)
	}

	var payment cryptoPayment
	if err := json.Unmarshal(body, &payment); err != nil {
		return nil, fmt.Errorf("decode crypto payment: %w", err)
	}

	return &OrderHandle{
		Provider:    ProviderCrypto,
		ID:          payment.PaymentID.String(),
		Status:      payment.PaymentStatus,
		PayAddress:  payment.PayAddress,
		PayAmount:   payment.PayAmount.String(),
		PayCurrency: payment.PayCurrency,
		Raw:         body,
	}, nil
}

func (c *cryptoClientImpl) GetOrder(ctx context.Context, paymentID string) (*ProviderOrder, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/payment/"+paymentID, nil)
	if err != nil {
		return nil, fmt.Errorf("get crypto payment: %w", err)
	}

	var payment cryptoPayment
	if err := json.Unmarshal(body, &payment); err != nil {
		return nil, fmt.Errorf("decode crypto payment: %w", err)
	}
	return cryptoProviderOrder(&payment), nil
}

// CaptureOrder polls the payment: crypto deposits settle on-chain, there is nothing to capture.
func (c *cryptoClientImpl) CaptureOrder(ctx context.Context, paymentID string, _ *CaptureOptions) (*ProviderOrder, error) {
	return c.GetOrder(ctx, paymentID)
}

func (c *cryptoClientImpl) ParseWebhook(_ context.Context, headers http.Header, body []byte) (*WebhookEvent, error) {
	if c.ipnSecret == "" {
		return nil, fmt.Errorf("crypto ipn secret missing")
	}
	if err := verifyIPNSignature(c.ipnSecret, headers.Get("x-nowpayments-sig"), body); err != nil {
		return nil, err
	}

	var payment cryptoPayment
	if err := json.Unmarshal(body, &payment); err != nil {
		return nil, fmt.Errorf("decode ipn payload: %w", err)
	}

	// IPNs carry no event id; one notification per status transition.
	return &WebhookEvent{
		ID:          payment.PaymentID.String() + ":" + payment.PaymentStatus,
		Type:        "payment." + payment.PaymentStatus,
		ProviderRef: payment.PaymentID.String(),
		Reference:   payment.OrderID,
		Status:      normalizeCryptoStatus(payment.PaymentStatus),
	}, nil
}

// SignIPN returns the signature the gateway attaches to an IPN body: HMAC-SHA512 over
// the JSON body re-encoded with sorted keys.
func SignIPN(secret string, body []byte) (string, error) {
	var decoded map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode ipn payload: %w", err)
	}
	sorted, err := json.Marshal(decoded)
	if err != nil {
		return "", fmt.Errorf("encode ipn payload: %w", err)
	}

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(sorted)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

func verifyIPNSignature(secret, signature string, body []byte) error {
	if signature == "" {
		return fmt.Errorf("missing ipn signature")
	}
	expected, err := SignIPN(secret, body)
	if err != nil {
		return err
	}
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return fmt.Errorf("ipn signature mismatch")
	}
	return nil
}

func cryptoProviderOrder(payment *cryptoPayment) *ProviderOrder {
	order := &ProviderOrder{
		ID:        payment.PaymentID.String(),
		RawStatus: payment.PaymentStatus,
		Status:    normalizeCryptoStatus(payment.PaymentStatus),
		Currency:  strings.ToUpper(payment.PriceCurrency),
		Reference: payment.OrderID,
	}
	if v, err := decimal.NewFromString(payment.PriceAmount.String()); err == nil {
		order.Amount = v
	}
	return order
}

func normalizeCryptoStatus(status string) string {
	switch status {
	case "finished", "confirmed":
		return StatusPaid
	case "confirming", "sending", "partially_paid":
		return StatusApproved
	case "failed", "refunded":
		return StatusFailed
	case "expired":
		return StatusCancelled
	default:
		return StatusCreated
	}
}
