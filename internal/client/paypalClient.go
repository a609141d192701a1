package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"saas-billing/internal/config"
	"time"

	"github.com/shopspring/decimal"
)

type paypalClientImpl struct {
	httpClient         *http.Client
	baseApiURL         string
	paypalClientID     string
	paypalClientSecret string
	webhookID          string
}

type PaypalLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type PaypalAmount struct {
	Currency string `json:"currency_code"`
	Value    string `json:"value"`
}

type PaypalPayer struct {
	PayerID string `json:"payer_id"`
	Email   string `json:"email_address"`
}

type PaypalCapture struct {
	ID     string       `json:"id"`
	Status string       `json:"status"`
	Amount PaypalAmount `json:"amount"`
}

type PaypalPurchaseUnit struct {
	ReferenceID string       `json:"reference_id"`
	CustomID    string       `json:"custom_id"`
	Amount      PaypalAmount `json:"amount"`
	Payments    struct {
		Captures []PaypalCapture `json:"captures"`
	} `json:"payments"`
}

type PaypalOrderResult struct {
	ID            string               `json:"id"`
	Status        string               `json:"status"`
	Links         []PaypalLink         `json:"links"`
	Payer         PaypalPayer          `json:"payer"`
	PurchaseUnits []PaypalPurchaseUnit `json:"purchase_units"`
}

type paypalWebhookResource struct {
	ID                string       `json:"id"`
	Status            string       `json:"status"`
	CustomID          string       `json:"custom_id"`
	Amount            PaypalAmount `json:"amount"`
	SupplementaryData struct {
		RelatedIDs struct {
			OrderID string `json:"order_id"`
		} `json:"related_ids"`
	} `json:"supplementary_data"`
}

type paypalWebhookPayload struct {
	ID         string                `json:"id"`
	EventType  string                `json:"event_type"`
	CreateTime string                `json:"create_time"`
	Resource   paypalWebhookResource `json:"resource"`
}

func NewPaypalClient(paypalCfg *config.Paypal) PaymentProvider {
	return &paypalClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:         paypalCfg.BaseApiURL,
		paypalClientID:     paypalCfg.ClientID,
		paypalClientSecret: paypalCfg.ClientSecret,
		webhookID:          paypalCfg.WebhookID,
	}
}

func (c *paypalClientImpl) Name() string {
	return ProviderPaypal
}

func (c *paypalClientImpl) getAccessToken(ctx context.Context) (string, error) {
	auth := base64.StdEncoding.EncodeToString(
		[]byte(c.paypalClientID + ":" + c.paypalClientSecret),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+"/v1/oauth2/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("paypal token error %d: %s", resp.StatusCode, string(b))
	}

	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	return res.AccessToken, nil
}

// do sends an authenticated JSON request and returns the raw response body.
func (c *paypalClientImpl) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get paypal access token: %w", err)
	}

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
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paypal request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read paypal response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("paypal error %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

func (c *paypalClientImpl) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderHandle, error) {
	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"reference_id": req.Reference,
				"custom_id":    req.Reference,
				"description":  req.Description,
				"amount": map[string]string{
					"currency_code": req.Currency,
					"value":         req.Amount.StringFixed(2),
				},
			},
		},
		"application_context": map[string]string{
			"return_url": req.ReturnURL,
			"cancel_url": req.CancelURL, // if user cancel during paypal payment, return to our pricing page
		},
	}

	body, err := c.do(ctx, http.MethodPost, "/v2/checkout/orders", payload)
	if err != nil {
		return nil, fmt.Errorf("create paypal order: %w", err)
	}

	var result PaypalOrderResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode paypal response: %w", err)
	}

	return &OrderHandle{
		Provider:   ProviderPaypal,
		ID:         result.ID,
		Status:     result.Status,
		ApproveURL: _extractApproveURL(result.Links),
		Raw:        body,
	}, nil
}

func (c *paypalClientImpl) GetOrder(ctx context.Context, orderID string) (*ProviderOrder, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v2/checkout/orders/%s", orderID), nil)
	if err != nil {
		return nil, fmt.Errorf("get paypal order: %w", err)
	}

	var result PaypalOrderResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode paypal order: %w", err)
	}

	return paypalProviderOrder(&result), nil
}

func (c *paypalClientImpl) CaptureOrder(ctx context.Context, orderID string, _ *CaptureOptions) (*ProviderOrder, error) {
	body, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/v2/checkout/orders/%s/capture", orderID), nil)
	if err != nil {
		return nil, fmt.Errorf("paypal capture failed: %w", err)
	}

	var result PaypalOrderResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode capture response: %w", err)
	}

	return paypalProviderOrder(&result), nil
}

func (c *paypalClientImpl) verifyWebhookSignature(ctx context.Context, headers http.Header, body []byte) error {
	payload := map[string]interface{}{
		"auth_algo":         headers.Get("PAYPAL-AUTH-ALGO"),
		"cert_url":          headers.Get("PAYPAL-CERT-URL"),
		"transmission_id":   headers.Get("PAYPAL-TRANSMISSION-ID"),
		"transmission_sig":  headers.Get("PAYPAL-TRANSMISSION-SIG"),
		"transmission_time": headers.Get("PAYPAL-TRANSMISSION-TIME"),
		"webhook_id":        c.webhookID,
		"webhook_event":     json.RawMessage(body),
	}

	respBody, err := c.do(ctx, http.MethodPost, "/v1/notifications/verify-webhook-signature", payload)
	if err != nil {
		return err
	}

	var res struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := json.Unmarshal(respBody, &res); err != nil {
		return fmt.Errorf("decode verification response: %w", err)
	}
	if res.VerificationStatus != "SUCCESS" {
		return fmt.Errorf("webhook verification status %s", res.VerificationStatus)
	}
	return nil
}

func (c *paypalClientImpl) ParseWebhook(ctx context.Context, headers http.Header, body []byte) (*WebhookEvent, error) {
	if err := c.verifyWebhookSignature(ctx, headers, body); err != nil {
		return nil, fmt.Errorf("verify webhook signature: %w", err)
	}

	var payload paypalWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}

	event := &WebhookEvent{
		ID:        payload.ID,
		Type:      payload.EventType,
		Reference: payload.Resource.CustomID,
	}

	switch payload.EventType {
	case "PAYMENT.CAPTURE.COMPLETED":
		event.ProviderRef = payload.Resource.SupplementaryData.RelatedIDs.OrderID
		event.Status = StatusPaid
	case "PAYMENT.CAPTURE.DENIED", "PAYMENT.CAPTURE.DECLINED":
		event.ProviderRef = payload.Resource.SupplementaryData.RelatedIDs.OrderID
		event.Status = StatusFailed
	case "CHECKOUT.ORDER.APPROVED":
		event.ProviderRef = payload.Resource.ID
		event.Status = StatusApproved
	}

	return event, nil
}

func paypalProviderOrder(result *PaypalOrderResult) *ProviderOrder {
	order := &ProviderOrder{
		ID:        result.ID,
		RawStatus: result.Status,
		Status:    normalizePaypalStatus(result.Status),
		PayerID:   result.Payer.PayerID,
	}
	if len(result.PurchaseUnits) > 0 {
		unit := result.PurchaseUnits[0]
		order.Reference = unit.CustomID
		if order.Reference == "" {
			order.Reference = unit.ReferenceID
		}
		amount := unit.Amount
		if len(unit.Payments.Captures) > 0 {
			amount = unit.Payments.Captures[0].Amount
		}
		order.Currency = amount.Currency
		if v, err := decimal.NewFromString(amount.Value); err == nil {
			order.Amount = v
		}
	}
	return order
}

func normalizePaypalStatus(status string) string {
	switch status {
	case "COMPLETED":
		return StatusPaid
	case "APPROVED", "SAVED":
		return StatusApproved
	case "VOIDED":
		return StatusCancelled
	default:
		return StatusCreated
	}
}

func _extractApproveURL(links []PaypalLink) string {
	for _, link := range links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			return link.Href
		}
	}
	return ""
}
